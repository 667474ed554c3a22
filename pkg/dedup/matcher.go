package dedup

import (
	"strings"

	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/normalizer"
)

// FindDuplicate decides whether an incoming lead denotes a person already in
// the CRM, to prevent duplicate commission attribution. It returns the first
// existing lead whose email matches case-insensitively, or whose phone
// matches after stripping non-digits. Sentinel contact values never match.
//
// Matching is deliberately OR across both channels: the business prefers an
// occasional false merge over paying commission twice for a re-engaged lead.
// First match in slice order wins, so callers should pass leads in creation
// order for deterministic results.
func FindDuplicate(incoming *normalizer.CanonicalLead, existing []models.Lead) *models.Lead {
	hasEmail := incoming.Email != normalizer.EmailNotProvided
	hasPhone := incoming.Phone != normalizer.PhoneNotAvailable
	incomingPhone := digitsOnly(incoming.Phone)

	for i := range existing {
		l := &existing[i]
		if hasEmail && strings.EqualFold(l.Email, incoming.Email) {
			return l
		}
		if hasPhone && digitsOnly(l.Phone) == incomingPhone {
			return l
		}
	}
	return nil
}

// digitsOnly strips every non-digit character, so "(555) 123-4567" and
// "5551234567" compare equal.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
