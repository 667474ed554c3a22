package ingestion

import (
	"fmt"

	"github.com/nhfg/crm-backend/pkg/dedup"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/normalizer"
)

// Per-platform lead scores. Google search-intent leads are categorically
// higher quality than social-ad leads, so scoring is a flat policy, not a
// computed confidence.
const (
	ScoreGoogle  = 95
	ScoreDefault = 85
)

// NewLeadFields is the field set the engine produces for a fresh lead. The
// persisted ID is generated by the store, never here.
type NewLeadFields struct {
	Name          string
	Email         string
	Phone         string
	Interest      string
	Status        string
	Source        string
	Score         int
	Qualification string
	Message       string
	Campaign      string
	AdGroup       string
	AdID          string
}

// Result is the engine's outcome decision for one webhook delivery.
type Result struct {
	// IsNew is true when no duplicate was found and a fresh lead should be
	// created.
	IsNew bool

	// DuplicateID and Note are set on the re-engagement path. The engine
	// never touches any other field of the existing record; the caller
	// decides how to merge the note.
	DuplicateID string
	Note        string

	// Lead is set on the fresh-lead path.
	Lead *NewLeadFields
}

// Process combines the normalized lead with the dedup decision into a single
// outcome. It is a pure decision function: no I/O, no ID generation, no
// writes. Existing leads are a caller-supplied snapshot, so two concurrent
// deliveries for the same person can race — an accepted trade-off, ad
// platforms redeliver on failure and the dedup check catches the replay.
func Process(lead *normalizer.CanonicalLead, existing []models.Lead) *Result {
	if duplicate := dedup.FindDuplicate(lead, existing); duplicate != nil {
		return &Result{
			IsNew:       false,
			DuplicateID: duplicate.ID,
			Note:        fmt.Sprintf("Re-engaged via %s campaign %s", lead.Platform, lead.CampaignID),
		}
	}

	return &Result{
		IsNew: true,
		Lead: &NewLeadFields{
			Name:          lead.FullName(),
			Email:         lead.Email,
			Phone:         lead.Phone,
			Interest:      lead.Interest,
			Status:        models.StatusNew,
			Source:        lead.Source(),
			Score:         scoreFor(lead.Platform),
			Qualification: models.QualificationHot,
			Message:       fmt.Sprintf("API Ingested Lead from %s. Form: %s", lead.Platform, lead.FormID),
			Campaign:      lead.CampaignID,
			AdGroup:       lead.AdGroupID,
			AdID:          lead.AdID,
		},
	}
}

func scoreFor(platform normalizer.Platform) int {
	if platform == normalizer.PlatformGoogle {
		return ScoreGoogle
	}
	return ScoreDefault
}
