package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/normalizer"
)

func canonical(email, phone string) *normalizer.CanonicalLead {
	return &normalizer.CanonicalLead{
		Email: email,
		Phone: phone,
	}
}

func TestFindDuplicateByEmailCaseInsensitive(t *testing.T) {
	existing := []models.Lead{
		{ID: "1", Email: "jane@x.com", Phone: "N/A"},
	}

	match := FindDuplicate(canonical("Jane@X.com", normalizer.PhoneNotAvailable), existing)
	assert.NotNil(t, match)
	assert.Equal(t, "1", match.ID)
}

func TestFindDuplicateByPhoneDigitsOnly(t *testing.T) {
	existing := []models.Lead{
		{ID: "1", Email: "Not Provided", Phone: "(555) 123-4567"},
	}

	match := FindDuplicate(canonical(normalizer.EmailNotProvided, "5551234567"), existing)
	assert.NotNil(t, match)
	assert.Equal(t, "1", match.ID)
}

func TestEmailSentinelNeverMatches(t *testing.T) {
	// Two leads both lacking an email must not be merged on the sentinel.
	existing := []models.Lead{
		{ID: "1", Email: "Not Provided", Phone: "555-111-2222"},
	}

	match := FindDuplicate(canonical(normalizer.EmailNotProvided, "999-999-9999"), existing)
	assert.Nil(t, match)
}

func TestPhoneSentinelNeverMatches(t *testing.T) {
	existing := []models.Lead{
		{ID: "1", Email: "a@x.com", Phone: "N/A"},
	}

	match := FindDuplicate(canonical("b@x.com", normalizer.PhoneNotAvailable), existing)
	assert.Nil(t, match)
}

func TestEitherChannelMatches(t *testing.T) {
	existing := []models.Lead{
		{ID: "1", Email: "jane@x.com", Phone: "555-123-4567"},
	}

	// Different email, same phone.
	match := FindDuplicate(canonical("other@x.com", "555.123.4567"), existing)
	assert.NotNil(t, match)

	// Same email, different phone.
	match = FindDuplicate(canonical("jane@x.com", "111-222-3333"), existing)
	assert.NotNil(t, match)
}

func TestFirstMatchWins(t *testing.T) {
	existing := []models.Lead{
		{ID: "first", Email: "jane@x.com", Phone: "N/A"},
		{ID: "second", Email: "jane@x.com", Phone: "N/A"},
	}

	match := FindDuplicate(canonical("jane@x.com", normalizer.PhoneNotAvailable), existing)
	assert.NotNil(t, match)
	assert.Equal(t, "first", match.ID)
}

func TestNoMatchOnEmptySet(t *testing.T) {
	match := FindDuplicate(canonical("jane@x.com", "555-000-0000"), nil)
	assert.Nil(t, match)
}
