package testdata

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/store"
)

func TestGenerateLeadUsesDefinedStatuses(t *testing.T) {
	defined := map[string]bool{
		models.StatusNew:         true,
		models.StatusContacted:   true,
		models.StatusUnavailable: true,
		models.StatusProposal:    true,
		models.StatusApproved:    true,
		models.StatusClosed:      true,
		models.StatusLost:        true,
		models.StatusAssigned:    true,
	}

	faker := gofakeit.New(1)
	for i := 0; i < 100; i++ {
		lead := GenerateLead(faker, LeadGeneratorConfig{EmailChance: 0.8, PhoneChance: 0.9})
		assert.True(t, defined[lead.Status], "undefined status %q", lead.Status)
		assert.NotEmpty(t, lead.Name)
		assert.NotEmpty(t, lead.Source)
		assert.Contains(t, []int{85, 95}, lead.Score)
	}
}

func TestSeedLeads(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SeedLeads(ctx, st, LeadGeneratorConfig{Count: 10, Seed: 42}))

	leads, err := st.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, leads, 10)
	for _, lead := range leads {
		assert.NotEmpty(t, lead.ID)
	}
}
