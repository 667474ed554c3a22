package testdata

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/models"
	"github.com/nhfg/crm-backend/pkg/normalizer"
)

// LeadGeneratorConfig configures lead generation parameters
type LeadGeneratorConfig struct {
	Count       int
	EmailChance float64 // 0.0-1.0 (probability of having email)
	PhoneChance float64
	Seed        int64 // 0 uses a time-based seed
}

var platforms = []normalizer.Platform{
	normalizer.PlatformGoogle,
	normalizer.PlatformMeta,
	normalizer.PlatformTikTok,
}

var interests = []string{
	models.ProductLife,
	models.ProductIUL,
	models.ProductBusiness,
	models.ProductAnnuity,
	models.ProductRealEstate,
}

var statuses = []string{
	models.StatusNew,
	models.StatusContacted,
	models.StatusProposal,
	models.StatusAssigned,
}

// GenerateLead produces a single fake lead in the shape webhook
// ingestion would create.
func GenerateLead(faker *gofakeit.Faker, cfg LeadGeneratorConfig) models.Lead {
	platform := platforms[faker.Number(0, len(platforms)-1)]

	email := normalizer.EmailNotProvided
	if faker.Float64Range(0, 1) < cfg.EmailChance {
		email = faker.Email()
	}

	phone := normalizer.PhoneNotAvailable
	if faker.Float64Range(0, 1) < cfg.PhoneChance {
		phone = faker.Phone()
	}

	score := 85
	if platform == normalizer.PlatformGoogle {
		score = 95
	}

	created := faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now())

	return models.Lead{
		Name:          faker.Name(),
		Email:         email,
		Phone:         phone,
		Interest:      interests[faker.Number(0, len(interests)-1)],
		Status:        statuses[faker.Number(0, len(statuses)-1)],
		Source:        fmt.Sprintf("%s_ads", platform),
		Score:         score,
		Qualification: models.QualificationHot,
		Message:       fmt.Sprintf("API Ingested Lead from %s. Form: %s", platform, faker.UUID()),
		Campaign:      fmt.Sprintf("%d", faker.Number(100000000, 999999999)),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

// SeedLeads populates the store with fake leads for local development.
func SeedLeads(ctx context.Context, store domain.LeadStore, cfg LeadGeneratorConfig) error {
	if cfg.Count == 0 {
		cfg.Count = 50
	}
	if cfg.EmailChance == 0 {
		cfg.EmailChance = 0.8
	}
	if cfg.PhoneChance == 0 {
		cfg.PhoneChance = 0.9
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	for i := 0; i < cfg.Count; i++ {
		lead := GenerateLead(faker, cfg)
		if err := store.Create(ctx, &lead); err != nil {
			return fmt.Errorf("failed to seed lead %d: %w", i, err)
		}
	}

	log.Printf("✅ Seeded %d fake leads", cfg.Count)
	return nil
}
