package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/nhfg/crm-backend/pkg/models"
)

const analystSystemPrompt = `You are a sales analyst for a financial services firm.
Given a lead's details, write a short assessment (3-4 sentences) covering:
1. Likely fit for the product they expressed interest in.
2. Suggested first outreach angle.
3. Any data-quality gaps an advisor should clarify.
Be concrete and concise. Do not invent facts not present in the lead.`

// Service generates lead assessments via an OpenAI-compatible API.
// When no API key is configured the service is disabled and Analyze
// returns an error callers can treat as "not available".
type Service struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewService creates the AI analysis service.
func NewService(apiKey, model string) *Service {
	if apiKey == "" {
		log.Printf("⚠️  AI analysis disabled (set OPENAI_API_KEY to enable)")
		return &Service{enabled: false}
	}

	if model == "" {
		model = openai.GPT4oMini
	}

	log.Printf("✅ AI analysis service initialized (model: %s)", model)
	return &Service{
		client:  openai.NewClient(apiKey),
		model:   model,
		enabled: true,
	}
}

// Enabled reports whether an API key was configured.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Analyze asks the model for a short assessment of the lead.
func (s *Service) Analyze(ctx context.Context, lead *models.Lead) (string, error) {
	if !s.enabled {
		return "", fmt.Errorf("ai analysis is not configured")
	}

	prompt := buildLeadPrompt(lead)

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analystSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
		MaxTokens:   400,
	})
	duration := time.Since(start)

	if err != nil {
		log.Printf("❌ AI analysis failed: %v (duration: %v)", err, duration)
		return "", fmt.Errorf("failed to analyze lead: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	log.Printf("✅ AI analysis completed: %d tokens (duration: %v)", resp.Usage.TotalTokens, duration)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildLeadPrompt(lead *models.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "Interest: %s\n", lead.Interest)
	fmt.Fprintf(&b, "Source: %s\n", lead.Source)
	fmt.Fprintf(&b, "Score: %d (%s)\n", lead.Score, lead.Qualification)
	if lead.Campaign != "" {
		fmt.Fprintf(&b, "Campaign: %s\n", lead.Campaign)
	}
	if lead.Notes != "" {
		fmt.Fprintf(&b, "Notes:\n%s\n", lead.Notes)
	}
	return b.String()
}
