package models

import "time"

// Lead statuses follow the CRM pipeline. Webhook ingestions always start at "New".
const (
	StatusNew         = "New"
	StatusContacted   = "Contacted"
	StatusUnavailable = "Unavailable"
	StatusProposal    = "Proposal"
	StatusApproved    = "Approved"
	StatusClosed      = "Closed"
	StatusLost        = "Lost"
	StatusAssigned    = "Assigned"
)

// Qualification tiers rate sales readiness.
const (
	QualificationHot  = "Hot"
	QualificationWarm = "Warm"
	QualificationCold = "Cold"
)

// Product interest classifications offered by the firm.
const (
	ProductLife       = "Life Insurance"
	ProductIUL        = "Indexed Universal Life (IUL)"
	ProductBusiness   = "Business Insurance"
	ProductRealEstate = "Real Estate"
	ProductMortgage   = "Mortgage Lending & Refinance"
	ProductSecurities = "Securities / Series"
	ProductAnnuity    = "Annuity"
)

// Lead is the persisted CRM lead entity. The ID is generated by the store,
// never by business logic.
type Lead struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Interest      string    `json:"interest"`
	Status        string    `json:"status"`
	Source        string    `json:"source,omitempty"`
	Score         int       `json:"score"`
	Qualification string    `json:"qualification"`
	Message       string    `json:"message,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	Campaign      string    `json:"campaign,omitempty"`
	AdGroup       string    `json:"ad_group,omitempty"`
	AdID          string    `json:"ad_id,omitempty"`
	PlatformData  string    `json:"platform_data,omitempty"`
	AIAnalysis    string    `json:"ai_analysis,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LeadFilter represents list filters for leads
type LeadFilter struct {
	Status   string `query:"status"`
	Source   string `query:"source"`
	Interest string `query:"interest"`
	Page     int    `query:"page" validate:"min=0"`
	Limit    int    `query:"limit" validate:"min=0,max=100"`
}

// LeadListResponse represents a paginated list of leads
type LeadListResponse struct {
	Data       []Lead         `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// UpdateStatusRequest updates a lead's pipeline status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=New Contacted Unavailable Proposal Approved Closed Lost Assigned"`
}

// AppendNoteRequest appends a note to a lead
type AppendNoteRequest struct {
	Note string `json:"note" validate:"required,max=10000"`
}
