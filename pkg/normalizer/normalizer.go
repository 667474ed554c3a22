package normalizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/models"
)

// Platform identifies a supported ad platform.
type Platform string

const (
	PlatformGoogle Platform = "google"
	PlatformMeta   Platform = "meta"
	PlatformTikTok Platform = "tiktok"
)

// Sentinel values for absent contact fields. These are significant: the
// dedup matcher excludes them from matching, so they must be these exact
// strings rather than empty strings.
const (
	EmailNotProvided  = "Not Provided"
	PhoneNotAvailable = "N/A"
)

// CanonicalLead is the unified representation of an inbound marketing lead,
// regardless of source platform. Every field except RawPayload and Timestamp
// is always a defined string, so downstream logic never branches on missing
// fields, only on sentinel values.
type CanonicalLead struct {
	ExternalID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Platform   Platform
	CampaignID string
	AdGroupID  string
	FormID     string
	AdID       string
	Interest   string
	RawPayload map[string]interface{}
	Timestamp  time.Time
}

// FullName joins first and last name the way the CRM displays leads.
func (c *CanonicalLead) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Source returns the lead source tag ("<platform>_ads").
func (c *CanonicalLead) Source() string {
	return string(c.Platform) + "_ads"
}

type normalizeFunc func(payload map[string]interface{}) *CanonicalLead

// One pure transformer per platform, dispatched on the platform tag.
var normalizers = map[Platform]normalizeFunc{
	PlatformGoogle: fromGoogle,
	PlatformMeta:   fromMeta,
	PlatformTikTok: fromTikTok,
}

// Supported reports whether the platform tag is recognized.
func Supported(platform Platform) bool {
	_, ok := normalizers[platform]
	return ok
}

// Normalize converts a raw webhook payload into a CanonicalLead. It never
// fails on malformed or partial payloads — fields degrade to their sentinel
// or placeholder values. The only error is an unrecognized platform.
func Normalize(platform Platform, payload map[string]interface{}) (*CanonicalLead, error) {
	fn, ok := normalizers[platform]
	if !ok {
		return nil, domain.NewUnsupportedPlatformError(string(platform))
	}

	lead := fn(payload)
	lead.Platform = platform
	lead.RawPayload = payload
	lead.Timestamp = time.Now().UTC()
	return lead, nil
}

// fromGoogle handles Google Lead Form payloads. Contact fields arrive as a
// sparse key-value list under user_column_data; attribution IDs sit at the
// top level and may be numeric.
func fromGoogle(payload map[string]interface{}) *CanonicalLead {
	fields := map[string]string{}
	for _, col := range asSlice(payload, "user_column_data") {
		if m, ok := col.(map[string]interface{}); ok {
			fields[str(m, "column_id")] = str(m, "string_value")
		}
	}

	first, last := splitName(fields["FULL_NAME"])
	if first == "" {
		first = fields["FIRST_NAME"]
	}
	if first == "" {
		first = "Unknown"
	}
	if last == "" {
		last = fields["LAST_NAME"]
	}
	if last == "" {
		last = "User"
	}

	interest := fields["PRODUCT_INTEREST"]
	if interest == "" {
		interest = models.ProductLife
	}

	return &CanonicalLead{
		ExternalID: str(payload, "lead_id"),
		FirstName:  first,
		LastName:   last,
		Email:      orSentinel(fields["EMAIL"], EmailNotProvided),
		Phone:      orSentinel(fields["PHONE_NUMBER"], PhoneNotAvailable),
		CampaignID: str(payload, "campaign_id"),
		AdGroupID:  str(payload, "ad_group_id"),
		FormID:     str(payload, "form_id"),
		AdID:       str(payload, "ad_id"),
		Interest:   interest,
	}
}

// fromMeta handles Meta Lead Ads payloads. Deliveries may be wrapped in the
// webhook envelope (entry[0].changes[0].value) or may already be the inner
// value object. Fields arrive either pre-normalized (normalized_fields) or
// as a field_data array needing key-value reconstruction.
func fromMeta(payload map[string]interface{}) *CanonicalLead {
	value := payload
	if entries := asSlice(payload, "entry"); len(entries) > 0 {
		if entry, ok := entries[0].(map[string]interface{}); ok {
			if changes := asSlice(entry, "changes"); len(changes) > 0 {
				if change, ok := changes[0].(map[string]interface{}); ok {
					if v := asMap(change, "value"); v != nil {
						value = v
					}
				}
			}
		}
	}

	fields := map[string]string{}
	if nf := asMap(value, "normalized_fields"); nf != nil {
		for k, v := range nf {
			fields[k] = stringify(v)
		}
	} else {
		for _, f := range asSlice(value, "field_data") {
			m, ok := f.(map[string]interface{})
			if !ok {
				continue
			}
			if values, ok := m["values"].([]interface{}); ok && len(values) > 0 {
				fields[str(m, "name")] = stringify(values[0])
			}
		}
	}

	fullName := fields["full_name"]
	if fullName == "" {
		fullName = str(value, "full_name")
	}
	first, last := splitName(fullName)
	if first == "" {
		first = "Meta"
	}
	if last == "" {
		last = "User"
	}

	email := fields["email"]
	if email == "" {
		email = str(value, "email")
	}
	phone := fields["phone"]
	if phone == "" {
		phone = fields["phone_number"]
	}
	if phone == "" {
		phone = str(value, "phone_number")
	}

	interest := fields["interest"]
	if interest == "" {
		interest = models.ProductBusiness
	}

	return &CanonicalLead{
		ExternalID: str(value, "leadgen_id"),
		FirstName:  first,
		LastName:   last,
		Email:      orSentinel(email, EmailNotProvided),
		Phone:      orSentinel(phone, PhoneNotAvailable),
		CampaignID: str(value, "campaign_id"),
		AdGroupID:  str(value, "adset_id"),
		FormID:     str(value, "form_id"),
		AdID:       str(value, "ad_id"),
		Interest:   interest,
	}
}

// fromTikTok handles TikTok Lead Generation payloads, which nest contact
// details under data.details. The interest is always IUL — TikTok campaigns
// are run exclusively for that product line, so the classification is locked
// regardless of payload content.
func fromTikTok(payload map[string]interface{}) *CanonicalLead {
	data := asMap(payload, "data")
	details := asMap(data, "details")

	first, last := splitName(str(details, "name"))
	if first == "" {
		first = "TikTok"
	}
	if last == "" {
		last = "User"
	}

	return &CanonicalLead{
		ExternalID: str(data, "lead_id"),
		FirstName:  first,
		LastName:   last,
		Email:      orSentinel(str(details, "email"), EmailNotProvided),
		Phone:      orSentinel(str(details, "phone"), PhoneNotAvailable),
		CampaignID: str(data, "campaign_id"),
		FormID:     str(data, "form_id"),
		AdID:       str(data, "ad_id"),
		Interest:   models.ProductIUL,
	}
}

// splitName splits a full name once on the first space. The remainder is the
// last name ("Mary Jane Watson" -> "Mary", "Jane Watson").
func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	if i := strings.IndexByte(full, ' '); i >= 0 {
		return full[:i], strings.TrimSpace(full[i+1:])
	}
	return full, ""
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

func asMap(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]interface{})
	return v
}

func asSlice(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	v, _ := m[key].([]interface{})
	return v
}

// str reads a key from the payload and coerces it to string. Ad platforms
// send attribution IDs as numbers or strings interchangeably.
func str(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	return stringify(m[key])
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
