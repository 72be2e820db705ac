package extractor

import (
	"fmt"
	"strings"

	"lead-triage/internal/models"

	"github.com/google/uuid"
)

const unknown = "Unknown"

var highPriorityKeywords = []string{"infra", "cloud", "security"}

// IDFunc returns a fresh lead id.
type IDFunc func() string

// ShortID is the first eight characters of a random UUID.
func ShortID() string {
	return uuid.New().String()[:8]
}

type Extractor struct {
	newID IDFunc
}

func New(newID IDFunc) *Extractor {
	if newID == nil {
		newID = ShortID
	}
	return &Extractor{newID: newID}
}

// Extract normalizes a lead. It never fails: absent fields take defaults and
// a missing lead id is freshly generated, so identical leads without ids get
// distinct ids.
func (e *Extractor) Extract(lead models.RawLead) models.Context {
	leadID := lead.LeadID
	if leadID == "" {
		leadID = e.newID()
	}
	company := orDefault(lead.Company, unknown)
	contact := orDefault(lead.ContactName, unknown)

	return models.Context{
		LeadID:      leadID,
		Company:     company,
		ContactName: contact,
		Priority:    Classify(lead.Painpoints),
		Summary:     fmt.Sprintf("%s at %s: %s | %s", contact, company, lead.Painpoints, lead.Notes),
	}
}

// Extract uses the default short-id generator.
func Extract(lead models.RawLead) models.Context {
	return New(nil).Extract(lead)
}

// Classify is High when the pain points mention any high-priority keyword,
// case-insensitively.
func Classify(painpoints string) models.Priority {
	lower := strings.ToLower(painpoints)
	for _, kw := range highPriorityKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityHigh
		}
	}
	return models.PriorityNormal
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
