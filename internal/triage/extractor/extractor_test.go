package extractor

import (
	"testing"

	"lead-triage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(id string) IDFunc {
	return func() string { return id }
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		lead models.RawLead
		want models.Context
	}{
		{
			name: "full lead",
			lead: models.RawLead{
				LeadID:      "L-1",
				Company:     "Acme",
				ContactName: "Jane",
				Notes:       "budget approved",
				Painpoints:  "cloud costs too high",
			},
			want: models.Context{
				LeadID:      "L-1",
				Company:     "Acme",
				ContactName: "Jane",
				Priority:    models.PriorityHigh,
				Summary:     "Jane at Acme: cloud costs too high | budget approved",
			},
		},
		{
			name: "empty lead takes defaults",
			lead: models.RawLead{},
			want: models.Context{
				LeadID:      "gen00001",
				Company:     "Unknown",
				ContactName: "Unknown",
				Priority:    models.PriorityNormal,
				Summary:     "Unknown at Unknown:  | ",
			},
		},
		{
			name: "normal priority",
			lead: models.RawLead{LeadID: "L-2", Company: "Beta", ContactName: "Bo", Painpoints: "wants a demo"},
			want: models.Context{
				LeadID:      "L-2",
				Company:     "Beta",
				ContactName: "Bo",
				Priority:    models.PriorityNormal,
				Summary:     "Bo at Beta: wants a demo | ",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(fixedID("gen00001")).Extract(tt.lead)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		painpoints string
		want       models.Priority
	}{
		{"Needs better Cloud security", models.PriorityHigh},
		{"INFRASTRUCTURE sprawl", models.PriorityHigh},
		{"worried about SECURITY", models.PriorityHigh},
		{"multicloudish setup", models.PriorityHigh},
		{"wants a demo", models.PriorityNormal},
		{"", models.PriorityNormal},
		{"inf ra", models.PriorityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.painpoints, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.painpoints))
		})
	}
}

func TestExtract_GeneratesDistinctIDs(t *testing.T) {
	lead := models.RawLead{Company: "Acme", ContactName: "Jane"}

	a := Extract(lead)
	b := Extract(lead)

	require.Len(t, a.LeadID, 8)
	require.Len(t, b.LeadID, 8)
	assert.NotEqual(t, a.LeadID, b.LeadID)
}

func TestExtract_NeverEmpty(t *testing.T) {
	leads := []models.RawLead{
		{},
		{Notes: "only notes"},
		{Painpoints: "security"},
		{LeadID: "x"},
	}

	for _, lead := range leads {
		ctx := Extract(lead)
		assert.NotEmpty(t, ctx.LeadID)
		assert.NotEmpty(t, ctx.Company)
		assert.NotEmpty(t, ctx.ContactName)
		assert.NotEmpty(t, ctx.Summary)
		assert.True(t, ctx.Priority.Valid())
	}
}
