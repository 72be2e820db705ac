package planner

import (
	"testing"

	"lead-triage/internal/models"

	"github.com/stretchr/testify/assert"
)

func cases(ids ...string) []models.SimilarCase {
	out := make([]models.SimilarCase, len(ids))
	for i, id := range ids {
		out[i] = models.SimilarCase{Score: 0.5, DealRecord: models.DealRecord{DealID: id}}
	}
	return out
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		priority models.Priority
		similar  []models.SimilarCase
		want     models.Plan
	}{
		{
			name:     "high priority",
			priority: models.PriorityHigh,
			similar:  cases("D001", "D004", "D005"),
			want: models.Plan{
				RecommendedAction: "Schedule 30m demo",
				ETA:               "2 hours",
				Rationale:         "Priority-driven. Similar cases: D001, D004, D005",
			},
		},
		{
			name:     "normal priority",
			priority: models.PriorityNormal,
			similar:  cases("D002"),
			want: models.Plan{
				RecommendedAction: "Send introductory email",
				ETA:               "6 hours",
				Rationale:         "Priority-driven. Similar cases: D002",
			},
		},
		{
			name:     "no similar cases",
			priority: models.PriorityHigh,
			similar:  nil,
			want: models.Plan{
				RecommendedAction: "Schedule 30m demo",
				ETA:               "2 hours",
				Rationale:         "Priority-driven. Similar cases: ",
			},
		},
		{
			name:     "unknown priority falls back to normal",
			priority: models.Priority("Urgent"),
			similar:  cases("D003"),
			want: models.Plan{
				RecommendedAction: "Send introductory email",
				ETA:               "6 hours",
				Rationale:         "Priority-driven. Similar cases: D003",
			},
		},
		{
			name:     "missing priority falls back to normal",
			priority: "",
			similar:  cases("D005"),
			want: models.Plan{
				RecommendedAction: "Send introductory email",
				ETA:               "6 hours",
				Rationale:         "Priority-driven. Similar cases: D005",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(models.Context{Priority: tt.priority}, tt.similar)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_ActionIgnoresSimilarCases(t *testing.T) {
	ctx := models.Context{Priority: models.PriorityNormal}

	a := Plan(ctx, cases("D001"))
	b := Plan(ctx, cases("D005", "D002", "D003"))

	assert.Equal(t, a.RecommendedAction, b.RecommendedAction)
	assert.Equal(t, a.ETA, b.ETA)
	assert.NotEqual(t, a.Rationale, b.Rationale)
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, models.PriorityHigh.Valid())
	assert.True(t, models.PriorityNormal.Valid())
	assert.False(t, models.Priority("high").Valid())
	assert.False(t, models.Priority("").Valid())
}
