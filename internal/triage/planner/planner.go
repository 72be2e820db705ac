package planner

import (
	"strings"

	"lead-triage/internal/models"
)

const rationalePrefix = "Priority-driven. Similar cases: "

type policy struct {
	action string
	eta    string
}

var policies = map[models.Priority]policy{
	models.PriorityHigh:   {action: "Schedule 30m demo", eta: "2 hours"},
	models.PriorityNormal: {action: "Send introductory email", eta: "6 hours"},
}

// Plan picks the next action from the lead priority alone; the similar cases
// only feed the rationale. An unrecognized priority is planned as Normal.
func Plan(ctx models.Context, similar []models.SimilarCase) models.Plan {
	priority := ctx.Priority
	if !priority.Valid() {
		priority = models.PriorityNormal
	}
	p := policies[priority]

	ids := make([]string, len(similar))
	for i, c := range similar {
		ids[i] = c.DealID
	}

	return models.Plan{
		RecommendedAction: p.action,
		ETA:               p.eta,
		Rationale:         rationalePrefix + strings.Join(ids, ", "),
	}
}
