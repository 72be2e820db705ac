package composer

import (
	"fmt"

	"lead-triage/internal/models"
)

const bodyTemplate = "Hi %s,\n\n" +
	"I saw your note about %s. We help companies like yours reduce infra costs and accelerate time-to-market.\n\n" +
	"Recommended next step: %s (ETA: %s).\n\n" +
	"Would you be available for a 30-minute demo this week?\n\n" +
	"Best,\nSales Team\n"

// Compose fills the outreach template. Interpolated text is not escaped.
func Compose(ctx models.Context, plan models.Plan) models.Draft {
	return models.Draft{
		Subject: fmt.Sprintf("Quick intro — %s & solution fit", ctx.Company),
		Body:    fmt.Sprintf(bodyTemplate, ctx.ContactName, ctx.Summary, plan.RecommendedAction, plan.ETA),
	}
}
