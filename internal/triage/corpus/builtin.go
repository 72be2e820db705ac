package corpus

import "lead-triage/internal/models"

var builtinDeals = []models.DealRecord{
	{
		DealID:   "D001",
		Company:  "Acme Cloud",
		Industry: "SaaS",
		Size:     "Mid",
		Summary:  "Acme Cloud wanted to reduce infra costs; we offered cost-optimization + managed infra; closed in 6 weeks; ARR $120k",
		Outcome:  "Won",
	},
	{
		DealID:   "D002",
		Company:  "RetailCorp",
		Industry: "Retail",
		Size:     "Large",
		Summary:  "RetailCorp required real-time inventory analytics; PoC failed due to incomplete data; lost.",
		Outcome:  "Lost",
	},
	{
		DealID:   "D003",
		Company:  "FinSys",
		Industry: "FinTech",
		Size:     "Mid",
		Summary:  "FinSys needed compliance automation; pilot deployed and upsell into core; ARR $200k",
		Outcome:  "Won",
	},
	{
		DealID:   "D004",
		Company:  "HealthPlus",
		Industry: "Healthcare",
		Size:     "Small",
		Summary:  "HealthPlus wanted telehealth integration; pilot success; closed after 3 months; ARR $40k",
		Outcome:  "Won",
	},
	{
		DealID:   "D005",
		Company:  "LogistiX",
		Industry: "Logistics",
		Size:     "Large",
		Summary:  "LogistiX sought route optimization; technical fit but procurement delays; still in pipeline.",
		Outcome:  "Stalled",
	},
}

// Default returns the built-in five-deal corpus.
func Default() *Corpus {
	return MustNew(builtinDeals)
}
