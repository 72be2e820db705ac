package ranker

import (
	"sort"
	"strconv"
	"strings"

	"lead-triage/internal/models"
)

// Rank scores summary against every deal and returns the best topK, highest
// first. Ties keep corpus order. Scores are rounded to three decimals after
// sorting. Every call is a full scan over the deals, so cost grows with
// corpus size times summary length.
func Rank(summary string, deals []models.DealRecord, topK int) []models.SimilarCase {
	if topK <= 0 || len(deals) == 0 {
		return []models.SimilarCase{}
	}

	query := strings.ToLower(summary)
	scored := make([]models.SimilarCase, len(deals))
	for i, d := range deals {
		scored[i] = models.SimilarCase{
			Score:      Ratio(query, strings.ToLower(d.Summary)),
			DealRecord: d,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	for i := range scored {
		scored[i].Score = Round3(scored[i].Score)
	}
	return scored
}

// Round3 rounds to three decimals, resolving ties on the exact binary value
// to even.
func Round3(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// DealIDs lists the deal ids of cases in order.
func DealIDs(cases []models.SimilarCase) []string {
	ids := make([]string, len(cases))
	for i, c := range cases {
		ids[i] = c.DealID
	}
	return ids
}
