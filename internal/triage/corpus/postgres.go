package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/models"
)

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// LoadPostgres reads every row of table ordered by deal_id.
func LoadPostgres(ctx context.Context, db *sql.DB, table string) (*Corpus, error) {
	if !tableName.MatchString(table) {
		return nil, errors.NewCorpusInvalidError(fmt.Sprintf("invalid table name %q", table))
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT deal_id, company, industry, size, summary, outcome
		FROM %s
		ORDER BY deal_id`, table))
	if err != nil {
		return nil, errors.NewCorpusLoadFailedError("postgres", err)
	}
	defer rows.Close()

	var deals []models.DealRecord
	for rows.Next() {
		var d models.DealRecord
		if err := rows.Scan(&d.DealID, &d.Company, &d.Industry, &d.Size, &d.Summary, &d.Outcome); err != nil {
			return nil, errors.NewCorpusLoadFailedError("postgres", err)
		}
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCorpusLoadFailedError("postgres", err)
	}

	return New(deals)
}
