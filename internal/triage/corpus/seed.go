package corpus

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SeedPostgres creates table if needed and upserts every deal of c in one
// transaction, so the postgres corpus source can be populated from a file.
func SeedPostgres(ctx context.Context, db *sql.DB, table string, c *Corpus) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed postgres: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			deal_id  TEXT PRIMARY KEY,
			company  TEXT NOT NULL,
			industry TEXT NOT NULL DEFAULT '',
			size     TEXT NOT NULL DEFAULT '',
			summary  TEXT NOT NULL,
			outcome  TEXT NOT NULL
		)`, table)); err != nil {
		return fmt.Errorf("seed postgres: create table: %w", err)
	}

	upsert := fmt.Sprintf(`
		INSERT INTO %s (deal_id, company, industry, size, summary, outcome)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (deal_id) DO UPDATE SET
			company = EXCLUDED.company,
			industry = EXCLUDED.industry,
			size = EXCLUDED.size,
			summary = EXCLUDED.summary,
			outcome = EXCLUDED.outcome`, table)

	for _, d := range c.deals {
		if _, err := tx.ExecContext(ctx, upsert, d.DealID, d.Company, d.Industry, d.Size, d.Summary, d.Outcome); err != nil {
			return fmt.Errorf("seed postgres: deal %s: %w", d.DealID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed postgres: commit: %w", err)
	}
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
	} `json:"items"`
}

// SeedElasticsearch indexes every deal of c under its deal_id and refreshes
// the index so a following load sees them.
func SeedElasticsearch(ctx context.Context, es *elasticsearch.Client, index string, c *Corpus) error {
	if index == "" {
		return fmt.Errorf("elasticsearch index name is required")
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, d := range c.deals {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": index, "_id": d.DealID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(d); err != nil {
			return err
		}
	}

	req := esapi.BulkRequest{
		Body:    &body,
		Refresh: "true",
	}

	res, err := req.Do(ctx, es)
	if err != nil {
		return fmt.Errorf("seed elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("seed elasticsearch: bulk %s: %s", index, res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("seed elasticsearch: decode response: %w", err)
	}
	if parsed.Errors {
		for _, item := range parsed.Items {
			for _, result := range item {
				if result.Status >= 300 {
					return fmt.Errorf("seed elasticsearch: deal %s rejected with status %d", result.ID, result.Status)
				}
			}
		}
		return fmt.Errorf("seed elasticsearch: bulk request reported errors")
	}
	return nil
}
