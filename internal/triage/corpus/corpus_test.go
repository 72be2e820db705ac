package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lead-triage/internal/common/config"
	"lead-triage/internal/common/errors"
	"lead-triage/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	require.Equal(t, 5, c.Len())
	ids := make([]string, 0, c.Len())
	for _, d := range c.Deals() {
		ids = append(ids, d.DealID)
	}
	assert.Equal(t, []string{"D001", "D002", "D003", "D004", "D005"}, ids)

	d, ok := c.Get("D001")
	require.True(t, ok)
	assert.Equal(t, "Acme Cloud", d.Company)
	assert.Equal(t, "Won", d.Outcome)

	_, ok = c.Get("D999")
	assert.False(t, ok)
}

func TestDeals_ReturnsCopy(t *testing.T) {
	c := Default()

	deals := c.Deals()
	deals[0].Summary = "mutated"

	assert.NotEqual(t, "mutated", c.Deals()[0].Summary)
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		deals []models.DealRecord
		want  string
	}{
		{
			name:  "empty id",
			deals: []models.DealRecord{{DealID: ""}},
			want:  "no deal_id",
		},
		{
			name:  "duplicate id",
			deals: []models.DealRecord{{DealID: "D1"}, {DealID: "D2"}, {DealID: "D1"}},
			want:  `duplicate deal_id "D1" at positions 0 and 2`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.deals)
			require.Error(t, err)
			stdErr := errors.AsStandardError(err)
			assert.Equal(t, errors.ErrCodeCorpusInvalid, stdErr.Code)
			assert.Contains(t, stdErr.Details, tt.want)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := Parse([]byte(`[
			{"deal_id":"X2","company":"Beta","summary":"beta summary","outcome":"Lost"},
			{"deal_id":"X1","company":"Alpha","industry":"SaaS","size":"Mid","summary":"alpha summary","outcome":"Won"}
		]`))
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())
		assert.Equal(t, "X2", c.Deals()[0].DealID)
		assert.Equal(t, "SaaS", c.Deals()[1].Industry)
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := Parse([]byte(`[{"deal_id":"X1","company":"Alpha"}]`))
		require.Error(t, err)
		stdErr := errors.AsStandardError(err)
		assert.Equal(t, errors.ErrCodeCorpusInvalid, stdErr.Code)
		assert.Contains(t, stdErr.Details, "summary")
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := Parse([]byte(`{"deal_id":"X1"}`))
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusInvalid, errors.AsStandardError(err).Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Parse([]byte(`[{`))
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusInvalid, errors.AsStandardError(err).Code)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := Parse([]byte(`[
			{"deal_id":"X1","company":"A","summary":"a","outcome":"Won"},
			{"deal_id":"X1","company":"B","summary":"b","outcome":"Won"}
		]`))
		require.Error(t, err)
		assert.Contains(t, errors.AsStandardError(err).Details, "duplicate")
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deals.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"deal_id":"F1","company":"FileCo","summary":"from disk","outcome":"Won"}]`), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "FileCo", c.Deals()[0].Company)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	stdErr := errors.AsStandardError(err)
	assert.Equal(t, errors.ErrCodeCorpusLoadFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestLoadPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"deal_id", "company", "industry", "size", "summary", "outcome"}).
		AddRow("D001", "Acme Cloud", "SaaS", "Mid", "reduce infra costs", "Won").
		AddRow("D002", "RetailCorp", "Retail", "Large", "inventory analytics", "Lost")
	mock.ExpectQuery(`SELECT deal_id, company, industry, size, summary, outcome FROM past_deals ORDER BY deal_id`).
		WillReturnRows(rows)

	c, err := LoadPostgres(context.Background(), db, "past_deals")
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "RetailCorp", c.Deals()[1].Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPostgres_Errors(t *testing.T) {
	t.Run("query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT deal_id`).WillReturnError(fmt.Errorf("relation does not exist"))

		_, err = LoadPostgres(context.Background(), db, "past_deals")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusLoadFailed, errors.AsStandardError(err).Code)
	})

	t.Run("bad table name", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, err = LoadPostgres(context.Background(), db, "deals; DROP TABLE x")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusInvalid, errors.AsStandardError(err).Code)
	})

	t.Run("duplicate rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"deal_id", "company", "industry", "size", "summary", "outcome"}).
			AddRow("D001", "A", "", "", "a", "Won").
			AddRow("D001", "B", "", "", "b", "Won")
		mock.ExpectQuery(`SELECT deal_id`).WillReturnRows(rows)

		_, err = LoadPostgres(context.Background(), db, "past_deals")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusInvalid, errors.AsStandardError(err).Code)
	})
}

func newTestElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/" {
			_, _ = w.Write([]byte(`{"version":{"number":"8.11.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestLoadElasticsearch(t *testing.T) {
	var gotPath, gotBody string
	es := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"deal_id":"D001","company":"Acme Cloud","industry":"SaaS","size":"Mid","summary":"infra","outcome":"Won"}},
			{"_source":{"deal_id":"D003","company":"FinSys","industry":"FinTech","size":"Mid","summary":"compliance","outcome":"Won"}}
		]}}`))
	})

	c, err := LoadElasticsearch(context.Background(), es, "past-deals")
	require.NoError(t, err)

	assert.Equal(t, "/past-deals/_search", gotPath)
	assert.Contains(t, gotBody, `"match_all"`)
	assert.Contains(t, gotBody, `"deal_id"`)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "FinSys", c.Deals()[1].Company)
}

func TestLoadElasticsearch_Errors(t *testing.T) {
	t.Run("missing index", func(t *testing.T) {
		es := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
		})

		_, err := LoadElasticsearch(context.Background(), es, "past-deals")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusLoadFailed, errors.AsStandardError(err).Code)
	})

	t.Run("empty index name", func(t *testing.T) {
		es := newTestElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := LoadElasticsearch(context.Background(), es, "")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeCorpusInvalid, errors.AsStandardError(err).Code)
	})
}

func TestLoad_Sources(t *testing.T) {
	c, err := Load(context.Background(), config.CorpusConfig{Source: config.CorpusSourceBuiltin}, Sources{})
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	c, err = Load(context.Background(), config.CorpusConfig{}, Sources{})
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())

	_, err = Load(context.Background(), config.CorpusConfig{Source: config.CorpusSourcePostgres, Table: "past_deals"}, Sources{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusLoadFailed, errors.AsStandardError(err).Code)

	_, err = Load(context.Background(), config.CorpusConfig{Source: config.CorpusSourceElasticsearch}, Sources{})
	require.Error(t, err)

	_, err = Load(context.Background(), config.CorpusConfig{Source: "s3"}, Sources{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCorpusInvalid, errors.AsStandardError(err).Code)
}
