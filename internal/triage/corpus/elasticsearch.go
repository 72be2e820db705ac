package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// maxIndexDeals bounds a single match_all page; the corpus is expected to be small.
const maxIndexDeals = 1000

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.DealRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// LoadElasticsearch reads every document of index sorted by deal_id.
func LoadElasticsearch(ctx context.Context, es *elasticsearch.Client, index string) (*Corpus, error) {
	if index == "" {
		return nil, errors.NewCorpusInvalidError("elasticsearch index name is required")
	}

	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{"deal_id": map[string]interface{}{"order": "asc"}}},
	})

	size := maxIndexDeals
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, es)
	if err != nil {
		return nil, errors.NewCorpusLoadFailedError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewCorpusLoadFailedError("elasticsearch", fmt.Errorf("search %s: %s", index, res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewCorpusLoadFailedError("elasticsearch", fmt.Errorf("decode response: %w", err))
	}

	deals := make([]models.DealRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		deals = append(deals, hit.Source)
	}
	return New(deals)
}
