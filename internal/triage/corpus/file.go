package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"lead-triage/internal/common/errors"
	"lead-triage/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

const dealsSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["deal_id", "company", "summary", "outcome"],
		"properties": {
			"deal_id":  {"type": "string", "minLength": 1},
			"company":  {"type": "string"},
			"industry": {"type": "string"},
			"size":     {"type": "string"},
			"summary":  {"type": "string"},
			"outcome":  {"type": "string", "minLength": 1}
		}
	}
}`

// LoadFile reads a JSON array of deals from path.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCorpusLoadFailedError("file", err)
	}
	return Parse(data)
}

// Parse validates raw JSON against the deal schema before decoding it.
func Parse(data []byte) (*Corpus, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(dealsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, errors.NewCorpusInvalidError(fmt.Sprintf("decode: %v", err))
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return nil, errors.NewCorpusInvalidError(strings.Join(msgs, "; "))
	}

	var deals []models.DealRecord
	if err := json.Unmarshal(data, &deals); err != nil {
		return nil, errors.NewCorpusInvalidError(fmt.Sprintf("decode: %v", err))
	}
	return New(deals)
}
