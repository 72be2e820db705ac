package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"lead-triage/internal/common/config"
	"lead-triage/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// Sources carries the optional backends a non-builtin corpus is read from.
type Sources struct {
	Postgres      *sql.DB
	Elasticsearch *elasticsearch.Client
}

// Load builds the corpus named by cfg.Source. It is called once at startup.
func Load(ctx context.Context, cfg config.CorpusConfig, src Sources) (*Corpus, error) {
	if cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.GetDuration(cfg.LoadTimeout))
		defer cancel()
	}

	switch cfg.Source {
	case "", config.CorpusSourceBuiltin:
		return Default(), nil
	case config.CorpusSourceFile:
		return LoadFile(cfg.Path)
	case config.CorpusSourcePostgres:
		if src.Postgres == nil {
			return nil, errors.NewCorpusLoadFailedError("postgres", fmt.Errorf("no postgres connection configured"))
		}
		return LoadPostgres(ctx, src.Postgres, cfg.Table)
	case config.CorpusSourceElasticsearch:
		if src.Elasticsearch == nil {
			return nil, errors.NewCorpusLoadFailedError("elasticsearch", fmt.Errorf("no elasticsearch client configured"))
		}
		return LoadElasticsearch(ctx, src.Elasticsearch, cfg.Index)
	default:
		return nil, errors.NewCorpusInvalidError(fmt.Sprintf("unknown corpus source %q", cfg.Source))
	}
}
