package main

import (
	"context"
	"fmt"
	"time"

	"lead-triage/internal/common/config"
	"lead-triage/internal/common/database"
	"lead-triage/internal/triage/corpus"

	"github.com/spf13/cobra"
)

func newCorpusCmd() *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect deal corpora",
	}

	var file string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a deals file against the corpus schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadCorpus(file)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "corpus valid: %d deals\n", c.Len())
			return err
		},
	}
	validateCmd.Flags().StringVar(&file, "file", "", "Path to a deals JSON file (default: built-in corpus)")

	corpusCmd.AddCommand(validateCmd, newCorpusSeedCmd())
	return corpusCmd
}

func newCorpusSeedCmd() *cobra.Command {
	var (
		file       string
		target     string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a deals file into the postgres table or elasticsearch index the server loads from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target != config.CorpusSourcePostgres && target != config.CorpusSourceElasticsearch {
				return fmt.Errorf("--target must be %q or %q", config.CorpusSourcePostgres, config.CorpusSourceElasticsearch)
			}

			deals, err := loadCorpus(file)
			if err != nil {
				return err
			}

			cfg, err := loadSeedConfig(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			switch target {
			case config.CorpusSourcePostgres:
				pg, err := database.NewPostgres(cfg.Database.Postgres)
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := corpus.SeedPostgres(ctx, pg.DB, cfg.Pipeline.Corpus.Table, deals); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d deals into postgres table %s\n", deals.Len(), cfg.Pipeline.Corpus.Table)
				return err
			default:
				es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
				if err != nil {
					return err
				}
				if err := corpus.SeedElasticsearch(ctx, es.Client, cfg.Pipeline.Corpus.Index, deals); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d deals into elasticsearch index %s\n", deals.Len(), cfg.Pipeline.Corpus.Index)
				return err
			}
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to a deals JSON file (default: built-in corpus)")
	cmd.Flags().StringVar(&target, "target", "", "Backend to seed: postgres or elasticsearch")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (default: search ./configs)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func loadSeedConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
