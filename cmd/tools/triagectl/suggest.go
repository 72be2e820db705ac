package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"lead-triage/internal/triage/ledger"
	"lead-triage/internal/triage/pipeline"

	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		leadFile string
		file     string
		top      int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Run the suggestion pipeline for one lead without side effects",
		Long:  "suggest reads a lead JSON document from --lead (or stdin when --lead is \"-\") and prints the suggestion the service would create.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, leadFile)
			if err != nil {
				return err
			}

			lead, err := pipeline.DecodeLead(data)
			if err != nil {
				return err
			}

			c, err := loadCorpus(file)
			if err != nil {
				return err
			}

			l := ledger.New(ledger.Options{})
			defer l.Close(context.Background())

			svc, err := pipeline.NewService(pipeline.Options{
				Corpus: c,
				Ledger: l,
				TopK:   top,
			})
			if err != nil {
				return err
			}

			result, err := svc.CreateSuggestion(cmd.Context(), lead)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Suggestion)
		},
	}

	cmd.Flags().StringVar(&leadFile, "lead", "-", "Path to a lead JSON file, or - for stdin")
	cmd.Flags().StringVar(&file, "file", "", "Path to a deals JSON file (default: built-in corpus)")
	cmd.Flags().IntVar(&top, "top", pipeline.DefaultTopK, "Number of similar deals to include")

	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lead: %w", err)
	}
	return data, nil
}
