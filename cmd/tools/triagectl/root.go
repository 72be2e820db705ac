package main

import (
	"lead-triage/internal/triage/corpus"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "triagectl",
		Short:         "Offline tooling for the lead triage service",
		Long:          "triagectl validates deal corpora and activity registries, and runs the suggestion pipeline locally against a corpus.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newCorpusCmd(),
		newRankCmd(),
		newSuggestCmd(),
		newRegistryCmd(),
	)

	return rootCmd
}

// loadCorpus reads a deals file, or falls back to the built-in corpus.
func loadCorpus(path string) (*corpus.Corpus, error) {
	if path == "" {
		return corpus.Default(), nil
	}
	return corpus.LoadFile(path)
}
