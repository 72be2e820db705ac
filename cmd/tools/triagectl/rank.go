package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"lead-triage/internal/triage/ranker"

	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	var (
		summary string
		file    string
		top     int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank corpus deals against a lead summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if top < 1 {
				return fmt.Errorf("--top must be positive")
			}
			c, err := loadCorpus(file)
			if err != nil {
				return err
			}

			similar := ranker.Rank(summary, c.Deals(), top)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(similar)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DEAL\tSCORE\tOUTCOME\tSUMMARY")
			for _, s := range similar {
				fmt.Fprintf(w, "%s\t%.3f\t%s\t%s\n", s.DealID, s.Score, s.Outcome, s.Summary)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "", "Lead summary to rank against")
	cmd.Flags().StringVar(&file, "file", "", "Path to a deals JSON file (default: built-in corpus)")
	cmd.Flags().IntVar(&top, "top", 3, "Number of similar deals to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	_ = cmd.MarkFlagRequired("summary")

	return cmd
}
