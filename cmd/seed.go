package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobmate/review-service/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var (
		out    string
		count  int
		random int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a generated YAML seed file",
		Long:  "Generates reviews and internships from a fixed random seed and writes them to a YAML file usable as SEED_FILE.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			d := seed.Generate(count, random)
			if err := seed.WriteFile(out, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d reviews and %d internships to %s\n", len(d.Reviews), len(d.Internships), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "seed.yaml", "Output file")
	cmd.Flags().IntVarP(&count, "count", "n", 24, "Records of each kind")
	cmd.Flags().Int64Var(&random, "random", 42, "Random seed")
	return cmd
}
