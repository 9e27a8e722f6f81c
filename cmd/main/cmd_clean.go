package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCleanCommand(c *cli) *cobra.Command {
	var csvPaths, jsonPaths []string
	var out string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Merge and clean title lists into a corpus file",
		Long: `Merge titles from CSV/TSV and JSON/JSONL sources into one deduplicated,
sorted corpus. The title column is guessed from the header. Missing input
files are skipped with a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var lists [][]string
			for _, path := range append(append([]string{}, csvPaths...), jsonPaths...) {
				titles, err := loadTitles(path)
				if errors.Is(err, os.ErrNotExist) {
					c.logger.Warn("Input file not found, skipping", "path", path)
					continue
				}
				if errors.Is(err, errNoTitleColumn) {
					c.logger.Warn("No title column found, skipping", "path", path, "error", err)
					continue
				}
				if err != nil {
					return err
				}
				c.logger.Info("Loaded titles", "path", path, "count", len(titles))
				lists = append(lists, titles)
			}

			titles := mergeTitles(lists...)
			if len(titles) == 0 {
				return errors.New("no titles found, check the input paths and that a title column exists")
			}
			if err := writeTitlesCSV(out, "title", titles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d titles -> %s\n", len(titles), out)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&csvPaths, "csv", nil, "CSV or TSV input files")
	cmd.Flags().StringSliceVar(&jsonPaths, "json", nil, "JSON or JSONL input files")
	cmd.Flags().StringVar(&out, "out", "clean_titles.csv", "Output CSV file")
	cmd.MarkFlagsOneRequired("csv", "json")

	return cmd
}
