package main

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/CTAG07/titleforge/pkg/markov"
)

func newModelCommand(c *cli) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage fitted models in the model database",
		Long: `Fit corpora into the SQLite model database, inspect stored models and move
them between machines as JSON.`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Model database, defaults to database_path from the config")

	// withStore opens the store for the duration of fn.
	withStore := func(fn func(cmd *cobra.Command, args []string, store *markov.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			dataSource := dbPath
			if dataSource == "" {
				dataSource = c.config.DatabasePath
			}
			db, store, err := openStore(dataSource, c.logger)
			if err != nil {
				return err
			}
			defer func() {
				store.Close()
				_ = db.Close()
			}()
			return fn(cmd, args, store)
		}
	}

	// model save
	var in string
	var order int
	saveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Fit a corpus and store the model under a name",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			if !cmd.Flags().Changed("order") {
				order = c.config.Generation.Order
			}
			titles, err := loadTitles(in)
			if err != nil {
				return fmt.Errorf("failed to load corpus: %w", err)
			}
			model, err := markov.NewModel(order)
			if err != nil {
				return err
			}
			model.SetLogger(c.logger)
			model.Fit(titles)

			info, err := store.SaveModel(cmd.Context(), args[0], model)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved model %q (id %d, order %d) fitted on %d titles\n", info.Name, info.Id, info.Order, len(titles))
			return nil
		}),
	}
	saveCmd.Flags().StringVar(&in, "in", "clean_titles.csv", "Corpus file with real titles")
	saveCmd.Flags().IntVar(&order, "order", 3, "n-gram order, defaults to the configured order")
	cmd.AddCommand(saveCmd)

	// model export
	var exportOut string
	exportCmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Export a stored model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			model, err := store.LoadModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			model.SetLogger(c.logger)
			if exportOut == "" || exportOut == "-" {
				return model.Export(cmd.OutOrStdout(), args[0])
			}
			var buf bytes.Buffer
			if err = model.Export(&buf, args[0]); err != nil {
				return err
			}
			return writeFileAtomic(exportOut, buf.Bytes())
		}),
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, stdout when empty")
	cmd.AddCommand(exportCmd)

	// model import
	var importName string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON model into the database",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			model, name, err := markov.ImportModel(f)
			if err != nil {
				return err
			}
			if importName != "" {
				name = importName
			}
			if name == "" {
				return fmt.Errorf("%s has no model name, pass --name", args[0])
			}
			info, err := store.SaveModel(cmd.Context(), name, model)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported model %q (id %d, order %d)\n", info.Name, info.Id, info.Order)
			return nil
		}),
	}
	importCmd.Flags().StringVar(&importName, "name", "", "Store under this name instead of the one in the file")
	cmd.AddCommand(importCmd)

	// model stats
	cmd.AddCommand(&cobra.Command{
		Use:   "stats <name>",
		Short: "Show statistics of a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			model, err := store.LoadModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s := model.Stats()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "model\t%s\n", args[0])
			fmt.Fprintf(tw, "order\t%d\n", s.Order)
			fmt.Fprintf(tw, "contexts\t%d\n", s.Contexts)
			fmt.Fprintf(tw, "chains\t%d\n", s.TotalChains)
			fmt.Fprintf(tw, "total frequency\t%d\n", s.TotalFrequency)
			fmt.Fprintf(tw, "starting contexts\t%d\n", s.StartingContexts)
			fmt.Fprintf(tw, "vocabulary\t%d\n", s.VocabSize)
			return tw.Flush()
		}),
	})

	// model list
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			infos, err := store.ModelInfos(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(infos))
			for name := range infos {
				names = append(names, name)
			}
			sort.Strings(names)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tORDER")
			for _, name := range names {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", infos[name].Id, name, infos[name].Order)
			}
			return tw.Flush()
		}),
	})

	// model remove
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			if err := store.RemoveModel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed model %q\n", args[0])
			return nil
		}),
	})

	// model prune
	var minFreq int
	pruneCmd := &cobra.Command{
		Use:   "prune <name>",
		Short: "Drop rare transitions from a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store *markov.Store) error {
			removed, err := store.PruneModel(cmd.Context(), args[0], minFreq)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d transitions with frequency <= %d from %q\n", removed, minFreq, args[0])
			return nil
		}),
	}
	pruneCmd.Flags().IntVar(&minFreq, "min-freq", 1, "Remove transitions seen this often or less")
	cmd.AddCommand(pruneCmd)

	return cmd
}
