package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/amplitag/amplitag/internal/classify"
	"github.com/amplitag/amplitag/internal/duckdb"
	"github.com/amplitag/amplitag/internal/output"
	"github.com/amplitag/amplitag/internal/scheme"
	"github.com/amplitag/amplitag/internal/spans"
)

func newClassifyCmd() *cobra.Command {
	var (
		schemeFiles []string
		outputFile  string
		statsDB     string
	)

	cmd := &cobra.Command{
		Use:   "classify [flags] <spans-file>",
		Short: "Classify mapped read spans against one or more schemes",
		Long: `Classify reads each span (Read_name, Start, End; tab-separated, 0-based
half-open) from the given file and reports, per configured scheme, which
amplicon(s) produced the read. Use '-' to read spans from stdin.`,
		Example: `  amplitag classify --scheme artic_v4.tsv spans.tsv
  amplitag classify -s a.tsv -s b.tsv -o results.tsv spans.tsv
  cat spans.tsv | amplitag classify -s artic_v4.tsv -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bind here so the running command's flags win over any
			// sibling command that shares the key.
			_ = viper.BindPFlag("tolerance", cmd.Flags().Lookup("tolerance"))
			_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
			return runClassify(args[0], schemeFiles, outputFile, statsDB)
		},
	}

	cmd.Flags().StringArrayVarP(&schemeFiles, "scheme", "s", nil, "scheme TSV file (repeatable)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&statsDB, "stats-db", "", "also record classifications in a DuckDB database")
	cmd.Flags().Int64("tolerance", scheme.DefaultTolerance, "padding added to amplicon spans before indexing")
	cmd.Flags().Int("workers", 0, "classification workers (0 = one per CPU)")
	_ = cmd.MarkFlagRequired("scheme")

	return cmd
}

func runClassify(spansPath string, schemeFiles []string, outputFile, statsDB string) error {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	tolerance := viper.GetInt64("tolerance")
	workers := viper.GetInt("workers")

	sets, err := scheme.LoadSchemes(schemeFiles, tolerance)
	if err != nil {
		return err
	}
	for _, set := range sets {
		logger.Info("loaded scheme",
			zap.String("scheme", set.Name()),
			zap.String("shortname", string(set.Shortname())),
			zap.Int("amplicons", set.Len()),
			zap.Int64("tolerance", set.Tolerance()))
	}

	classifier, err := classify.New(sets)
	if err != nil {
		return err
	}
	classifier.SetLogger(logger)

	src, err := spans.NewParser(spansPath)
	if err != nil {
		return err
	}
	defer src.Close()

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()
	}

	writers := []classify.ResultWriter{output.NewTabWriter(out, sets)}

	if statsDB != "" {
		store, err := duckdb.Open(statsDB)
		if err != nil {
			return err
		}
		defer store.Close()
		writers = append(writers, duckdb.NewResultWriter(store, sets))
	}

	if err := classifier.ClassifyAll(src, workers, writers...); err != nil {
		return err
	}

	logger.Info("classification complete", zap.Int("schemes", len(sets)))
	return nil
}
