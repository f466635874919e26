// Package main provides the amplitag command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/amplitag/amplitag/internal/scheme"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "amplitag",
		Short: "Tag tiled-amplicon reads with their originating amplicon",
		Long: `amplitag builds a queryable index over one or more tiled-amplicon
primer schemes and classifies mapped read spans by the amplicon(s) that
produced them. Classifications feed downstream quality control and
consensus building.`,
		Example: `  # Classify mapped spans against one scheme
  amplitag classify --scheme artic_v4.tsv spans.tsv

  # Two schemes, results also persisted to DuckDB
  amplitag classify -s artic_v4.tsv -s midnight.tsv --stats-db run.duckdb spans.tsv

  # Summarize a scheme file
  amplitag inspect artic_v4.tsv`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("amplitag version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig wires viper to ~/.amplitag.yaml and AMPLITAG_* environment
// variables, with defaults for every supported key.
func initConfig() error {
	viper.SetConfigName(".amplitag")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("AMPLITAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("tolerance", scheme.DefaultTolerance)
	viper.SetDefault("workers", 0)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// newLogger builds the CLI logger: a development logger under --verbose,
// otherwise a no-op logger.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}
