package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amplitag/amplitag/internal/scheme"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <scheme-file>",
		Short: "Summarize a primer scheme file",
		Long: `Inspect loads a scheme TSV, builds the amplicon index (including the
build-time overlap checks) and prints a per-amplicon summary.`,
		Example: `  amplitag inspect artic_v4.tsv
  amplitag inspect --tolerance 10 artic_v4.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = viper.BindPFlag("tolerance", cmd.Flags().Lookup("tolerance"))
			return runInspect(args[0])
		},
	}

	cmd.Flags().Int64("tolerance", scheme.DefaultTolerance, "padding added to amplicon spans before indexing")

	return cmd
}

func runInspect(path string) error {
	tolerance := viper.GetInt64("tolerance")

	set, err := scheme.FromTSVWithOptions(path, "", tolerance, 0)
	if err != nil {
		return err
	}

	fmt.Printf("Scheme: %s\n", set.Name())
	fmt.Printf("Shortname: %s\n", string(set.Shortname()))
	fmt.Printf("Tolerance: %d\n", set.Tolerance())
	fmt.Printf("Min primer length: %d\n", set.MinPrimerLength())
	fmt.Printf("Amplicons: %d\n\n", set.Len())

	header := []string{"Amplicon", "Id", "Span", "Padded_span", "Left_primers", "Right_primers", "Left_region", "Right_region"}
	fmt.Println(strings.Join(header, "\t"))

	for _, a := range set.Amplicons() {
		leftRegion := "-"
		if s, e, ok := a.LeftPrimerRegion(); ok {
			leftRegion = fmt.Sprintf("[%d,%d)", s, e)
		}
		rightRegion := "-"
		if s, e, ok := a.RightPrimerRegion(); ok {
			rightRegion = fmt.Sprintf("[%d,%d)", s, e)
		}

		row := []string{
			a.Name,
			fmt.Sprintf("%d", a.Shortname),
			fmt.Sprintf("[%d,%d)", a.Start, a.End),
			fmt.Sprintf("[%d,%d)", a.Start-set.Tolerance(), a.End+set.Tolerance()),
			fmt.Sprintf("%d", len(a.Left)),
			fmt.Sprintf("%d", len(a.Right)),
			leftRegion,
			rightRegion,
		}
		fmt.Println(strings.Join(row, "\t"))
	}

	return nil
}
