package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"yashubustudio/programmap/programmap"
)

func newClusterCmd(opts *cliOptions) *cobra.Command {
	var (
		query       string
		k           int
		iterations  int
		seed        int64
		format      string
		output      string
		descriptive bool
		fold        bool
	)
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group programs into clusters and print the assignment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Clone()
			if cmd.Flags().Changed("k") {
				cfg.K = k
			}
			if cmd.Flags().Changed("iterations") {
				cfg.MaxIterations = iterations
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = &seed
			}
			if cmd.Flags().Changed("descriptive") {
				cfg.IncludeDescriptive = descriptive
			}
			if cmd.Flags().Changed("fold") {
				cfg.FoldUnicode = fold
			}
			render, err := resultRenderer(format)
			if err != nil {
				return err
			}

			records, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			svc := programmap.NewService(records, cfg, opts.logger)
			res, err := svc.Recluster(cmd.Context(), query)
			if err != nil {
				return err
			}

			if output == "" {
				return render(cmd.OutOrStdout(), res)
			}
			return writeOutputFile(output, res, render)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only cluster programs matching this text")
	cmd.Flags().IntVar(&k, "k", programmap.DefaultK, "number of clusters")
	cmd.Flags().IntVar(&iterations, "iterations", programmap.DefaultMaxIterations, "assign/update passes")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&descriptive, "descriptive", false, "also use focus and key strength as attributes")
	cmd.Flags().BoolVar(&fold, "fold", false, "merge attributes differing only by Unicode width or inner spacing")
	return cmd
}

func newVocabCmd(opts *cliOptions) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Print the attribute vocabulary with column indices",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			subset, _ := programmap.Filter(records, query)
			features := programmap.ExtractFeatureMatrix(subset, opts.cfg.ExtractOptions())
			return writeVocabulary(cmd.OutOrStdout(), features)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only use programs matching this text")
	return cmd
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "List programs whose attributes contain the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := opts.loadCatalog()
			if err != nil {
				return err
			}
			matches, matched := programmap.Filter(records, args[0])
			w := cmd.OutOrStdout()
			if !matched {
				fmt.Fprintf(w, "no programs matched %q\n", args[0])
				return nil
			}
			for _, rec := range matches {
				fmt.Fprintln(w, rec.Name)
			}
			return nil
		},
	}
}

type renderFunc func(io.Writer, *programmap.Result) error

// writeOutputFile renders res into path and returns the close error when
// rendering succeeded.
func writeOutputFile(path string, res *programmap.Result, render renderFunc) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return render(f, res)
}

func resultRenderer(format string) (renderFunc, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return writeTable, nil
	case "json":
		return programmap.WriteResultJSON, nil
	case "csv":
		return programmap.WriteResultCSV, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(w io.Writer, res *programmap.Result) error {
	if !res.Matched {
		fmt.Fprintf(w, "no programs matched %q, showing the full catalog\n\n", res.Query)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "PROGRAM\tCLUSTER\t%s\t%s\n", axisHeader("X", res.Projection.XLabel), axisHeader("Y", res.Projection.YLabel))
	for _, p := range res.Points() {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\n", p.Name, p.Cluster, p.X, p.Y)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CLUSTER\tSIZE\tLABEL\tMEMBERS")
	for _, c := range res.Clusters {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", c.ID, len(c.Members), c.Label, strings.Join(c.Members, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nk=%d iterations=%d reseeds=%d sse=%.4f\n",
		res.Clustering.K, res.Clustering.Iterations, res.Clustering.Reseeds, res.Clustering.SSE)
	return err
}

func axisHeader(axis, label string) string {
	if label == "" {
		return axis
	}
	return fmt.Sprintf("%s (%s)", axis, strings.ToUpper(label))
}

func writeVocabulary(w io.Writer, features programmap.FeatureMatrix) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTOKEN\tPROGRAMS")
	for j, token := range features.Vocabulary {
		count := 0
		for _, vec := range features.Vectors {
			if vec[j] > 0 {
				count++
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\n", j, token, count)
	}
	return tw.Flush()
}
