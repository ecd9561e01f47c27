package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"autochart/adapters/excel"
	"autochart/adapters/render"
	"autochart/domain/aggregation"
	"autochart/domain/dataset"
	"autochart/domain/profiling"
	engine "autochart/internal/aggregation"
	"autochart/internal/charts"
	"autochart/internal/config"
	profiler "autochart/internal/profiling"
	"autochart/internal/report"
	"autochart/internal/summary"
	"autochart/internal/testkit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "autochart",
		Short:         "Profile tabular files and recommend charts for them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newProfileCmd(),
		newChartsCmd(),
		newAggregateCmd(),
		newSummaryCmd(),
		newReportCmd(),
		newSampleCmd(),
		newRenderCmd(),
	)
	return rootCmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [file]",
		Short: "Infer column types and statistics",
		Long: `Infer the type of every column of an xlsx, csv, tsv, json or parquet file and
print the column profiles as JSON.

Example: autochart profile sales.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, profile, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func newChartsCmd() *cobra.Command {
	var maxCharts int

	cmd := &cobra.Command{
		Use:   "charts [file]",
		Short: "Recommend charts for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, profile, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			options := chartOptions()
			if maxCharts > 0 {
				options.MaxCharts = maxCharts
			}
			return printJSON(cmd.OutOrStdout(), output{
				"charts":      charts.NewRecommender(options).Recommend(ds, profile),
				"suggestions": charts.Suggest(profile),
			})
		},
	}

	cmd.Flags().IntVar(&maxCharts, "max", 0, "Maximum number of charts (default 12)")
	return cmd
}

func newAggregateCmd() *cobra.Command {
	var group, value, fn string
	var top int

	cmd := &cobra.Command{
		Use:   "aggregate [file]",
		Short: "Group a value column by a category column",
		Long: `Group rows by one column and reduce another with sum, count, average, min or max.

Example: autochart aggregate sales.csv --group region --value amount --fn avg --top 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			function, err := aggregation.ParseFunction(fn)
			if err != nil {
				return err
			}
			ds, _, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, col := range []string{group, value} {
				if !ds.HasColumn(col) {
					return fmt.Errorf("column %q not found (columns: %v)", col, ds.Columns)
				}
			}
			result := engine.Aggregate(ds, aggregation.Spec{GroupColumn: group, ValueColumn: value, Function: function})
			if top > 0 {
				result = engine.TopN(result, top)
			}
			return printJSON(cmd.OutOrStdout(), output{"function": function, "groups": result.Groups})
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Column to group by")
	cmd.Flags().StringVar(&value, "value", "", "Column to aggregate")
	cmd.Flags().StringVar(&fn, "fn", "sum", "Aggregation: sum|count|average|min|max")
	cmd.Flags().IntVar(&top, "top", 0, "Keep only the N largest groups")
	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Print dataset summary and insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, profile, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output{
				"summary":  summary.Summarize(ds, profile),
				"insights": summary.AutoInsights(profile),
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Render a markdown data report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, profile, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			in := report.Input{
				Title:   args[0],
				Dataset: ds,
				Profile: profile,
				Charts:  charts.NewRecommender(chartOptions()).Recommend(ds, profile),
			}
			if asHTML {
				_, err = cmd.OutOrStdout().Write(report.HTML(in))
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), report.Markdown(in))
			return err
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	return cmd
}

func newSampleCmd() *cobra.Command {
	shopping := testkit.DefaultShoppingConfig()

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic orders CSV to stdout",
		Long: `Generate a seeded e-commerce orders table, useful for trying the dashboard.

Example: autochart sample --customers 500 --seed 7 > orders.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shopping.CustomerCount <= 0 {
				return fmt.Errorf("--customers must be positive")
			}
			return excel.WriteCSV(cmd.OutOrStdout(), testkit.NewShoppingDataGenerator(shopping).Generate())
		},
	}

	cmd.Flags().IntVar(&shopping.CustomerCount, "customers", shopping.CustomerCount, "Number of customers")
	cmd.Flags().Float64Var(&shopping.AvgOrdersPerCustomer, "orders", shopping.AvgOrdersPerCustomer, "Average orders per customer")
	cmd.Flags().Int64Var(&shopping.Seed, "seed", shopping.Seed, "Random seed")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var outDir, format string

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw the recommended charts as image files",
		Long: `Recommend charts for a file and write each one to <out>/<chart-id>.<format>.

Example: autochart render sales.xlsx --out charts --format svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, profile, err := load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			renderer := render.NewRenderer(render.DefaultOptions())
			written := []string{}
			for _, spec := range charts.NewRecommender(chartOptions()).Recommend(ds, profile) {
				img, err := renderer.Render(spec, format)
				if errors.Is(err, render.ErrEmptyChart) {
					continue
				}
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, spec.ID+"."+strings.ToLower(format))
				if err := os.WriteFile(path, img, 0o644); err != nil {
					return err
				}
				written = append(written, path)
			}
			return printJSON(cmd.OutOrStdout(), output{"files": written})
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "charts", "Output directory")
	cmd.Flags().StringVar(&format, "format", render.FormatPNG, "Image format: png|svg")
	return cmd
}

type output map[string]interface{}

// load reads and profiles a file using the environment's engine settings
func load(ctx context.Context, path string) (dataset.Dataset, profiling.Profile, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return dataset.Dataset{}, profiling.Profile{}, err
	}

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.MaxBytes = cfg.Engine.MaxUploadBytes
	ingested, err := excel.NewDataReader(readerConfig).ReadFile(ctx, path)
	if err != nil {
		return dataset.Dataset{}, profiling.Profile{}, err
	}

	options := profiling.DefaultProfileOptions()
	options.TypeSampleSize = cfg.Engine.TypeSampleSize
	profile, err := profiler.NewColumnProfiler(options).ProfileDataset(ctx, ingested.Dataset)
	if err != nil {
		return dataset.Dataset{}, profiling.Profile{}, err
	}
	return ingested.Dataset, profile, nil
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func chartOptions() charts.Options {
	options := charts.DefaultOptions()
	if cfg, err := loadConfig(); err == nil {
		options.MaxCharts = cfg.Engine.MaxCharts
		options.HistogramBins = cfg.Engine.HistogramBins
	}
	return options
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
