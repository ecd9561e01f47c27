// Package report renders a dataset overview as markdown and HTML.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/shopspring/decimal"

	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/profiling"
	"autochart/internal/charts"
	"autochart/internal/stats"
	"autochart/internal/summary"
)

// Input is everything a report describes
type Input struct {
	Title   string
	Source  *dataset.UploadMetadata
	Dataset dataset.Dataset
	Profile profiling.Profile
	Charts  []chart.Spec
}

// Markdown renders the report document
func Markdown(in Input) string {
	var b strings.Builder
	title := in.Title
	if title == "" {
		title = "Data Report"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(title))

	if in.Source != nil {
		fmt.Fprintf(&b, "Source: **%s** (%s, %s), uploaded %s\n\n",
			escape(in.Source.FileName), in.Source.FileExtension, byteSize(in.Source.FileSize),
			in.Source.UploadedAt.UTC().Format(time.RFC1123))
	}

	if in.Dataset.IsEmpty() {
		b.WriteString("No data loaded.\n")
		return b.String()
	}

	sum := summary.Summarize(in.Dataset, in.Profile)
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- Records: %d\n", sum.Records)
	fmt.Fprintf(&b, "- Columns: %d (%d numeric, %d categorical)\n", sum.Columns, sum.NumericColumns, sum.CategoryColumns)
	fmt.Fprintf(&b, "- Data points: %d\n", sum.DataPoints)
	fmt.Fprintf(&b, "- Completeness: %d%%\n", sum.Completeness)
	fmt.Fprintf(&b, "- Data quality: %d%%\n\n", sum.DataQuality)
	for _, line := range sum.Insights {
		fmt.Fprintf(&b, "> %s\n>\n", escape(line))
	}
	if len(sum.Insights) > 0 {
		b.WriteString("\n")
	}

	writeColumns(&b, in.Profile)
	writeDistributions(&b, in.Dataset, in.Profile)

	if insights := summary.AutoInsights(in.Profile); len(insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, ins := range insights {
			fmt.Fprintf(&b, "- **%s**: %s\n", escape(ins.Column), escape(ins.Insight))
		}
		b.WriteString("\n")
	}

	if len(in.Charts) > 0 {
		b.WriteString("## Charts\n\n")
		for i, c := range in.Charts {
			fmt.Fprintf(&b, "%d. %s (%s, %d points)\n", i+1, escape(c.Title), c.Type, c.PointCount())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders the report to an HTML fragment
func HTML(in Input) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.ToHTML([]byte(Markdown(in)), p, renderer)
}

func writeColumns(b *strings.Builder, profile profiling.Profile) {
	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Non-null | Unique | Min | Max | Mean |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, cp := range profile.Ordered() {
		fmt.Fprintf(b, "| %s | %s | %d | %d | %s | %s | %s |\n",
			escape(cp.Name), cp.Type, cp.NonNullCount, cp.UniqueCount,
			bound(cp.Min, cp.MinDate), bound(cp.Max, cp.MaxDate), number(cp.Mean))
	}
	b.WriteString("\n")
}

func writeDistributions(b *strings.Builder, ds dataset.Dataset, profile profiling.Profile) {
	var rows []string
	for _, name := range profile.ContinuousColumns() {
		shape, err := stats.Describe(charts.NumericValues(ds, name))
		if err != nil {
			continue
		}
		normal := "no"
		if shape.IsNormal {
			normal = "yes"
		}
		rows = append(rows, fmt.Sprintf("| %s | %s | %s | %s | %s | %d | %s |",
			escape(name), format(shape.StdDev), format(shape.Q1), format(shape.Q3),
			format(shape.Skewness), shape.Outliers, normal))
	}
	if len(rows) == 0 {
		return
	}
	b.WriteString("## Distributions\n\n")
	b.WriteString("| Column | Std dev | Q1 | Q3 | Skewness | Outliers | Normal |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		b.WriteString(r + "\n")
	}
	b.WriteString("\n")
}

func bound(n *float64, t *time.Time) string {
	if t != nil {
		return t.UTC().Format("2006-01-02")
	}
	return number(n)
}

func number(n *float64) string {
	if n == nil {
		return "-"
	}
	return format(*n)
}

// format rounds to two decimals and drops trailing zeros
// format rounds half away from zero to two places without binary float artifacts
func format(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return decimal.NewFromFloat(f).Round(2).String()
}

func byteSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
