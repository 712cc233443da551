package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/nerdneilsfield/go-translatex/internal/pipeline"
	"github.com/nerdneilsfield/go-translatex/pkg/providers"
	"github.com/nerdneilsfield/go-translatex/pkg/providers/stats"
)

// descriptionWidth 服务说明列的最大显示宽度
const descriptionWidth = 48

var (
	sectionColor = color.New(color.FgYellow, color.Bold)
	labelColor   = color.New(color.FgCyan)
	valueColor   = color.New(color.FgWhite, color.Bold)
	warnColor    = color.New(color.FgRed, color.Bold)
	hintColor    = color.New(color.FgGreen)
)

// printSection 打印带标题的键值列表
func printSection(w io.Writer, title string, rows [][2]string) {
	sectionColor.Fprintf(w, "%s\n", title)

	width := 0
	for _, row := range rows {
		if n := runewidth.StringWidth(row[0]); n > width {
			width = n
		}
	}
	for _, row := range rows {
		labelColor.Fprintf(w, "  %s: ", runewidth.FillRight(row[0], width))
		valueColor.Fprintln(w, row[1])
	}
}

// renderServices 以表格列出内置服务
func renderServices(w io.Writer, entries []providers.Entry, current string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Service", "API key", "Description"})
	for _, e := range entries {
		mark := ""
		if e.Name == current {
			mark = "*"
		}
		key := "-"
		if e.NeedsKey() {
			key = e.EnvVar
		}
		t.AppendRow(table.Row{mark, e.Name, key, runewidth.Truncate(e.Description, descriptionWidth, "…")})
	}
	t.Render()
}

// renderStats 以表格输出每个服务的请求统计
func renderStats(w io.Writer, all []stats.ServiceStats) {
	if len(all) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Service", "Requests", "Failed", "Chars sent", "Tokens lost", "Tokens added", "Avg latency"})
	for _, s := range all {
		t.AppendRow(table.Row{
			s.Service,
			s.Requests,
			s.Failures,
			formatNumber(s.CharsSent),
			s.TokensLost,
			s.TokensAdded,
			formatDuration(s.AverageLatency()),
		})
	}
	t.Render()
}

// printSummary 输出一次运行的摘要
func printSummary(w io.Writer, res *pipeline.Result) {
	rows := [][2]string{
		{"Run", res.RunID},
		{"Service", res.Service},
		{"Languages", res.Source + " -> " + res.Target},
		{"Stopped at", res.StopAt.String()},
		{"Replacement blocks", strconv.Itoa(res.Blocks)},
		{"Markers", strconv.Itoa(res.Markers)},
		{"Tokens", strconv.Itoa(res.Tokens)},
		{"Chunks", strconv.Itoa(res.Chunks)},
		{"Cached chunks", strconv.FormatInt(res.CacheHits, 10)},
		{"Duration", formatDuration(res.Duration)},
	}
	printSection(w, "Translation summary", rows)
	if res.Failures > 0 {
		warnColor.Fprintf(w, "  %d of %d chunks were left untranslated\n", res.Failures, res.Chunks)
	}
	renderStats(w, res.Stats)
}

// formatNumber 格式化数字（添加千位分隔符）
func formatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(char)
	}
	return result.String()
}

// formatDuration 格式化持续时间
func formatDuration(d time.Duration) string {
	switch {
	case d == 0:
		return "0s"
	case d < time.Second:
		return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
