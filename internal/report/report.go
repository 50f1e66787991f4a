// Package report renders and exchanges tracing results.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"

	"callprof/internal/stats"
	"callprof/internal/trace"
)

const (
	labelWidth    = 40 // function name column
	labelTruncAt  = 38 // labels wider than this keep a tail of labelKeep cells
	labelKeep     = 35
	callsWidth    = 10
	numberWidth   = 12
	defaultWidth  = 80
	defaultEntry  = "main"
	emptySentinel = "No tracing data collected."
)

// Options controls report rendering. The zero value renders the default
// 80-column report with "main" as the unqualified namespace.
type Options struct {
	// EntryNamespace is rendered without qualification; every other
	// namespace prefixes the function name.
	EntryNamespace string

	// Width is the horizontal rule width.
	Width int
}

func (o Options) entry() string {
	if o.EntryNamespace == "" {
		return defaultEntry
	}
	return o.EntryNamespace
}

func (o Options) width() int {
	if o.Width <= 0 {
		return defaultWidth
	}
	return o.Width
}

// Row is one rendered aggregate, in report order.
type Row struct {
	ID    trace.FuncID
	Label string
	stats.FuncStats
}

// Rows converts a snapshot into deterministically ordered rows: descending
// total time, ties broken by label.
func Rows(snap stats.Snapshot, opts Options) []Row {
	rows := make([]Row, 0, len(snap))
	for id, e := range snap {
		rows = append(rows, Row{
			ID:        id,
			Label:     Label(e.Namespace, e.Name, opts.entry()),
			FuncStats: e.FuncStats,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// Label derives the display label for a function: namespace-qualified unless
// the function lives in the entry namespace. Labels wider than the name
// column keep their right-hand tail, which carries the distinguishing part.
func Label(ns, name, entry string) string {
	label := name
	if ns != "" && ns != entry {
		label = ns + "." + name
	}
	label = norm.NFC.String(label)

	if w := runewidth.StringWidth(label); w > labelTruncAt {
		label = runewidth.TruncateLeft(label, w-labelKeep, "...")
	}
	return label
}

// Format renders the snapshot as the fixed-width text report.
func Format(snap stats.Snapshot, opts Options) string {
	if len(snap) == 0 {
		return emptySentinel
	}

	rule := strings.Repeat("-", opts.width())

	var b strings.Builder
	b.WriteString("Function Tracing Results:\n")
	b.WriteString(rule)
	b.WriteByte('\n')
	writeRow(&b,
		runewidth.FillRight("Function Name", labelWidth),
		runewidth.FillRight("Calls", callsWidth),
		runewidth.FillRight("Total (s)", numberWidth),
		runewidth.FillRight("Avg (ms)", numberWidth),
		runewidth.FillRight("Min (ms)", numberWidth),
		runewidth.FillRight("Max (ms)", numberWidth),
	)
	b.WriteString(rule)
	b.WriteByte('\n')

	for _, r := range Rows(snap, opts) {
		writeRow(&b,
			runewidth.FillRight(r.Label, labelWidth),
			runewidth.FillRight(fmt.Sprintf("%d", r.Calls), callsWidth),
			fmt.Sprintf("%-*.6f", numberWidth, r.Total.Seconds()),
			fmt.Sprintf("%-*.6f", numberWidth, millis(r.Avg())),
			fmt.Sprintf("%-*.6f", numberWidth, millis(r.Min)),
			fmt.Sprintf("%-*.6f", numberWidth, millis(r.Max)),
		)
	}
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func writeRow(b *strings.Builder, cols ...string) {
	b.WriteString(strings.Join(cols, " "))
	b.WriteByte('\n')
}
