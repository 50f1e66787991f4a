package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"callprof/internal/report"
	"callprof/internal/stats"
)

// SnapshotFunc supplies the aggregates rendered on the next refresh frame.
type SnapshotFunc func() stats.Snapshot

type watchModel struct {
	title   string
	source  SnapshotFunc
	opts    report.Options
	refresh time.Duration
	done    <-chan struct{}

	spinner  spinner.Model
	table    table.Model
	width    int
	rows     int
	finished bool
}

type refreshMsg struct{}
type doneMsg struct{}

// NewWatchModel returns a Bubble Tea model that re-renders live tracing
// aggregates until the workload finishes or the user quits.
func NewWatchModel(title string, source SnapshotFunc, opts report.Options, refresh time.Duration, done <-chan struct{}) tea.Model {
	if refresh <= 0 {
		refresh = 250 * time.Millisecond
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &watchModel{
		title:   title,
		source:  source,
		opts:    opts,
		refresh: refresh,
		done:    done,
		spinner: sp,
		width:   80,
	}

	tbl := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(1),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Bold(true).
		Foreground(lipgloss.Color("7")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("8")).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("6"))
	tbl.SetStyles(styles)
	m.table = tbl
	return m
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), m.waitForDone())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		if m.finished {
			return m, nil
		}
		m.reload()
		return m, m.refreshCmd()
	case doneMsg:
		// Последний кадр перед выходом, чтобы хвост замеров не пропал.
		m.reload()
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.table.SetColumns(m.columns())
			m.table.SetWidth(msg.Width)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.finished = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	header := m.title
	if m.finished {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")
	if m.rows == 0 {
		b.WriteString(hintStyle.Render("waiting for samples..."))
		b.WriteByte('\n')
	} else {
		b.WriteString(m.table.View())
		b.WriteByte('\n')
	}
	b.WriteString(hintStyle.Render(fmt.Sprintf("refreshing every %s, press q to quit", m.refresh)))
	b.WriteByte('\n')
	return b.String()
}

func (m *watchModel) reload() {
	rows := report.Rows(m.source(), m.opts)
	items := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		items = append(items, table.Row{
			r.Label,
			fmt.Sprintf("%d", r.Calls),
			fmt.Sprintf("%.6f", r.Total.Seconds()),
			fmt.Sprintf("%.6f", ms(r.Avg())),
			fmt.Sprintf("%.6f", ms(r.Min)),
			fmt.Sprintf("%.6f", ms(r.Max)),
		})
	}
	m.rows = len(items)
	m.table.SetRows(items)

	height := len(items)
	if height < 1 {
		height = 1
	}
	if height > 16 {
		height = 16
	}
	m.table.SetHeight(height)
}

func (m *watchModel) columns() []table.Column {
	name := m.width - 54
	if name < 20 {
		name = 20
	}
	if name > 40 {
		name = 40
	}
	return []table.Column{
		{Title: "Function", Width: name},
		{Title: "Calls", Width: 6},
		{Title: "Total (s)", Width: 9},
		{Title: "Avg (ms)", Width: 9},
		{Title: "Min (ms)", Width: 9},
		{Title: "Max (ms)", Width: 9},
	}
}

func (m *watchModel) refreshCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m *watchModel) waitForDone() tea.Cmd {
	if m.done == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.done
		return doneMsg{}
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
