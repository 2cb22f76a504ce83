package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reductstore/ros-reductstore-demo/internal/reduct"
)

// refreshInterval is how often the dashboard polls the server.
const refreshInterval = 5 * time.Second

// statusFetchTimeout bounds a single poll so a dead server cannot hang
// the refresh loop.
const statusFetchTimeout = 4 * time.Second

// Messages for async status polling
type refreshTickMsg time.Time

type statusMsg struct {
	info      *reduct.ServerInfo
	entries   []reduct.EntryInfo
	err       error
	fetchedAt time.Time
}

// dashboardKeyMap defines key bindings for the dashboard screen
type dashboardKeyMap struct {
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Back, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Back, k.Quit},
	}
}

// DashboardModel shows live status for one ReductStore server and,
// when a bucket is configured, the entries inside it.
type DashboardModel struct {
	ServerURL string
	Bucket    string

	client *reduct.Client

	// Polling state
	Loading     bool
	Info        *reduct.ServerInfo
	Entries     []reduct.EntryInfo
	Err         error
	LastRefresh time.Time

	backRequested bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    dashboardKeyMap
}

// NewDashboardModel creates a dashboard polling serverURL. bucket may be
// empty, in which case only server-level information is shown.
func NewDashboardModel(serverURL, apiToken, bucket string) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	keys := dashboardKeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DashboardModel{
		ServerURL: serverURL,
		Bucket:    bucket,
		client:    reduct.NewClient(serverURL, apiToken),
		Loading:   true,
		Spinner:   s,
		Help:      help.New(),
		Keys:      keys,
	}
}

// Init starts the spinner and the first status fetch
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		m.fetchStatus(),
		scheduleRefresh(),
	)
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "esc", "b":
			m.backRequested = true
			return m, nil

		case "r":
			m.Loading = true
			return m, tea.Batch(m.fetchStatus(), m.Spinner.Tick)
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case refreshTickMsg:
		return m, tea.Batch(m.fetchStatus(), scheduleRefresh())

	case statusMsg:
		m.Loading = false
		m.Err = msg.err
		if msg.err == nil {
			m.Info = msg.info
			m.Entries = msg.entries
			m.LastRefresh = msg.fetchedAt
		}

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, cmd
}

// IsBackRequested reports whether the user asked to return to discovery
func (m DashboardModel) IsBackRequested() bool {
	return m.backRequested
}

// fetchStatus polls the server for info and bucket entries
func (m DashboardModel) fetchStatus() tea.Cmd {
	client := m.client
	bucket := m.Bucket

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statusFetchTimeout)
		defer cancel()

		info, err := client.ServerInfo(ctx)
		if err != nil {
			return statusMsg{err: err, fetchedAt: time.Now()}
		}

		var entries []reduct.EntryInfo
		if bucket != "" {
			// A missing bucket is not fatal: the device may not have
			// seeded any data yet.
			entries, _ = client.Entries(ctx, bucket)
		}

		return statusMsg{info: info, entries: entries, fetchedAt: time.Now()}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// View renders the dashboard screen
func (m DashboardModel) View() string {
	var content string
	if m.Loading && m.Info == nil {
		content = fmt.Sprintf("\n  %s Connecting to %s...\n", m.Spinner.View(), m.ServerURL)
	} else {
		content = m.renderStatus()
	}

	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderStatus renders the server panel and, when available, the entry list
func (m DashboardModel) renderStatus() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Server unreachable: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(SubtitleStyle.Render("  Press 'r' to retry"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.renderServerPanel())
	b.WriteString("\n")

	if m.Bucket != "" {
		b.WriteString(m.renderEntriesPanel())
		b.WriteString("\n")
	}

	if !m.LastRefresh.IsZero() {
		b.WriteString(SubtitleStyle.Render(
			fmt.Sprintf("  Last refresh: %s", m.LastRefresh.Format("15:04:05"))))
		b.WriteString("\n")
	}

	return b.String()
}

func (m DashboardModel) renderServerPanel() string {
	var b strings.Builder

	b.WriteString(statusLine("Server", m.ServerURL))
	if m.Info != nil {
		b.WriteString(statusLine("Version", m.Info.Version))
		b.WriteString(statusLine("Buckets", fmt.Sprintf("%d", m.Info.BucketCount)))
		b.WriteString(statusLine("Disk usage", formatBytes(m.Info.Usage)))
		b.WriteString(statusLine("Uptime", formatUptime(m.Info.Uptime)))
	}

	return InfoBoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m DashboardModel) renderEntriesPanel() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true)
	b.WriteString(title.Render(fmt.Sprintf("  Bucket: %s", m.Bucket)))
	b.WriteString("\n\n")

	if len(m.Entries) == 0 {
		b.WriteString(SubtitleStyle.Render("  No entries yet. Run 'reduct-device seed' to load demo data."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-28s %12s %10s  %s\n", "ENTRY", "RECORDS", "SIZE", "LATEST"))
	for _, e := range m.Entries {
		latest := "-"
		if e.LatestRecord > 0 {
			latest = time.UnixMicro(e.LatestRecord).Format("2006-01-02 15:04:05")
		}
		b.WriteString(fmt.Sprintf("  %-28s %12d %10s  %s\n",
			e.Name, e.RecordCount, formatBytes(e.Size), latest))
	}

	return b.String()
}

func statusLine(label, value string) string {
	return fmt.Sprintf("%s %s\n",
		LabelStyle.Render(fmt.Sprintf("%-12s", label+":")),
		ValueStyle.Render(value))
}

// formatBytes renders a byte count with a binary unit suffix
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// formatUptime renders seconds as a compact d/h/m string
func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
