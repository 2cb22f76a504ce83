package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reductstore/ros-reductstore-demo/internal/discovery"
	"github.com/reductstore/ros-reductstore-demo/internal/urls"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	servers []*discovery.Server
	err     error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual URL entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings for scanning mode
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Manual, s.Quit},
	}
}

// emptyScreenKeyMap defines key bindings for empty results screen
type emptyScreenKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (e emptyScreenKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{e.Rescan, e.Manual, e.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (e emptyScreenKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{e.Rescan, e.Manual, e.Quit},
	}
}

// serverItem wraps a Server for use with bubbles/list
type serverItem struct {
	server *discovery.Server
}

// Implement list.Item interface
func (s serverItem) FilterValue() string {
	// Filter by instance name, IP, or hostname
	return s.server.Instance + " " + s.server.IP + " " + s.server.Hostname
}

// Title returns the server name for list display
func (s serverItem) Title() string {
	if s.server.Instance == "manual" {
		return fmt.Sprintf("Manual: %s", s.server.BaseURL())
	}
	return s.server.Instance
}

// Description returns server details for list display
func (s serverItem) Description() string {
	return fmt.Sprintf("%s:%d • %s", s.server.IP, s.server.Port, s.server.BaseURL())
}

// serverDelegate is a custom list delegate for rendering server cards
type serverDelegate struct {
	width int
}

func (d serverDelegate) Height() int { return 8 } // Card height including borders

func (d serverDelegate) Spacing() int { return 1 } // Spacing between cards

func (d serverDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d serverDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(serverItem)
	if !ok {
		return
	}

	server := si.server
	selected := index == m.Index()

	// Build server name
	name := server.Instance
	if name == "manual" {
		name = fmt.Sprintf("Manual: %s", server.BaseURL())
	}

	apiVersion := "unknown"
	if v, ok := server.Metadata["api"]; ok {
		apiVersion = v
	}

	// Build content lines
	var content strings.Builder

	// Add selection indicator to server name
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + name))
	} else {
		content.WriteString("  " + name)
	}
	content.WriteString("\n\n")

	// Server details
	content.WriteString(fmt.Sprintf("  Address:  %s:%d\n", server.IP, server.Port))
	content.WriteString(fmt.Sprintf("  URL:      %s\n", server.BaseURL()))
	content.WriteString(fmt.Sprintf("  API:      %s\n", apiVersion))

	// Status with inline color styling (no border)
	statusStyle := lipgloss.NewStyle().Foreground(SecondaryColor).Bold(true)
	content.WriteString(fmt.Sprintf("  Status:   %s", statusStyle.Render("Reachable")))

	// Create responsive card style
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6 // 2 for margin-left, 4 for border + padding
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle = cardStyle.Width(cardWidth)

	// Highlight selected card
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the server discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning   bool
	ServerList list.Model
	Selected   bool
	Err        error

	// Manual URL entry state
	ManualMode bool
	URLInput   textinput.Model
	ManualErr  error

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
	EmptyKeys     emptyScreenKeyMap
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize URL input
	urlInput := textinput.New()
	urlInput.Placeholder = "http://192.168.1.50:8383"
	urlInput.CharLimit = 128
	urlInput.Width = 40

	// Initialize progress bar
	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	// Initialize server list with custom delegate
	delegate := serverDelegate{width: MinTerminalWidth}
	serverList := list.New([]list.Item{}, delegate, 0, 0)
	serverList.Title = "Discovered Servers"
	serverList.SetShowStatusBar(false)
	serverList.SetFilteringEnabled(true)
	serverList.Styles.Title = TitleStyle

	// Initialize help
	h := help.New()

	// Initialize key bindings for normal mode
	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "connect"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for manual entry mode
	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	// Initialize key bindings for scanning mode
	scanningKeys := scanningKeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	// Initialize key bindings for empty results
	emptyKeys := emptyScreenKeyMap{
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual URL"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return DiscoveryModel{
		Scanning:     false,
		ServerList:   serverList,
		Selected:     false,
		ManualMode:   false,
		URLInput:     urlInput,
		Spinner:      s,
		ProgressBar:  progressBar,
		Help:         h,
		Keys:         keys,
		ManualKeys:   manualKeys,
		ScanningKeys: scanningKeys,
		EmptyKeys:    emptyKeys,
	}
}

// Init initializes the discovery model
func (m DiscoveryModel) Init() tea.Cmd {
	// Start scanning immediately - send start message then begin scan
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		scanServers,
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Update list size
		m.ServerList.SetWidth(msg.Width - 4)
		m.ServerList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		// Convert servers to list items
		items := make([]list.Item, len(msg.servers))
		for i, srv := range msg.servers {
			items[i] = serverItem{server: srv}
		}
		m.ServerList.SetItems(items)

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Update list if not in manual mode or scanning
	if !m.ManualMode && !m.Scanning {
		m.ServerList, cmd = m.ServerList.Update(msg)
	}

	return m, cmd
}

// updateNormalMode handles keyboard input in normal server list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter", " ":
		// Get selected server from list
		if selectedItem := m.ServerList.SelectedItem(); selectedItem != nil {
			m.Selected = true
			return m, tea.Quit
		}

	case "r":
		// Rescan
		m.ServerList.SetItems([]list.Item{})
		m.Err = nil
		return m, tea.Batch(
			func() tea.Msg { return scanStartMsg{} },
			scanServers,
			m.Spinner.Tick,
		)

	case "m":
		// Switch to manual URL entry mode
		m.ManualMode = true
		m.ManualErr = nil
		m.URLInput.SetValue("")
		m.URLInput.Focus()
	}

	// Let the list handle up/down navigation
	return m, nil
}

// updateManualMode handles keyboard input in manual URL entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		// Cancel manual entry
		m.ManualMode = false
		m.ManualErr = nil
		m.URLInput.SetValue("")
		m.URLInput.Blur()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.URLInput.Value())
		if value != "" {
			parsed, err := urls.Parse(value)
			if err != nil {
				m.ManualErr = err
				return m, nil
			}
			port := parsed.Port
			if port == 0 {
				port = discovery.DefaultPort
			}
			// Create server from manual URL
			server := &discovery.Server{
				Instance:     "manual",
				Hostname:     parsed.Host,
				IP:           parsed.Host,
				Port:         port,
				Metadata:     map[string]string{"path": parsed.Path},
				DiscoveredAt: time.Now(),
			}
			// Add to list
			newItem := serverItem{server: server}
			items := append([]list.Item{newItem}, m.ServerList.Items()...)
			m.ServerList.SetItems(items)
			m.ServerList.Select(0) // Select the newly added item
			m.ManualMode = false
			m.ManualErr = nil
			m.URLInput.SetValue("")
			m.URLInput.Blur()
			return m, nil
		}
	}

	// Update the text input
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	// Use default width if not set
	width := m.Width
	if width == 0 {
		width = 72
	}

	// Build main content area
	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanning(width)
	} else {
		content = m.renderServerResults()
	}

	// Determine context-sensitive help text using bubbles/help
	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else if len(m.ServerList.Items()) > 0 {
		helpText = m.Help.View(m.Keys)
	} else {
		helpText = m.Help.View(m.EmptyKeys)
	}

	// Wrap with application container (full-screen layout with height)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scanning progress display
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	elapsedSec := int(elapsed.Seconds())

	// The mDNS browse runs for a fixed 10 second window
	progressPercent := elapsedSec * 100 / 10
	if progressPercent > 100 {
		progressPercent = 100
	}
	progressFloat := float64(progressPercent) / 100.0

	// Build content components
	title := fmt.Sprintf("%s SEARCHING FOR SERVERS", m.Spinner.View())
	subtitle := "Scanning your network for ReductStore instances..."

	// Use bubbles/progress component (ViewAs already includes percentage display)
	progressBar := m.ProgressBar.ViewAs(progressFloat)
	elapsedText := fmt.Sprintf("Elapsed: %ds", elapsedSec)

	// Use lipgloss.JoinVertical for layout composition
	content := lipgloss.JoinVertical(lipgloss.Center,
		"", // Top spacing
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		progressBar,
		"",
		SubtitleStyle.Render(elapsedText),
		"", // Bottom spacing
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderServerResults renders the server list or "no servers found" message
func (m DiscoveryModel) renderServerResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		// Error state
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")

		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the server is running and reachable\n")
		b.WriteString("    • Check that mDNS traffic (UDP 5353) is allowed\n")
		b.WriteString("    • Verify this device is on the same network segment\n")
		b.WriteString("    • Use 'm' to enter the server URL manually\n")

	} else if len(m.ServerList.Items()) == 0 {
		// No servers found
		b.WriteString("  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("⚠ No ReductStore servers found on your network"))
		b.WriteString("\n\n")

		b.WriteString("  Troubleshooting:\n")
		b.WriteString("    • Ensure the server is running and reachable\n")
		b.WriteString("    • Check that mDNS traffic (UDP 5353) is allowed\n")
		b.WriteString("    • Verify this device is on the same network segment\n")
		b.WriteString("    • Use 'm' to enter the server URL manually\n")
		b.WriteString("\n")

	} else {
		// Servers found - render the list
		b.WriteString(m.ServerList.View())
	}

	return b.String()
}

// renderManualEntry renders the manual URL entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter the server base URL"))
	b.WriteString("\n\n")

	// Input box using textinput component
	b.WriteString("  Server URL: ")
	b.WriteString(m.URLInput.View())
	b.WriteString("\n\n")

	if m.ManualErr != nil {
		b.WriteString(RenderError(m.ManualErr.Error()))
		b.WriteString("\n\n")
	}

	return b.String()
}

// GetSelectedServer returns the selected server (if any)
func (m DiscoveryModel) GetSelectedServer() *discovery.Server {
	if m.Selected {
		if selectedItem := m.ServerList.SelectedItem(); selectedItem != nil {
			if item, ok := selectedItem.(serverItem); ok {
				return item.server
			}
		}
	}
	return nil
}

// scanServers is a command that performs server discovery
func scanServers() tea.Msg {
	scanner := discovery.NewScanner()
	scanner.Timeout = 10 * time.Second

	servers, err := scanner.ScanForServers()
	return scanCompleteMsg{
		servers: servers,
		err:     err,
	}
}
