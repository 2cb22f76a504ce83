package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reductstore/ros-reductstore-demo/internal/discovery"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenDashboard Screen = "dashboard"
)

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen Screen

	// Screen models
	DiscoveryModel DiscoveryModel
	DashboardModel DashboardModel

	// Shared application state
	SelectedServer *discovery.Server
	APIToken       string
	Bucket         string

	// UI state
	Width  int
	Height int
}

// NewAppModel creates a new application model starting at the specified
// screen. serverURL may be empty when starting at discovery; apiToken and
// bucket are carried into the dashboard once a server is chosen.
func NewAppModel(startScreen Screen, serverURL, apiToken, bucket string) AppModel {
	model := AppModel{
		CurrentScreen: startScreen,
		APIToken:      apiToken,
		Bucket:        bucket,
	}

	switch startScreen {
	case ScreenDiscovery:
		model.DiscoveryModel = NewDiscoveryModel()
	case ScreenDashboard:
		model.DashboardModel = NewDashboardModel(serverURL, apiToken, bucket)
	}

	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenDashboard:
		return m.DashboardModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.DiscoveryModel.Width = msg.Width
		m.DiscoveryModel.Height = msg.Height
		m.DashboardModel.Width = msg.Width
		m.DashboardModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		// Check if the user picked a server
		if m.DiscoveryModel.Selected {
			m.SelectedServer = m.DiscoveryModel.GetSelectedServer()
			if m.SelectedServer != nil {
				return m.transitionToDashboard()
			}
		}

		// Check for quit (normal mode only, not during scan)
		if !m.DiscoveryModel.Scanning && !m.DiscoveryModel.ManualMode {
			if keyMsg, ok := msg.(tea.KeyMsg); ok {
				if keyMsg.String() == "q" || keyMsg.String() == "esc" {
					return m, tea.Quit
				}
			}
		}

	case ScreenDashboard:
		updated, c := m.DashboardModel.Update(msg)
		m.DashboardModel = updated.(DashboardModel)
		cmd = c

		// Going back from the dashboard re-runs discovery
		if m.DashboardModel.IsBackRequested() {
			m.CurrentScreen = ScreenDiscovery
			m.DiscoveryModel = NewDiscoveryModel()
			m.DiscoveryModel.Width = m.Width
			m.DiscoveryModel.Height = m.Height
			return m, m.DiscoveryModel.Init()
		}
	}

	return m, cmd
}

// transitionToDashboard switches to the dashboard for the selected server
func (m AppModel) transitionToDashboard() (tea.Model, tea.Cmd) {
	m.CurrentScreen = ScreenDashboard
	m.DashboardModel = NewDashboardModel(m.SelectedServer.BaseURL(), m.APIToken, m.Bucket)
	m.DashboardModel.Width = m.Width
	m.DashboardModel.Height = m.Height
	return m, m.DashboardModel.Init()
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenDashboard:
		return m.DashboardModel.View()
	default:
		return "Unknown screen"
	}
}
