// Package tui implements the full-screen terminal console for ReductStore
// servers on the local network.
//
// The console is built on the Bubble Tea framework and follows the Elm
// architecture with immutable state updates and a Model-Update-View pattern.
//
// # Architecture
//
// The console has two screens:
//   - Discovery: scan the network for ReductStore servers (mDNS) or enter
//     a server URL manually
//   - Dashboard: live server status with periodic refresh, plus the entry
//     list of the device's bucket when one is configured
//
// All screens share a unified container (RenderApplicationContainer) that
// draws the application header, content area, and context-sensitive footer.
//
// # Framework Components
//
//   - bubbles/spinner: loading indicators
//   - bubbles/textinput: manual URL entry with validation
//   - bubbles/progress: scan progress
//   - bubbles/list: server list with filtering
//   - bubbles/help: context-aware key binding help
//   - lipgloss: styling and layout
//
// # Usage Example
//
//	app := tui.NewAppModel(tui.ScreenDiscovery, "", token, bucket)
//	program := tea.NewProgram(app, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Key Bindings
//
//   - Discovery: ↑/↓ navigate, Enter connect, r rescan, m manual URL, q quit
//   - Dashboard: r refresh, esc back to discovery, q quit
//
// Help text updates automatically based on screen state (scanning, manual
// entry, empty results).
//
// # Thread Safety
//
// The Bubble Tea framework serializes all model updates in a single
// goroutine; async work (mDNS scans, HTTP polls) runs in commands that
// deliver messages back to the update loop.
package tui
