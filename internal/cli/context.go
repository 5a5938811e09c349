// Package cli provides the command-line interface for the rankpull application.
package cli

import (
	"fmt"

	"github.com/court-tools/rankpull/internal/app"
)

// globalApp is the application shared by all commands in one process run.
// Cobra hands different context copies to PersistentPreRunE and RunE, so the
// app lives here instead of a context value.
var globalApp *app.Application

// SetApp stores the shared Application; pass nil to clear it after shutdown.
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp returns the Application initialized in PersistentPreRunE, or nil for
// commands that run without one.
func GetApp() *app.Application {
	return globalApp
}

// requireApp returns the shared Application, failing loudly when a command
// that fetches pages somehow ran without initialization.
func requireApp() (*app.Application, error) {
	if globalApp == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return globalApp, nil
}
