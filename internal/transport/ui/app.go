// Package ui provides the GUI implementation using Fyne.
// Implements: Transport layer (Clean Architecture)
// - Only handles I/O and user interaction
// - All business logic delegated to use cases
package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/whhaicheng/DB-Showdown/internal/transport/ui/pages"
)

// Application represents the Fyne GUI application.
type Application struct {
	app      fyne.App
	runner   pages.ScenarioRunner
	history  pages.HistoryReader
	exporter pages.ReportExporter
}

// NewApplication creates a new Fyne application.
func NewApplication(runner pages.ScenarioRunner, history pages.HistoryReader, exporter pages.ReportExporter) *Application {
	return &Application{
		app:      app.NewWithID("com.db-showdown.app"),
		runner:   runner,
		history:  history,
		exporter: exporter,
	}
}

// Run starts the application. Blocks until the main window is closed.
func (a *Application) Run() {
	window := a.app.NewWindow("SQL Server vs ClickHouse Showdown")
	window.Resize(fyne.NewSize(1024, 900))
	window.SetMaster()

	window.SetCloseIntercept(func() {
		a.app.Quit()
	})

	_, content := pages.NewDashboardPage(window, a.runner, a.history, a.exporter)
	window.SetContent(content)

	window.ShowAndRun()
}
