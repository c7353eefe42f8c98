package desktop

import (
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// buildMenu creates the application menu. Errors from menu actions are
// already shown to the user by the viewer.
func (a *App) buildMenu() *menu.Menu {
	appMenu := menu.NewMenu()

	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("Open PDF...", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) {
		if err := a.OpenPDF(); err != nil {
			a.logger.Error("open failed", "error", err)
		}
	})
	fileMenu.AddText("Export Customized PDF", keys.CmdOrCtrl("e"), func(_ *menu.CallbackData) {
		a.ExportPDF(ExportRequest{})
	})
	fileMenu.AddText("Export as EPUB", nil, func(_ *menu.CallbackData) {
		a.ExportPDF(ExportRequest{Format: "epub"})
	})
	fileMenu.AddText("Choose Export Folder...", nil, func(_ *menu.CallbackData) {
		a.ChooseExportDir()
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Exit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		wailsruntime.Quit(a.ctx)
	})

	viewMenu := appMenu.AddSubmenu("View")
	viewMenu.AddText("Settings", keys.CmdOrCtrl(","), func(_ *menu.CallbackData) {
		a.ToggleSettings()
	})
	viewMenu.AddSeparator()
	viewMenu.AddText("Fullscreen", keys.Key("f11"), func(_ *menu.CallbackData) {
		a.ToggleWindowFullscreen()
	})
	viewMenu.AddText("PDF Fullscreen", keys.Key("f"), func(_ *menu.CallbackData) {
		a.ToggleFullscreen()
	})
	viewMenu.AddText("Zoom In", keys.CmdOrCtrl("="), func(_ *menu.CallbackData) {
		a.ZoomIn()
	})
	viewMenu.AddText("Zoom Out", keys.CmdOrCtrl("-"), func(_ *menu.CallbackData) {
		a.ZoomOut()
	})

	navMenu := appMenu.AddSubmenu("Navigation")
	navMenu.AddText("Previous Page", keys.Key("left"), func(_ *menu.CallbackData) {
		a.Previous()
	})
	navMenu.AddText("Next Page", keys.Key("right"), func(_ *menu.CallbackData) {
		a.Next()
	})
	navMenu.AddSeparator()
	navMenu.AddText("First Page", keys.Key("home"), func(_ *menu.CallbackData) {
		a.First()
	})
	navMenu.AddText("Last Page", keys.Key("end"), func(_ *menu.CallbackData) {
		a.Last()
	})

	helpMenu := appMenu.AddSubmenu("Help")
	helpMenu.AddText("About", nil, func(_ *menu.CallbackData) {
		a.about()
	})

	return appMenu
}
