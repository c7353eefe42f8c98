package desktop

import (
	"errors"
	"io/fs"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/T-Bhaskar/ebook-v2/internal/config"
)

// Window properties.
const (
	WindowTitle     = "E-Paper Ebook Reader"
	WindowWidth     = 1400
	WindowHeight    = 900
	WindowMinWidth  = 800
	WindowMinHeight = 600
)

// Version is reported by the About dialog and the CLI.
var Version = "0.1.0"

// Options start the desktop window.
type Options struct {
	Config *config.Config
	Assets fs.FS
	// File is opened once the window is ready. Optional.
	File string
}

// Run opens the reader window and blocks until it is closed.
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("desktop needs a configuration")
	}
	app := NewApp(opts.Config, opts.File)

	return wails.Run(&options.App{
		Title:            WindowTitle,
		Width:            WindowWidth,
		Height:           WindowHeight,
		MinWidth:         WindowMinWidth,
		MinHeight:        WindowMinHeight,
		BackgroundColour: &options.RGBA{R: 0xf4, G: 0xf1, B: 0xea, A: 0xff},
		Menu:             app.buildMenu(),
		AssetServer: &assetserver.Options{
			Assets: opts.Assets,
		},
		OnStartup:  app.startup,
		OnDomReady: app.domReady,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})
}
