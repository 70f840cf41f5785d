package main

import (
	"embed"
	"runtime"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app := NewApp()
	appMenu := menu.NewMenu()
	if runtime.GOOS == "darwin" {
		appMenu.Append(menu.AppMenu())
	}
	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("Analyze Video...", keys.CmdOrCtrl("1"), func(_ *menu.CallbackData) {
		go app.PickAndDetect("video")
	})
	fileMenu.AddText("Analyze Image...", keys.CmdOrCtrl("2"), func(_ *menu.CallbackData) {
		go app.PickAndDetect("image")
	})
	fileMenu.AddText("Analyze Text File...", keys.CmdOrCtrl("3"), func(_ *menu.CallbackData) {
		go app.PickAndDetect("text")
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		app.Quit()
	})
	appMenu.Append(menu.EditMenu())
	if runtime.GOOS == "darwin" {
		appMenu.Append(menu.WindowMenu())
	}
	diagnosticsMenu := appMenu.AddSubmenu("Diagnostics")
	diagnosticsMenu.AddText("Export Log Package...", keys.CmdOrCtrl("l"), func(_ *menu.CallbackData) {
		app.ExportLogPackageDialog()
	})

	err := wails.Run(&options.App{
		Title:     "Media Detect",
		Width:     1280,
		Height:    900,
		MinWidth:  960,
		MinHeight: 680,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 17, G: 20, B: 24, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Menu:             appMenu,
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   "Media Detect",
				Message: "Checks video, images, and text for signs of AI generation.",
			},
		},
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
