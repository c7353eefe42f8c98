package main

import (
	"embed"
	"io/fs"

	"github.com/T-Bhaskar/ebook-v2/cmd"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	frontend, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		panic(err)
	}
	cmd.Execute(frontend)
}
