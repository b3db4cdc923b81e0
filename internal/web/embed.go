package web

import (
	"embed"
	"io/fs"
)

var (
	//go:embed static/*
	staticFiles embed.FS

	//go:embed templates/*
	templateFiles embed.FS
)

// Templates returns the page templates compiled into the binary, rooted at the templates directory.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic(err)
	}

	return sub
}
