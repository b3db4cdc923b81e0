package main

import (
	"os"

	"github.com/rosterd/rosterd/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
