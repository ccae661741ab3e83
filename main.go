package main

import (
	"os"

	"github.com/motoworks/motoworks-rbac/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
