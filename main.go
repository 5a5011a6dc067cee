package main

import (
	"os"

	"github.com/idam-admin/idam/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
