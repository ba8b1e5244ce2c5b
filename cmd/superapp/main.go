package main

import (
	"os"

	"github.com/ouge98-max/your-repo-sub000/cmd/superapp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
