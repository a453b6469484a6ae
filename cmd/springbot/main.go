package main

import (
	"os"

	"springbot/cmd/springbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
