package main

import (
	"os"

	"wellness-meal-planner/internal/cli"
	"wellness-meal-planner/internal/config"
)

func main() {
	config.LoadDotEnv()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
