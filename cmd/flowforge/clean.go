package main

import (
	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/engine"
)

var cleanCommand = &cobra.Command{
	Use:   "clean",
	Short: "Remove every output recorded by a previous build",
	Run:   mainify(cleanMain),
}

func cleanMain(command *cobra.Command, arguments []string) error {
	e, err := buildEngine(engine.ModeClean)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	e.Clean(func(err error) { done <- err })
	return <-done
}
