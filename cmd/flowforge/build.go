package main

import (
	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/engine"
)

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Run the build pipeline once and write outputs to disk",
	Run:   mainify(buildMain),
}

func buildMain(command *cobra.Command, arguments []string) error {
	e, err := buildEngine(engine.ModeBuild)
	if err != nil {
		return err
	}
	build, err := loadRules()
	if err != nil {
		return err
	}
	return runToCompletion(e, build(e))
}
