package main

import (
	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/engine"
)

var previewCommand = &cobra.Command{
	Use:   "preview",
	Short: "Run the build pipeline without writing anything to disk",
	Run:   mainify(previewMain),
}

func previewMain(command *cobra.Command, arguments []string) error {
	e, err := buildEngine(engine.ModePreview)
	if err != nil {
		return err
	}
	build, err := loadRules()
	if err != nil {
		return err
	}
	return runToCompletion(e, build(e))
}
