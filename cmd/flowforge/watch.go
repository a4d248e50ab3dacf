package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/pkg/engine"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Run the build pipeline once, then rebuild on filesystem changes",
	Run:   mainify(watchMain),
}

func watchMain(command *cobra.Command, arguments []string) error {
	e, err := buildEngine(engine.ModeWatch)
	if err != nil {
		return err
	}
	build, err := loadRules()
	if err != nil {
		return err
	}

	if err := runToCompletion(e, build(e)); err != nil {
		e.Logger.Error(err)
	}

	w, err := e.Watch(
		func(sources []string) {
			e.Logger.Infof("rebuilding %d file(s)", len(sources))
			if err := runToCompletion(e, build(e)); err != nil {
				e.Logger.Error(err)
			}
		},
		func(sources []string) {
			e.Logger.Infof("refreshing %d file(s)", len(sources))
		},
	)
	if err != nil {
		return err
	}
	defer w.Terminate()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	select {
	case <-signals:
		fmt.Println()
		return nil
	case err := <-w.Errors():
		return err
	}
}
