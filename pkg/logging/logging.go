// Package logging implements the engine's leveled, colorized logging and
// progress-span tracking.
package logging

import (
	"log"
	"os"
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
}
