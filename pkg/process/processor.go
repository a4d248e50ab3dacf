package process

import (
	"context"

	"github.com/flowforge/flowforge/pkg/filelist"
	"github.com/flowforge/flowforge/pkg/vfile"
	"github.com/pkg/errors"
)

// Processor adapts a child-process invocation into a filelist.AsyncFunc: the
// file's current buffer is piped to the command's stdin, and on a zero exit
// the command's stdout replaces the buffer. A nonzero exit or launch failure
// is reported as the file's error and leaves the buffer untouched.
//
// A rule file wires it into a pipeline the same way as any other processor:
//
//	src.Pipe(process.Processor("sass", []string{"--stdin"}, process.Options{}))
func Processor(name string, args []string, opts Options) filelist.AsyncFunc {
	return func(f *vfile.File, done func(error)) {
		data, err := f.Buffer()
		if err != nil {
			done(err)
			return
		}
		runOpts := opts
		runOpts.Stdin = data
		Exec(context.Background(), name, args, runOpts, func(result *Result, err error) {
			if err != nil {
				done(err)
				return
			}
			if result.ExitCode != 0 {
				done(errors.Errorf("%s exited with status %d", name, result.ExitCode))
				return
			}
			f.SetBuffer(result.Stdout)
			done(nil)
		})
	}
}
