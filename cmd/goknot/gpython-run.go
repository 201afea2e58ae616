package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"

	_ "github.com/2x3systems/goknot/pyknot"
	_ "github.com/go-python/gpython/stdlib"
)

const kREPLStartup = "lib/_REPL_startup.py"

// go_gpython runs the given script, or starts a REPL if pathname is empty.
func go_gpython(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var (
		err error
	)
	if len(pathname) == 0 {
		replCtx := repl.New(ctx)

		if _, statErr := os.Stat(kREPLStartup); statErr == nil {
			_, err = py.RunFile(ctx, kREPLStartup, py.CompileOpts{}, replCtx.Module)
		}
		if err == nil {
			cli.RunREPL(replCtx)
		}

	} else {
		startTime := time.Now()
		fmt.Printf("<<<>>>   executing '%s'   <<<>>>\n", pathname)

		// RunFile resolves pathname against CurDir, which defaults to "."
		opts := py.CompileOpts{}
		if filepath.IsAbs(pathname) {
			opts.CurDir = "/"
		}
		_, err = py.RunFile(ctx, pathname, opts, nil)

		if err == nil {
			elapsed := time.Since(startTime)
			fmt.Printf("<<<>>>   execution complete: %v   <<<>>>\n", elapsed)
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
	}
	return err
}
