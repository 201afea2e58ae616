package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/pflag"
)

func main() {

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	cfg, args, err := LoadConfig(os.Args[1:], fset)
	if err == pflag.ErrHelp {
		os.Exit(0)
	}

	if err == nil {
		switch {
		case len(args) > 0:
			err = go_gpython(args[0])
		case cfg.REPL:
			err = go_gpython("")
		default:
			err = run(cfg, os.Stdout)
		}
	}

	if err != nil {
		klog.Errorf("goknot: %v", err)
	}
	klog.Flush()

	if err != nil {
		os.Exit(1)
	}
}
