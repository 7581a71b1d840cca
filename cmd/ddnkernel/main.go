// Command ddnkernel drives the deterministic tick kernel from the
// command line: sealing the Fixed64 determinism vector, running the
// builtin reference scenario into a Geoul bundle, replaying a bundle
// to check for divergence, and benchmarking the multi-realm scheduler.
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/ethereum/go-ethereum/log"
)

var app = cli.NewApp()

func init() {
	app.Name = "ddnkernel"
	app.Usage = "deterministic simulation kernel runner"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to a ddnkernel TOML config file",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "emit debug-level logs",
		},
	}
	app.Commands = []cli.Command{
		detVectorCommand,
		runCommand,
		replayCommand,
		warpCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		lvl := log.LvlInfo
		if ctx.GlobalBool("verbose") {
			lvl = log.LvlDebug
		}
		handler := log.StreamHandler(os.Stderr, log.TerminalFormat(false))
		log.Root().SetHandler(log.LvlFilterHandler(lvl, handler))
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
