package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkscope/internal/cli"
)

// exitInterrupted is the shell convention for a process ended by SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// newRoot wires the logging flags, which only take effect after parsing,
// into the root command.
func newRoot() *cobra.Command {
	var (
		verbose, quiet bool
		logFormat      string
	)

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "log warnings and errors only")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text, json, logfmt")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	next := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch {
		case verbose:
			c.SetLogLevel(cli.LogDebug)
		case quiet:
			c.SetLogLevel(cli.LogWarn)
		}
		if err := c.SetLogFormat(logFormat); err != nil {
			return err
		}
		if next != nil {
			return next(cmd, args)
		}
		return nil
	}
	return root
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
