package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/tablescape/internal/cli"
	tserrors "github.com/matzehuels/tablescape/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", tserrors.UserMessage(err))
		os.Exit(tserrors.ExitCode(err))
	}
}

func run(ctx context.Context) error {
	// --verbose is a persistent flag read with the rest of the config, so
	// the logger starts at info and is raised before the command runs.
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}
