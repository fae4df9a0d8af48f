package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"

	"github.com/mark3labs/codex/cmd"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := fang.Execute(ctx, cmd.GetRootCommand(version),
		fang.WithVersion(version),
		fang.WithoutManpage(),
		fang.WithoutCompletions(),
	)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
