package main

import (
	"context"
	"log/slog"
	"os"

	"dentalscrape/cmd/exercises/commands"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	commands.ExecuteContext(context.Background())
}
