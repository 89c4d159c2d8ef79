package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/pixil98/go-service"

	"github.com/pixil98/go-atlas/cmd/atlas/command"
)

func main() {
	// Optional; secrets such as REDIS_PASS may come from the environment instead.
	_ = godotenv.Load(".env")

	app, err := service.NewApp(&command.Config{}, command.BuildWorkers)
	if err != nil {
		slog.Error("creating application", "error", err)
		os.Exit(1)
	}

	err = app.Run(context.Background())
	if err != nil {
		slog.Error("running application", "error", err)
		os.Exit(1)
	}

	slog.Info("exiting")
}
