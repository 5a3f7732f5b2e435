package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/learnhub-backend/internal/app"
)

// The standalone worker processes the generation queue without serving HTTP.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Services.JobWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		application.Log.Error("Job worker stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}
