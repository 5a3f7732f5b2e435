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

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Start()

	errCh := make(chan error, 1)
	go func() { errCh <- application.Run(application.Cfg.HTTPAddr) }()

	select {
	case <-ctx.Done():
		application.Log.Info("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			application.Log.Error("Server failed", "error", err)
			application.Close()
			os.Exit(1)
		}
	}
}
