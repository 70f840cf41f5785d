package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"detect_dashboard/internal/app"
	"detect_dashboard/internal/webui"
)

func main() {
	env, err := app.Bootstrap()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer env.Close()

	srv := webui.New(webui.Options{
		Detector:   env.Client,
		Origins:    env.Config.WebOrigins,
		Heuristics: env.Config.Heuristics,
		Interval:   env.Config.ProgressInterval,
		History:    historyStore(env),
		Recorder:   env.Recorder,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Media Detect web client on %s (backend %s)", env.Config.WebAddr, env.Config.BackendURL)
	if err := srv.Run(ctx, env.Config.WebAddr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func historyStore(env *app.Env) webui.HistoryStore {
	if env.History == nil {
		return nil
	}
	return env.History
}
