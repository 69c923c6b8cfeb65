package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"wellspring/app/config"
	"wellspring/app/server"
	"wellspring/app/service/coach"
	"wellspring/app/service/memory"
	"wellspring/app/service/modelrouter"
	"wellspring/app/service/persist"
	"wellspring/app/service/pillar"
	"wellspring/app/service/resilience"
	"wellspring/app/service/safety"
	"wellspring/app/service/topic"
	"wellspring/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, resilience.New)
	do.Provide(di, modelrouter.New)
	do.Provide(di, safety.New)
	do.Provide(di, topic.New)
	do.Provide(di, memory.New)
	do.Provide(di, pillar.NewRegistry)
	do.Provide(di, persist.New)
	do.Provide(di, coach.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	group, groupCtx := errgroup.WithContext(appCtx)

	group.Go(func() error {
		return do.MustInvoke[*server.Server](di).Run(groupCtx)
	})

	if err = group.Wait(); err != nil {
		slog.Error("Service stopped", "error", err)
	}
}
