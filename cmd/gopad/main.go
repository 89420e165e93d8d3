package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilnaes/gopad/internal/config"
	"github.com/ilnaes/gopad/internal/logger"
	"github.com/ilnaes/gopad/internal/server"
	"github.com/ilnaes/gopad/internal/store"
)

var (
	port    = flag.Int("port", 0, "listen port, overrides GOPAD_PORT")
	envFile = flag.String("env", ".env", "optional dotenv file")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens before main exits
func run() int {
	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.New(slog.LevelError).Error("config", "err", err)
		return 1
	}
	if *port != 0 {
		cfg.Port = *port
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store = store.NewMemory()
	if cfg.MongoURI != "" {
		connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		st, err = store.NewMongo(connCtx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Error("store", "err", err)
			return 1
		}
	} else {
		log.Warn("GOPAD_MONGO_URI not set, snapshots are kept in memory")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn("close store", "err", err)
		}
	}()

	if err := server.NewServer(cfg, st, log).Run(ctx); err != nil {
		log.Error("server", "err", err)
		return 1
	}
	return 0
}
