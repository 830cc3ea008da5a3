// myjqld serves a database file over HTTP.
// Usage: myjqld -db data.db [-addr :8192]
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	bplus "myjql/bplustree"
	"myjql/logger"
	"myjql/server"
	"myjql/settings"
)

func main() {
	cfg := settings.FromEnv()

	dbPath := flag.String("db", "", "path to the database file")
	addr := flag.String("addr", cfg.Server.Addr, "listen address")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "Must supply a database filename.")
		os.Exit(1)
	}

	log := logger.New(cfg.Logger)
	defer log.Sync()

	table, err := bplus.Open(*dbPath, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(table, log).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", *addr), zap.String("db", *dbPath))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
	}
	if err := table.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Info("shut down cleanly")
}
