package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"pdoom/internal/config"
	"pdoom/internal/serverapp"
)

func main() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath, "config file")
	dataDir := fs.String("data-dir", "", "save data directory (overrides config)")
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		log.Printf("config %s unreadable, using defaults: %v", *cfgPath, err)
	}
	cfg.Balance = config.FromEnv(cfg.Balance)
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	srv, err := serverapp.New(serverapp.Options{
		Config:        cfg,
		DataDir:       cfg.DataDir,
		StaticDir:     "static",
		UseDiskStatic: serverapp.UseDiskStaticByEnv(),
		Logger:        log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on http://localhost%s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("server: %v", err)
		_ = srv.Close()
		os.Exit(1)
	}
}
