package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tanya-chat/internal/config"
	"tanya-chat/internal/logger"
	"tanya-chat/internal/server"
	"tanya-chat/internal/upstream"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	s := server.NewServer(cfg, upstream.New(cfg), log)
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(fmt.Sprintf("tanya relay listening on %s", addr), logrus.Fields{"provider": cfg.Provider})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("relay server failed", logrus.Fields{"error": err.Error()})
		}
	}()

	<-stop
	log.Info("shutting down relay")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", logrus.Fields{"error": err.Error()})
	}
}
