// Package server initializes and runs the messaging service: the document
// store, the session registry, the TCP messaging endpoint, and the read-only
// web view. It also owns graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"distsocial/internal/logging"
	"distsocial/internal/server/config"
	"distsocial/internal/server/session"
	"distsocial/internal/server/storage"
	"distsocial/internal/server/tcp"
	"distsocial/internal/server/web"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *storage.Store
	sessions *session.Registry
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	store, err := storage.Open(c.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		sessions: session.NewRegistry(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startMessagingServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := tcp.NewServer(app.config.EndpointAddr, app.logger, app.store, app.sessions)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startWebServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := web.NewServer(app.config.WebEndpointAddr, app.logger, app.store)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startMessagingServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startWebServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
