package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	pkgch "finsight/pkg/clickhouse"
	"finsight/pkg/config"
	xhttp "finsight/pkg/http"
	pkgkafka "finsight/pkg/kafka"
	applogger "finsight/pkg/logger"
	"finsight/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	handlers   []pkgkafka.MessageHandler
	chClient   *pkgch.Client
	jobQueue   *queue.RedisQueue
	closers    []io.Closer
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		handler:  handler,
		consumer: consumer,
		chClient: chClient,
	}
}

// RegisterMessageHandler adds a Kafka message handler to start with the consumer.
func (a *App) RegisterMessageHandler(h pkgkafka.MessageHandler) {
	if h != nil {
		a.handlers = append(a.handlers, h)
	}
}

// SetJobQueue attaches a background job queue to the lifecycle.
func (a *App) SetJobQueue(q *queue.RedisQueue) { a.jobQueue = q }

// AddCloser registers a resource to close on shutdown.
func (a *App) AddCloser(c io.Closer) {
	if c != nil {
		a.closers = append(a.closers, c)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
		}
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.l.Info("kafka consumer started", applogger.Int("handlers", len(a.handlers)))
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			a.l.Error("job queue start error", applogger.Error(err))
		} else {
			a.l.Info("job queue started")
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			a.l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.Warn("resource close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
