package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "InsightHub/internal/domain/repository"
	"InsightHub/internal/service/admission"
	"InsightHub/internal/service/markets"
	pkgch "InsightHub/pkg/clickhouse"
	"InsightHub/pkg/config"
	xhttp "InsightHub/pkg/http"
	applogger "InsightHub/pkg/logger"
)

// App encapsulates the application lifecycle: HTTP server, quote stream pump,
// admission sweeper and infrastructure clients.
type App struct {
	cfg     *config.Config
	l       *applogger.Logger
	handler xhttp.Handler

	admission *admission.Controller
	stream    drepo.QuoteStream
	quotes    markets.QuoteSink
	events    drepo.EventPublisher
	archive   drepo.Archive
	chClient  *pkgch.Client

	httpServer *xhttp.Server
}

// New creates an App. stream, events, archive and chClient may be nil when
// the corresponding backend is not configured.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	ctrl *admission.Controller,
	stream drepo.QuoteStream,
	quotes markets.QuoteSink,
	events drepo.EventPublisher,
	archive drepo.Archive,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		admission: ctrl,
		stream:    stream,
		quotes:    quotes,
		events:    events,
		archive:   archive,
		chClient:  chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithThrottle(a.cfg.Server.ThrottleRPS, a.cfg.Server.ThrottleBurst),
	)

	if a.stream != nil && a.quotes != nil {
		go markets.Pump(ctx, a.stream, a.quotes, 0, a.l)
		a.l.Info("quote stream pump started", applogger.Strings("symbols", a.cfg.Markets.Symbols))
	}

	if a.admission != nil && a.cfg.Admission.SweepInterval > 0 {
		a.admission.StartSweeper(a.cfg.Admission.SweepInterval)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.admission != nil {
		a.admission.Stop()
	}
	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.l.Warn("quote stream close error", applogger.Error(err))
		}
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.l.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.l.Warn("archive close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
