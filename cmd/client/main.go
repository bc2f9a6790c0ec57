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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/dkeye/VoiceClient/internal/adapters/http"
	"github.com/dkeye/VoiceClient/internal/adapters/rtc"
	signaling "github.com/dkeye/VoiceClient/internal/adapters/signal"
	"github.com/dkeye/VoiceClient/internal/app/media"
	"github.com/dkeye/VoiceClient/internal/app/orch"
	"github.com/dkeye/VoiceClient/internal/app/views"
	"github.com/dkeye/VoiceClient/internal/config"
	"github.com/dkeye/VoiceClient/internal/metrics"
)

const (
	shutdownTimeout = 5 * time.Second
	leaveTimeout    = 3 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("client stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("client exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	options, err := cfg.OptionMap()
	if err != nil {
		return err
	}
	collector := metrics.NewPrometheusCollector()

	factory, err := rtc.NewFactory(rtc.NewLoggerFactory())
	if err != nil {
		return fmt.Errorf("webrtc: %w", err)
	}
	session, err := media.NewSession(factory, media.Options{
		RenegotiationDelay: cfg.Media.RenegotiationDelay,
		GatherTimeout:      cfg.Media.GatherTimeout,
		DataChannelLabel:   cfg.Media.DataChannelLabel,
		Metrics:            collector,
	})
	if err != nil {
		return fmt.Errorf("media session: %w", err)
	}
	channel := signaling.NewHTTPChannel(signaling.Config{
		ICEServers: cfg.ICEServerList(),
		Timeout:    cfg.Signal.Timeout,
		QueueSize:  cfg.Signal.QueueSize,
		Metrics:    collector,
	})
	pool := views.NewPool(cfg.Views.Slots)
	o := orch.New(channel, session, pool, orch.Config{BaseURL: cfg.Signal.BaseURL, Options: options})

	r := router.SetupRouter(ctx, cfg, router.Deps{
		Controller: o,
		Slots:      pool,
		Metrics:    collector.Handler(),
	})
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("control API started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	if room := cfg.Conference.Room; room != "" {
		g.Go(func() error {
			if err := o.Connect(room, cfg.Conference.Identity, cfg.Conference.Secret); err != nil {
				return fmt.Errorf("auto-connect: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		o.Disconnect()
		select {
		case <-channel.Done():
		case <-time.After(leaveTimeout):
			log.Warn().Msg("leave not acknowledged in time")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})
	return g.Wait()
}
