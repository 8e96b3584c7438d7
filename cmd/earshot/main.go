package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/earshot-labs/earshot/internal/adapters/art"
	"github.com/earshot-labs/earshot/internal/adapters/rest"
	"github.com/earshot-labs/earshot/internal/adapters/rss"
	"github.com/earshot-labs/earshot/internal/adapters/sqlite"
	"github.com/earshot-labs/earshot/internal/config"
	"github.com/earshot-labs/earshot/internal/core/ports"
	"github.com/earshot-labs/earshot/internal/core/services"
	"github.com/earshot-labs/earshot/internal/worker"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	app := &cli.Command{
		Name:  "earshot",
		Usage: "Podcast playback skill backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the event intake server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Value: "config.toml",
						Usage: "path to the TOML configuration file",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return serve(ctx, cmd.String("config"), logger)
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

func serve(ctx context.Context, configPath string, logger *log.Logger) error {
	cfg := config.Default()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cfg.Feed.URL == "" {
		return errors.New("feed.url must be configured")
	}

	store, err := sqlite.NewStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	pool := worker.NewPool(cfg.Probe.QueueSize, logger.With("component", "worker"))
	pool.Start(cfg.Probe.Workers)
	defer pool.Stop()

	feedCfg := rss.Config{
		MaxRetries:        cfg.Feed.MaxRetries,
		BaseBackoff:       time.Duration(cfg.Feed.BackoffMs) * time.Millisecond,
		RequestsPerSecond: cfg.Feed.RequestsPerSecond,
	}
	if cfg.Feed.Auth.Enabled() {
		feedCfg.Auth = &rss.AuthConfig{
			ClientID:     cfg.Feed.Auth.ClientID,
			ClientSecret: cfg.Feed.Auth.ClientSecret,
			TokenURL:     cfg.Feed.Auth.TokenURL,
			Scopes:       cfg.Feed.Auth.Scopes,
		}
	}
	feed := rss.NewClient(nil, feedCfg, logger.With("component", "rss"))

	var signer ports.ArtSigner
	if cfg.Art.SigningKey != "" && cfg.Art.BaseURL != "" {
		signer = art.NewSigner(cfg.Art.BaseURL, cfg.Art.SigningKey,
			time.Duration(cfg.Art.TTLMinutes)*time.Minute)
	}

	synchronizer := services.NewSynchronizer(feed, pool, logger.With("component", "sync"))
	player := services.NewPlayer(
		services.Config{
			FeedURL:      cfg.Feed.URL,
			SkillName:    cfg.Skill.Name,
			ArtObjectKey: cfg.Art.ObjectKey,
		},
		store,
		synchronizer,
		signer,
		services.DefaultPrompts(),
		logger.With("component", "player"),
	)

	handler := rest.NewHandler(player, logger.With("component", "rest"))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	logger.Info("earshot listening", "addr", cfg.Server.Addr, "feed", cfg.Feed.URL)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		return err
	case <-signalCtx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}
	return nil
}
