package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/secmon-lab/bqchat/pkg/cli/config"
	server "github.com/secmon-lab/bqchat/pkg/controller/http"
	websocket_controller "github.com/secmon-lab/bqchat/pkg/controller/websocket"
	"github.com/secmon-lab/bqchat/pkg/domain/interfaces"
	"github.com/secmon-lab/bqchat/pkg/repository/memory"
	"github.com/secmon-lab/bqchat/pkg/usecase"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		addr         string
		idleTimeout  time.Duration
		cfg          chatConfig
		firestoreCfg config.Firestore
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("BQCHAT_ADDR"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "session-idle-timeout",
				Sources:     cli.EnvVars("BQCHAT_SESSION_IDLE_TIMEOUT"),
				Usage:       "Close BigQuery clients of sessions idle for this long. 0 keeps them until shutdown",
				Value:       usecase.DefaultSessionIdleTimeout,
				Destination: &idleTimeout,
			},
		},
		cfg.Flags(),
		firestoreCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run HTTP and websocket chat server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"session_idle_timeout", idleTimeout,
				"config", cfg,
				"firestore", firestoreCfg,
			)

			profiles, err := cfg.profile.Load()
			if err != nil {
				return err
			}

			var repo interfaces.Repository = memory.New()
			if firestoreCfg.IsConfigured() {
				fs, err := firestoreCfg.Configure(ctx)
				if err != nil {
					return err
				}
				defer safe.Close(ctx, fs)
				repo = fs
			} else {
				logging.Default().Warn("Firestore is not configured, sessions are kept in memory")
			}

			uc, closer, err := cfg.buildUseCases(ctx, repo, profiles, usecase.WithSessionIdleTimeout(idleTimeout))
			defer closer()
			if err != nil {
				return err
			}
			go uc.RunSessionSweeper(ctx, time.Minute)

			wsHub := websocket_controller.NewHub(ctx)
			wsHandler := websocket_controller.NewHandler(wsHub, uc)

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(uc, server.WithWebSocketHandler(wsHandler)),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("shutting down server", "signal", sig.String())
				if err := wsHub.Close(); err != nil {
					logging.From(ctx).Error("failed to close WebSocket hub", "error", err)
				}

				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}
}
