package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bqchat/pkg/domain/model/chat"
	"github.com/secmon-lab/bqchat/pkg/repository/memory"
	"github.com/secmon-lab/bqchat/pkg/usecase"
	"github.com/secmon-lab/bqchat/pkg/utils/logging"
	"github.com/secmon-lab/bqchat/pkg/utils/msg"
	"github.com/urfave/cli/v3"
)

func cmdChat() *cli.Command {
	var (
		cfg         chatConfig
		profileName string
		mode        string
		query       string
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "profile",
				Aliases:     []string{"p"},
				Usage:       "Chat profile name. The first profile is used when empty",
				Destination: &profileName,
				Sources:     cli.EnvVars("BQCHAT_PROFILE"),
			},
			&cli.StringFlag{
				Name:        "mode",
				Aliases:     []string{"m"},
				Usage:       "Override the profile mode [echo|list|command|agent|direct]",
				Destination: &mode,
			},
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "Message to send (if not provided, interactive mode will start)",
				Destination: &query,
			},
		},
		cfg.Flags(),
	)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Chat with BigQuery in the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.From(ctx).Debug("chat options", "profile", profileName, "mode", mode, "config", cfg)

			profiles, err := cfg.profile.Load()
			if err != nil {
				return err
			}
			if mode != "" {
				profiles, err = overrideMode(profiles, profileName, chat.Mode(mode))
				if err != nil {
					return err
				}
				profileName = profiles[0].Name
			}

			uc, closer, err := cfg.buildUseCases(ctx, memory.New(), profiles)
			defer closer()
			if err != nil {
				return err
			}

			ctx = msg.With(ctx, printNotify(c.Root().Writer), printTrace(c.Root().ErrWriter))

			ssn, err := uc.NewSession(ctx, profileName)
			if err != nil {
				return err
			}
			defer uc.CloseSession(ctx, ssn)

			if query != "" {
				if err := uc.Chat(ctx, ssn, query); err != nil {
					return goerr.Wrap(err, "failed to process message")
				}
				return nil
			}

			return runInteractive(ctx, uc, ssn, os.Stdin, c.Root().Writer)
		},
	}
}

func printNotify(w io.Writer) msg.NotifyFunc {
	return func(ctx context.Context, m string) {
		fmt.Fprintf(w, "%s\n\n", m)
	}
}

func printTrace(w io.Writer) msg.TraceFunc {
	trace := color.New(color.FgHiBlack)
	return func(ctx context.Context, m string) {
		_, _ = trace.Fprintln(w, m)
	}
}

func runInteractive(ctx context.Context, uc *usecase.UseCases, ssn *chat.Session, r io.Reader, w io.Writer) error {
	fmt.Fprintf(w, "💬 %s (%s). Type 'exit' or 'quit' to end the session.\n\n", ssn.Profile, ssn.Mode)
	uc.Welcome(ctx, ssn)

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Fprintln(w, "👋 Session ended.")
			return nil
		}

		// Failures are already shown to the user; keep the session alive.
		if err := uc.Chat(ctx, ssn, input); err != nil {
			logging.From(ctx).Warn("chat turn failed", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to read input")
	}
	fmt.Fprintln(w, "\n👋 Session ended.")
	return nil
}
