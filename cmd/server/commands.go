package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/trinetra/chatsim-server/internal/app"
	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/core"
	chatlog "github.com/trinetra/chatsim-server/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "chatsim",
		Short:         "Simulated chat room and chatbot server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override")

	root.AddCommand(newServeCmd(opts), newSimulateCmd(opts))
	return root
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	bootLog := chatlog.New("info", "console")
	cfg, path, err := config.Load(bootLog, opts.configPath)
	if err != nil {
		return cfg, err
	}
	cfg.UpdateFrom(config.Config{LogLevel: opts.logLevel})
	bootLog.Debug().Str("path", path).Msg("config resolved")
	return cfg, nil
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(config.Config{Addr: addr})

			logger := chatlog.New(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(&cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			logger.Info().Str("addr", cfg.Addr).Msg("starting chatsim server")
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	return cmd
}

type simulateOptions struct {
	kind     string
	name     string
	say      []string
	gap      time.Duration
	duration time.Duration
	seed     uint64
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one session in-process and print its transcript",
		Example: `  chatsim simulate --kind bot --say "Hello"
  chatsim simulate --kind chat --say "Hi all" --say "Anyone here?" --for 10s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			kind, err := core.ParseKind(opts.kind)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(config.Config{Simulation: config.Simulation{Seed: opts.seed}})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := chatlog.New(cfg.LogLevel, cfg.LogFormat)
			view, err := simulate(ctx, &cfg, logger, kind, opts)
			if err != nil {
				return err
			}
			printTranscript(view)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.kind, "kind", string(core.KindChatbot), "session kind: chat or bot")
	cmd.Flags().StringVar(&opts.name, "name", "", "local display name")
	cmd.Flags().StringArrayVar(&opts.say, "say", nil, "message to submit, repeatable")
	cmd.Flags().DurationVar(&opts.gap, "gap", 2*time.Second, "pause between submitted messages")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed, zero seeds from the clock")
	cmd.Flags().DurationVar(&opts.duration, "for", 6*time.Second, "how long to let the session run after the last message")
	return cmd
}

func simulate(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, kind core.Kind, opts simulateOptions) (core.View, error) {
	hub, err := app.NewHub(cfg, logger)
	if err != nil {
		return core.View{}, err
	}
	defer hub.Shutdown()

	session, err := hub.Open(kind, opts.name)
	if err != nil {
		return core.View{}, err
	}

	// Chat room sessions need to finish connecting before a submit is accepted.
	if !waitConnected(ctx, session) {
		return session.Snapshot()
	}

	for i, text := range opts.say {
		if i > 0 && !sleep(ctx, opts.gap) {
			break
		}
		res, err := session.Submit(text)
		if err != nil {
			return core.View{}, err
		}
		if !res.Accepted {
			logger.Warn().Str("text", text).Msg("message not accepted")
		}
	}
	sleep(ctx, opts.duration)

	return session.Snapshot()
}

func waitConnected(ctx context.Context, session *core.Session) bool {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		view, err := session.Snapshot()
		if err != nil {
			return false
		}
		if view.State.Connected() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func printTranscript(view core.View) {
	fmt.Printf("session %s (%s) state=%s\n\n", view.ID, view.Kind, view.State)

	messages := tablewriter.NewWriter(os.Stdout)
	messages.SetHeader([]string{"Time", "From", "Text", "Status"})
	messages.SetAutoWrapText(true)
	messages.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, m := range view.Messages {
		from := m.Author
		if from == "" {
			from = string(m.Sender)
		}
		text := m.Text
		if len(m.QuickReplies) > 0 {
			text += "\n[" + strings.Join(m.QuickReplies, "] [") + "]"
		}
		messages.Append([]string{m.CreatedAt.Format("15:04:05.000"), from, text, string(m.Status)})
	}
	messages.Render()

	if len(view.Notifications) == 0 {
		return
	}
	fmt.Println()
	toasts := tablewriter.NewWriter(os.Stdout)
	toasts.SetHeader([]string{"Severity", "Title", "Body"})
	toasts.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, n := range view.Notifications {
		toasts.Append([]string{string(n.Severity), n.Title, n.Body})
	}
	toasts.Render()
}
