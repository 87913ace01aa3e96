package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ibreez3/pixel-ai/chat"
	"github.com/ibreez3/pixel-ai/config"
	"github.com/ibreez3/pixel-ai/openai"
	"github.com/ibreez3/pixel-ai/service"
	"github.com/ibreez3/pixel-ai/tui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pixel-ai-term",
	Short: "Pixel chat in the terminal",
	Long: `pixel-ai-term renders the same chat session as the web UI in a terminal.

Keys:
  enter    send message
  tab      switch between the balanced and fast model
  ctrl+t   toggle theme
  esc      quit`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config file")
}

// fileLogger keeps log output off the terminal the UI is drawing on. The
// returned path is empty when logging is disabled.
func fileLogger(dir, level string) (*slog.Logger, string, error) {
	if dir == "" {
		return service.NewDiscardLogger(), "", nil
	}
	sink, err := service.NewFileSink(dir, "term")
	if err != nil {
		return nil, "", err
	}
	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: service.ParseLevel(level)})), sink.Path(), nil
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, logPath, err := fileLogger(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return err
	}

	client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL,
		openai.WithRetries(cfg.OpenAI.MaxRetries),
		openai.WithRequestTimeout(cfg.RequestTimeout()),
	).WithLogger(log).WithVerify(cfg.OpenAI.VerifyKey)

	orch := chat.New(client,
		chat.WithCatalog(chat.CatalogFor(cfg.OpenAI.Model, cfg.OpenAI.FallbackModel)),
		chat.WithLogger(log),
		chat.WithRequestTimeout(cfg.RequestTimeout()),
		chat.WithProbeTimeout(cfg.ProbeTimeout()),
	)
	orch.Initialize(ctx)

	_, err = tea.NewProgram(tui.New(orch), tea.WithContext(ctx)).Run()
	if logPath != "" {
		fmt.Fprintln(os.Stderr, "log written to", logPath)
	}
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
