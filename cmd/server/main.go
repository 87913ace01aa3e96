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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ibreez3/pixel-ai/chat"
	"github.com/ibreez3/pixel-ai/config"
	"github.com/ibreez3/pixel-ai/openai"
	"github.com/ibreez3/pixel-ai/service"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pixel-ai-server",
	Short: "Serve the pixel chat UI and completion gateway",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to config file")
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := service.NewLogger("server", cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return err
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetrics()
	metrics.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL,
		openai.WithRetries(cfg.OpenAI.MaxRetries),
		openai.WithRequestTimeout(cfg.RequestTimeout()),
	).WithLogger(log).WithVerify(cfg.OpenAI.VerifyKey)
	gw := metrics.Instrument(client)

	orch := chat.New(gw,
		chat.WithCatalog(chat.CatalogFor(cfg.OpenAI.Model, cfg.OpenAI.FallbackModel)),
		chat.WithLogger(log),
		chat.WithRequestTimeout(cfg.RequestTimeout()),
		chat.WithProbeTimeout(cfg.ProbeTimeout()),
	)
	status := orch.Initialize(ctx)
	log.Info("key status", "configured", status.Configured, "message", status.Message)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           service.NewServer(orch, gw, metrics, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
