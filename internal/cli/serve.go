package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/infofact/internal/dispatch"
	"github.com/ppiankov/infofact/internal/metrics"
	"github.com/ppiankov/infofact/internal/server"
	"github.com/ppiankov/infofact/internal/session"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP endpoint",
	Long: `Serve exposes the agents over HTTP.

Routes:
  POST /infofactagents   form fields Body, Agents (comma separated), SessionID
                         Body=list_agents or Body=system_prompt are shortcuts
  GET  /agents           registered agents as JSON
  GET  /sessions/:id     request/response history of a session
  GET  /healthz          liveness
  GET  /metrics          Prometheus metrics

Example:
  infofact serve --addr :5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from server.address)")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	m := metrics.New()
	mgr, err := buildManager(cfg,
		dispatch.WithLogger(log.New(os.Stderr, "[DISPATCH] ", log.LstdFlags)),
		dispatch.WithObserver(m.RecordReport),
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stderr, "[HTTP] ", log.LstdFlags)
	srv := server.New(cfg.Server, mgr, session.NewMemoryStore(), m, logger)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Printf("stopped")
	return nil
}
