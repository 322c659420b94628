package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscalxml/processor/internal/server"
	"github.com/fiscalxml/processor/internal/storage"
	"github.com/fiscalxml/processor/pkg/config"
	"github.com/fiscalxml/processor/pkg/logger"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for processing fiscal documents.

Endpoints:
  - POST /api/v1/process/xml  - Process one XML document
  - POST /api/v1/validate     - Validate without persisting
  - POST /api/v1/detect       - Detect the schema family
  - GET  /api/v1/stats        - Storage statistics
  - GET  /health              - Health check

Configuration comes from the environment (APP_ENV, STORAGE_DRIVER,
DATABASE_URL, HTTP_PORT, ...); flags override the listen address.

Examples:
  fiscalxml serve
  fiscalxml serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from HTTP_HOST/HTTP_PORT)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	addr := serverAddr
	if addr == "" {
		addr = cfg.HTTP.Addr()
	}

	store, err := storage.Open(context.Background(), storage.Config{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		DSN:    cfg.Storage.DSN,
	}, log)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.NewServer(&server.Config{
		Address:      addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug || cfg.HTTP.Debug,
	}, store, log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		store.Close()
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s (storage: %s)\n", addr, cfg.Storage.Driver)
	return srv.Run()
}
