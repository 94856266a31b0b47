package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/http"
	"knowledge-search/internal/importer"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API on API_PORT. When IMPORT_DIR is set, the directory is
imported for IMPORT_OWNER_ID in the background once the server is up.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()

	deps := &http.Deps{
		Documents:      a.documents,
		Engine:         a.engine,
		VectorStore:    a.vectorStore,
		Collection:     cfg.QdrantCollection,
		JWTSecret:      cfg.JWTSecret,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if a.cache != nil {
		deps.Cache = a.cache
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set; trusting the X-Owner-ID header")
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	if cfg.ImportDir != "" {
		go func() {
			importCtx := contextutil.WithLogger(ctx, slog.Default().With("component", "importer"))
			summary, err := importer.New(a.documents).Run(importCtx, cfg.ImportOwnerID, cfg.ImportDir)
			if err != nil {
				slog.Error("Background import failed", "dir", cfg.ImportDir, "error", err)
				return
			}
			slog.Info("Background import completed", "imported", summary.Imported, "unchanged", summary.Unchanged, "failed", summary.Failed)
		}()
	}

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}
