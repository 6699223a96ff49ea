package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/markdave123-py/reviewdesk/internal/app"
	"github.com/markdave123-py/reviewdesk/internal/config"
	"github.com/markdave123-py/reviewdesk/internal/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	serveCmd := serveCommand()

	rootCmd := &cobra.Command{
		Use:           "reviewdesk",
		Short:         "AI-assisted customer review feedback service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd, regenerateCommand())
	return rootCmd
}

func serveCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadConfig()
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	defer logging.Close()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	defer application.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logging.Error("graceful shutdown failed", logrus.Fields{"error": err.Error()})
		return err
	}
	return nil
}

func regenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Recompute the summary and actions of every stored review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer logging.Close()

			application, err := app.NewApp(cmd.Context(), config.LoadConfig())
			if err != nil {
				return fmt.Errorf("startup failed: %w", err)
			}
			defer application.Close()

			report, err := application.Reviews.RegenerateAll(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Regenerated %d out of %d reviews\n", report.Updated, report.Total)
			for _, e := range report.Errors {
				fmt.Fprintln(out, "  "+e)
			}
			return nil
		},
	}
}
