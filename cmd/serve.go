package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pixegami/blog/internal/output"
	"github.com/pixegami/blog/internal/preview"
	"github.com/pixegami/blog/internal/site"
	"github.com/pixegami/blog/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build, serve locally and rebuild on change",
	Long: `Perform an initial build, then serve the output directory over HTTP while
watching the content, static and layouts directories. Changes trigger a
rebuild once the tree has been quiet for serve.debounce.

Examples:
  blog serve                   # Serve on :8000
  blog serve -p 3000           # Serve on :3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (overrides serve.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Serve.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	builder := site.NewBuilder(cfg, logger)
	if _, err := builder.Build(ctx); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	bc := cfg.Build
	watcher, err := watch.New([]string{bc.ContentDir, bc.StaticDir, bc.LayoutsDir}, cfg.Serve.Debounce, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()

	e := preview.New(bc.OutputDir, logger)
	addr := fmt.Sprintf(":%d", cfg.Serve.Port)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(gctx, func(ctx context.Context) error {
			res, err := builder.Build(ctx)
			if err != nil {
				return err
			}
			printer.Success("Rebuilt %d posts in %s", res.Posts, res.Duration.Round(time.Millisecond))
			return nil
		})
	})
	g.Go(func() error {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	printer.Info("Serving %s at http://localhost%s (Ctrl+C to stop)", bc.OutputDir, addr)
	logger.Debug("watching", zap.Strings("dirs", watcher.WatchList()))

	return g.Wait()
}
