// Package cmd contains the blog CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pixegami/blog/internal/config"
	"github.com/pixegami/blog/internal/logging"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Build, preview and deploy the blog",
	Long: `blog turns a directory of Markdown posts into a paginated static site.

Example usage:
  blog build                   # Render content/ into public/
  blog serve                   # Build, serve on :8000 and rebuild on change
  blog list                    # Show posts in publication order
  blog new "My Post"           # Scaffold content/posts/my-post/index.md
  blog synth                   # Write the hosting stack template to cdk.out/`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./blog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format, verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	logger.Debug("configuration loaded",
		zap.String("content_dir", cfg.Build.ContentDir),
		zap.String("output_dir", cfg.Build.OutputDir),
		zap.Int("posts_per_page", cfg.Build.PostsPerPage),
	)
	return nil
}
