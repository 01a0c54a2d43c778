package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pixegami/blog/internal/output"
	"github.com/pixegami/blog/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site into the output directory",
	Long: `Render every post, the paginated post listing, the 404 page and, when
site.base_url is set, rss.xml and sitemap.xml.

The output directory is removed and recreated on every build.

Examples:
  blog build                   # Build into public/
  blog build -o dist           # Build into dist/`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "", "output directory (overrides build.output_dir)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Build.OutputDir = out
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	printer := output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	res, err := site.NewBuilder(cfg, logger).Build(cmd.Context())
	if err != nil {
		printer.Error("Build failed")
		return err
	}

	printer.Success("Built %d posts on %d pages into %s in %s",
		res.Posts, res.ListPages, cfg.Build.OutputDir, res.Duration.Round(time.Millisecond))
	printer.Print("  files:   %d", len(res.Files))
	printer.Print("  static:  %d", res.StaticFiles)
	printer.Print("  assets:  %d (%d resized)", res.Assets, res.ResizedImages)
	return nil
}
