package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pixegami/blog/internal/content"
	"github.com/pixegami/blog/internal/output"
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Scaffold a new post",
	Long: `Create content/posts/<slug>/index.md with title, subtitle and today's date
in its front-matter. Existing posts are never overwritten.

Examples:
  blog new "Hello World"
  blog new "Hello World" --subtitle "a first post"`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringP("subtitle", "s", "", "post subtitle")
	newCmd.Flags().String("date", "", "publication date as YYYY-MM-DD (default today)")
}

func runNew(cmd *cobra.Command, args []string) error {
	subtitle, _ := cmd.Flags().GetString("subtitle")
	dateFlag, _ := cmd.Flags().GetString("date")

	date := time.Now()
	if dateFlag != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateFlag)
		if err != nil {
			return err
		}
	}

	path, err := content.NewPost(cfg.Build.ContentDir, args[0], subtitle, date)
	if err != nil {
		return err
	}
	output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).Success("Created %s", path)
	return nil
}
