package cmd

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pixegami/blog/internal/content"
	"github.com/pixegami/blog/internal/output"
	"github.com/pixegami/blog/internal/paginate"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts in publication order",
	Long: `List every post newest first, with the list page it lands on.

Examples:
  blog list                    # Table output
  blog list --json             # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// postEntry is one row of list output.
type postEntry struct {
	Date  string `json:"date"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Page  string `json:"page"`
	Words int    `json:"words"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "output as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	idx, err := content.NewLoader(logger).Load(cmd.Context(), cfg.Build.ContentDir)
	if err != nil {
		return err
	}

	entries := make([]postEntry, 0, idx.Len())
	for i, post := range idx.All() {
		entries = append(entries, postEntry{
			Date:  post.DisplayDate(),
			Slug:  post.Slug,
			Title: post.Title,
			Page:  paginate.PagePath(i/cfg.Build.PostsPerPage + 1),
			Words: post.WordCount,
		})
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).Info("No posts in %s", cfg.Build.ContentDir)
		return nil
	}

	table := output.NewTable(cmd.OutOrStdout(), []string{"Date", "Slug", "Title", "Page", "Words"})
	for _, e := range entries {
		table.AddRow([]string{e.Date, e.Slug, e.Title, e.Page, strconv.Itoa(e.Words)})
	}
	return table.Render()
}
