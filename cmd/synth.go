package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pixegami/blog/internal/output"
	"github.com/pixegami/blog/internal/stack"
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Write the hosting stack template",
	Long: `Synthesize the hosting stack described by the deploy section into a
CloudFormation template plus a manifest.json, for an external provisioning
engine to deploy.

With no hosting resources enabled the template is {"Resources": {}}.

Examples:
  blog synth                   # Write cdk.out/<stack>.template.json
  blog synth --format yaml     # Write YAML instead
  blog synth --out build/cdk   # Write somewhere else`,
	Args: cobra.NoArgs,
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().String("format", "json", "template format (json or yaml)")
	synthCmd.Flags().String("out", "", "output directory (overrides deploy.out_dir)")
}

func runSynth(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := stack.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	dir := cfg.Deploy.OutDir
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		dir = out
	}

	s := stack.FromConfig(cfg.Deploy)
	path, err := s.Write(dir, format)
	if err != nil {
		return err
	}

	logger.Debug("stack synthesized",
		zap.String("stack", s.Name),
		zap.String("environment", s.Environment()),
		zap.Int("resources", len(s.Resources)))

	output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr()).
		Success("Synthesized %s (%d resources) to %s", s.Name, len(s.Resources), path)
	return nil
}
