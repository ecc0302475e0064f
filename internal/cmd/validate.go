package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/config"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
)

// NewValidateCommand creates the validate command for the split v1 config
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the split v1 config and optional manifest",
		Long: `Validate loads every servant and pipeline file under the config root,
checks enum values and cross-references, and validates the manifest
routing block when a manifest is given.

Prints OK on success, or the allowed-values catalog as JSON with
--print-choices.

Examples:
  agentctl validate --config-root configs
  agentctl validate --config-root configs --manifest .tmp/task/fix-login/manifest.yaml
  agentctl validate --config-root configs --print-choices`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			manifestPath, _ := cmd.Flags().GetString("manifest")
			printChoices, _ := cmd.Flags().GetBool("print-choices")

			if err := runValidate(log, configRoot, manifestPath, printChoices, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "CONFIG VALIDATION ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs directory containing servant/ and pipeline/")
	cmd.Flags().String("manifest", "", "optional path to a task manifest.yaml")
	cmd.Flags().Bool("print-choices", false, "print allowed enum choices and models as JSON")
	cmd.MarkFlagRequired("config-root")

	return cmd
}

func runValidate(log logger.Logger, configRoot, manifestPath string, printChoices bool, out io.Writer) error {
	sch := config.DefaultSchema()
	cfg, err := config.Load(sch, configRoot)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("validated v1 config at %s", configRoot))

	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	if _, err := config.NormalizeManifest(sch, cfg, manifest, manifestPath); err != nil {
		return err
	}

	if printChoices {
		return writeJSON(out, config.BuildChoices(sch, cfg))
	}
	fmt.Fprintln(out, "OK")
	return nil
}
