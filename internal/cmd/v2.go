package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/configv2"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/snapshot"
)

// NewV2Command groups the phase config operations
func NewV2Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "v2",
		Short: "Validate, resolve and snapshot the phase config",
	}

	cmd.AddCommand(NewV2ValidateCommand())
	cmd.AddCommand(NewV2ResolveCommand())
	cmd.AddCommand(NewV2SnapshotCommand())

	return cmd
}

// NewV2ValidateCommand creates the v2 validate command
func NewV2ValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configs-v2 tree and optional manifest",
		Long: `Validate loads every skill, servant and policy file under the v2 config
root, checks enum values and cross-references, and validates the
manifest config_v2 block when a manifest is given.

Prints OK on success, or the allowed-values catalog as JSON with
--print-choices.`,
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

			if err := runValidateV2(log, configRoot, manifestPath, printChoices, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "CONFIG V2 VALIDATION ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs-v2 directory")
	cmd.Flags().String("manifest", "", "optional path to a task manifest with config_v2 overrides")
	cmd.Flags().Bool("print-choices", false, "print allowed enum choices and models as JSON")
	cmd.MarkFlagRequired("config-root")

	return cmd
}

func runValidateV2(log logger.Logger, configRoot, manifestPath string, printChoices bool, out io.Writer) error {
	sch := configv2.DefaultSchema()
	cfg, err := configv2.Load(sch, configRoot)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("validated v2 config at %s", configRoot))

	manifest, err := configv2.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	if _, err := configv2.NormalizeManifest(sch, cfg, manifest, manifestPath); err != nil {
		return err
	}

	if printChoices {
		return writeJSON(out, configv2.BuildChoices(sch, cfg))
	}
	fmt.Fprintln(out, "OK")
	return nil
}

// NewV2ResolveCommand creates the v2 resolve command
func NewV2ResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve effective phase configuration",
		Long: `Resolve selects the method for a phase, applies manifest and runtime
overrides in precedence order, and prints the resolved steps with
their tools, models and modes as JSON.

Examples:
  agentctl v2 resolve --config-root configs-v2 --phase impl
  agentctl v2 resolve --config-root configs-v2 --phase plan --method-id quick_plan
  agentctl v2 resolve --config-root configs-v2 --phase review --step-id codex_review`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			phase, _ := cmd.Flags().GetString("phase")
			methodID, _ := cmd.Flags().GetString("method-id")
			stepID, _ := cmd.Flags().GetString("step-id")
			manifestPath, _ := cmd.Flags().GetString("manifest")

			if err := runResolveV2(log, configRoot, manifestPath, phase, methodID, stepID, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "CONFIG V2 RESOLVE ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs-v2 directory")
	cmd.Flags().String("phase", "", "phase to resolve: plan, impl or review")
	cmd.Flags().String("method-id", "", "explicit method override")
	cmd.Flags().String("step-id", "", "restrict output to a single step of the resolved method")
	cmd.Flags().String("manifest", "", "optional task manifest containing config_v2 overrides")
	cmd.MarkFlagRequired("config-root")
	cmd.MarkFlagRequired("phase")

	return cmd
}

func runResolveV2(log logger.Logger, configRoot, manifestPath, phase, methodID, stepID string, out io.Writer) error {
	sch := configv2.DefaultSchema()
	cfg, err := configv2.Load(sch, configRoot)
	if err != nil {
		return err
	}

	known := false
	for _, name := range sch.Phases {
		if name == phase {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown phase '%s'", phase)
	}

	overrides := configv2.EmptyOverrides(sch)
	if manifestPath != "" {
		manifest, err := configv2.LoadManifest(manifestPath)
		if err != nil {
			return err
		}
		overrides, err = configv2.NormalizeManifest(sch, cfg, manifest, manifestPath)
		if err != nil {
			return err
		}
	}

	resolution, err := configv2.Resolve(sch, cfg, overrides, phase, methodID, stepID)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("resolved phase %s with method %s", resolution.Phase, resolution.SelectedMethodID))
	return writeJSON(out, resolution)
}

// NewV2SnapshotCommand creates the v2 snapshot command
func NewV2SnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the configs-v2 Markdown snapshot",
		Long: `Snapshot validates the v2 config and prints a Markdown summary of the
skills, servants and policies to stdout. With --output the summary is
also written to a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			outputPath, _ := cmd.Flags().GetString("output")

			if err := runSnapshotV2(log, configRoot, outputPath, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "CONFIG V2 SNAPSHOT ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs-v2 directory")
	cmd.Flags().String("output", "", "optional file to write the snapshot to")
	cmd.MarkFlagRequired("config-root")

	return cmd
}

func runSnapshotV2(log logger.Logger, configRoot, outputPath string, out io.Writer) error {
	sch := configv2.DefaultSchema()
	cfg, err := configv2.Load(sch, configRoot)
	if err != nil {
		return err
	}

	content := snapshot.RenderV2(sch, cfg)
	if outputPath != "" {
		if err := snapshot.WriteV2(outputPath, content); err != nil {
			return err
		}
		log.LogInfo(fmt.Sprintf("wrote v2 snapshot to %s", outputPath))
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	_, err = io.WriteString(out, content)
	return err
}
