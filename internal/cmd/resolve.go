package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/config"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
)

// NewResolveCommand groups the v1 resolvers
func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve effective v1 runtime configuration",
	}

	cmd.AddCommand(NewResolveDispatchCommand())
	cmd.AddCommand(NewResolvePlanCommand())

	return cmd
}

// NewResolveDispatchCommand creates the resolve dispatch command
func NewResolveDispatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Resolve the dispatch plan for a task manifest",
		Long: `Dispatch merges the manifest routing block into the configured
pipelines and prints the resolved stage plan, model maps and wrapper
settings as JSON.

Examples:
  agentctl resolve dispatch --config-root configs --manifest .tmp/task/fix-login/manifest.yaml
  agentctl resolve dispatch --config-root configs --manifest manifest.yaml --plan-name review_cross`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			manifestPath, _ := cmd.Flags().GetString("manifest")
			planName, _ := cmd.Flags().GetString("plan-name")
			intentDefault, _ := cmd.Flags().GetString("intent-default")

			if err := runResolveDispatch(log, configRoot, manifestPath, planName, intentDefault, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "CONFIG RESOLVE ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs directory containing servant/ and pipeline/")
	cmd.Flags().String("manifest", "", "path to the task manifest.yaml")
	cmd.Flags().String("plan-name", "auto", "explicit pipeline profile, or auto to derive one from the manifest")
	cmd.Flags().String("intent-default", "safe_impl", "intent used when the manifest routing block has none")
	cmd.MarkFlagRequired("config-root")
	cmd.MarkFlagRequired("manifest")

	return cmd
}

func runResolveDispatch(log logger.Logger, configRoot, manifestPath, planName, intentDefault string, out io.Writer) error {
	sch := config.DefaultSchema()
	cfg, err := config.Load(sch, configRoot)
	if err != nil {
		return err
	}

	if manifestPath == "" {
		return errors.New("manifest is required for dispatch resolution")
	}
	manifest, err := config.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	overrides, err := config.NormalizeManifest(sch, cfg, manifest, manifestPath)
	if err != nil {
		return err
	}

	plan, err := config.ResolveDispatch(sch, cfg, overrides, planName, intentDefault)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("resolved dispatch for intent %s into %s/%s", plan.Intent, plan.PipelineGroup, plan.Profile))
	return writeJSON(out, plan)
}

// NewResolvePlanCommand creates the resolve plan command
func NewResolvePlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve the plan pipeline profile",
		Long: `Plan resolves the plan pipeline into its effective profile, applying an
optional profile override and per-servant model overrides, and prints
the result as JSON.

Examples:
  agentctl resolve plan --config-root configs
  agentctl resolve plan --config-root configs --profile quick --codex-model gpt-5-codex-mini`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			profile, _ := cmd.Flags().GetString("profile")
			copilotModel, _ := cmd.Flags().GetString("copilot-model")
			geminiModel, _ := cmd.Flags().GetString("gemini-model")
			codexModel, _ := cmd.Flags().GetString("codex-model")

			modelOverrides := map[string]string{
				"codex":   codexModel,
				"copilot": copilotModel,
				"gemini":  geminiModel,
			}
			if err := runResolvePlan(log, configRoot, profile, modelOverrides, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "CONFIG RESOLVE ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs directory containing servant/ and pipeline/")
	cmd.Flags().String("profile", "", "plan profile to use instead of the configured default")
	cmd.Flags().String("copilot-model", "", "model override for copilot")
	cmd.Flags().String("gemini-model", "", "model override for gemini")
	cmd.Flags().String("codex-model", "", "model override for codex")
	cmd.MarkFlagRequired("config-root")

	return cmd
}

func runResolvePlan(log logger.Logger, configRoot, profile string, modelOverrides map[string]string, out io.Writer) error {
	sch := config.DefaultSchema()
	cfg, err := config.Load(sch, configRoot)
	if err != nil {
		return err
	}

	plan, err := config.ResolvePlanPipeline(sch, cfg, profile, modelOverrides)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("resolved plan pipeline profile %s", plan.Profile))
	return writeJSON(out, plan)
}
