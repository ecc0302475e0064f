package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/config"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/display"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/promptaudit"
)

// NewAuditCommand creates the prompt profile audit command
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit prompt profile templates against the v1 config",
		Long: `Audit checks that every pipeline profile has its prompt templates under
<prompts-root>/profiles/<pipeline>/<profile>/<tool>/<role>.md and
reports fallbacks, unknown profile directories and unused templates.

A template missing from the profile tree may fall back to the shared
default at <prompts-root>/<tool>/<role>.md when --allow-default-fallback
is given; otherwise it counts as missing and the audit fails.

Examples:
  agentctl audit --config-root configs
  agentctl audit --config-root configs --prompts-root prompts-src --allow-default-fallback
  agentctl audit --config-root configs --pipeline review`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			promptsRoot, _ := cmd.Flags().GetString("prompts-root")
			pipeline, _ := cmd.Flags().GetString("pipeline")
			allowFallback, _ := cmd.Flags().GetBool("allow-default-fallback")

			report, err := runAudit(log, configRoot, promptsRoot, pipeline, allowFallback)
			if err != nil {
				return reportError(cmd, "PROMPT PROFILE AUDIT ERROR", err)
			}

			out := cmd.OutOrStdout()
			display.AuditTable(out, report, display.ShouldColor(out))
			if report.MissingCount > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "PROMPT PROFILE AUDIT: FAILED (%d missing)\n", report.MissingCount)
				return ErrReported
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs directory containing servant/ and pipeline/")
	cmd.Flags().String("prompts-root", "prompts-src", "path to the prompt template root")
	cmd.Flags().String("pipeline", "", "audit a single pipeline instead of all three")
	cmd.Flags().Bool("allow-default-fallback", false, "let shared default templates stand in for missing profile files")
	cmd.MarkFlagRequired("config-root")

	return cmd
}

func runAudit(log logger.Logger, configRoot, promptsRoot, pipeline string, allowFallback bool) (*promptaudit.Report, error) {
	sch := config.DefaultSchema()
	cfg, err := config.Load(sch, configRoot)
	if err != nil {
		return nil, err
	}

	if pipeline != "" {
		known := false
		for _, name := range sch.PipelineNames {
			if name == pipeline {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown pipeline '%s'", pipeline)
		}
	}

	report := promptaudit.Run(sch, cfg, promptaudit.Options{
		PromptsRoot:          promptsRoot,
		Pipeline:             pipeline,
		AllowDefaultFallback: allowFallback,
	})
	log.LogDebug(fmt.Sprintf("audited %d required templates under %s", len(report.Templates), report.PromptsRoot))
	return report, nil
}
