package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/config"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/snapshot"
)

// NewSnapshotCommand creates the v1 snapshot command
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the read-only v1 config snapshot files",
		Long: `Snapshot validates the split v1 config and writes ` + snapshot.V1YAMLFile + `
and ` + snapshot.V1MarkdownFile + ` into the output directory, replacing any
stale legacy snapshots. The files are mirrors for humans; the split
YAML files stay the source of truth.

Examples:
  agentctl snapshot --config-root configs
  agentctl snapshot --config-root configs --output-dir docs/state`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			configRoot, _ := cmd.Flags().GetString("config-root")
			outputDir, _ := cmd.Flags().GetString("output-dir")

			if err := runSnapshot(log, configRoot, outputDir); err != nil {
				return reportError(cmd, "CONFIG SNAPSHOT ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config-root", "", "path to the configs directory containing servant/ and pipeline/")
	cmd.Flags().String("output-dir", "", "directory for the snapshot files (default: the config root)")
	cmd.MarkFlagRequired("config-root")

	return cmd
}

func runSnapshot(log logger.Logger, configRoot, outputDir string) error {
	sch := config.DefaultSchema()
	cfg, err := config.Load(sch, configRoot)
	if err != nil {
		return err
	}

	if outputDir == "" {
		outputDir = configRoot
	}
	if err := snapshot.WriteV1(sch, cfg, outputDir); err != nil {
		return err
	}
	log.LogInfo(fmt.Sprintf("wrote %s and %s under %s", snapshot.V1YAMLFile, snapshot.V1MarkdownFile, outputDir))
	return nil
}
