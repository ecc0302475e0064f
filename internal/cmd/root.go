package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ErrReported marks a failure the command has already written to stderr
// in its single-line contract form. main exits non-zero without
// printing a second message.
var ErrReported = errors.New("error already reported")

// NewRootCommand creates and returns the root cobra command for agentctl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentctl",
		Short: "Configuration engine for the servant orchestration toolbox",
		Long: `Agentctl validates and resolves the YAML configuration that drives
the servant orchestration shell scripts.

It loads the split v1 config (servants plus pipelines) and the v2
phase config (skills plus policies), applies task manifest overrides,
and prints resolved execution plans as deterministic JSON for the
shell side to consume. Snapshot, task-index and prompt-audit helpers
round out the toolbox.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// Errors are printed once: either by the failing command in its
		// contract form, or by main for usage mistakes.
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "warn", "diagnostic log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "also append diagnostics to a run log under this directory")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewResolveCommand())
	cmd.AddCommand(NewSnapshotCommand())
	cmd.AddCommand(NewV2Command())
	cmd.AddCommand(NewTasksCommand())
	cmd.AddCommand(NewAuditCommand())

	return cmd
}

// reportError writes the single contract error line for a failed
// operation and returns ErrReported so main does not print again.
func reportError(cmd *cobra.Command, prefix string, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", prefix, err)
	return ErrReported
}

// newRunLogger assembles the diagnostic logger for one invocation from
// the persistent logging flags. Diagnostics go to stderr so stdout
// stays parseable; the returned closer flushes the run log when
// --log-dir is set.
func newRunLogger(cmd *cobra.Command) (logger.Logger, func(), error) {
	level, _ := cmd.Flags().GetString("log-level")
	logDir, _ := cmd.Flags().GetString("log-dir")

	console := logger.NewConsoleLogger(cmd.ErrOrStderr(), level)
	if logDir == "" {
		return console, func() {}, nil
	}

	fileLog, err := logger.NewFileLogger(logDir, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run log: %w", err)
	}
	return logger.NewMultiLogger(console, fileLog), func() { fileLog.Close() }, nil
}

// writeJSON prints v as the two-space indented JSON document the shell
// collaborators parse, followed by a newline.
func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}
