package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/display"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/logger"
	"github.com/aquila-k/Multi-LLM-Agents-Orchestration/internal/taskindex"
)

// NewTasksCommand groups the task index operations
func NewTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Search and maintain the task index",
	}

	cmd.AddCommand(NewTasksValidateCommand())
	cmd.AddCommand(NewTasksSearchCommand())
	cmd.AddCommand(NewTasksEnrichCommand())
	cmd.AddCommand(NewTasksMigrateCommand())

	return cmd
}

// NewTasksValidateCommand creates the tasks validate command
func NewTasksValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate NAME",
		Short: "Check a task name against the naming rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := taskindex.ValidateName(args[0]); err != nil {
				return reportError(cmd, "TASK INDEX ERROR", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
		SilenceUsage: true,
	}
}

// NewTasksSearchCommand creates the tasks search command
func NewTasksSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Score index entries against a query",
		Long: `Search tokenizes the query, scores every index entry by token overlap
and prints the ranked matches as JSON.

Examples:
  agentctl tasks search "login timeout"
  agentctl tasks search refactor --index .tmp/task/task-index.json --limit 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			indexPath, _ := cmd.Flags().GetString("index")
			limit, _ := cmd.Flags().GetInt("limit")

			if err := runTasksSearch(log, indexPath, args[0], limit, cmd.OutOrStdout()); err != nil {
				return reportError(cmd, "TASK INDEX ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("index", taskindex.DefaultFile, "path to the task index file")
	cmd.Flags().Int("limit", 5, "maximum number of results")

	return cmd
}

func runTasksSearch(log logger.Logger, indexPath, query string, limit int, out io.Writer) error {
	ix, err := taskindex.LoadOrEmpty(indexPath)
	if err != nil {
		return err
	}
	report, err := ix.Search(query, limit)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("search matched %d of %d entries", len(report.Results), len(ix.Tasks)))
	return writeJSON(out, report)
}

// NewTasksEnrichCommand creates the tasks enrich command
func NewTasksEnrichCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich NAME",
		Short: "Merge search metadata into an index entry",
		Long: `Enrich merges a summary, requirement lines and scope lines into the
named index entry, creating the entry when absent. The index file is
rewritten atomically under its lock.

Examples:
  agentctl tasks enrich fix-login-timeout-bug --summary "Login times out after 30s" \
    --requirements "keep the session alive" --scope "auth middleware"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			indexPath, _ := cmd.Flags().GetString("index")
			summary, _ := cmd.Flags().GetString("summary")
			requirements, _ := cmd.Flags().GetStringArray("requirements")
			scope, _ := cmd.Flags().GetStringArray("scope")

			if err := runTasksEnrich(log, indexPath, args[0], summary, requirements, scope); err != nil {
				return reportError(cmd, "TASK INDEX ERROR", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("index", taskindex.DefaultFile, "path to the task index file")
	cmd.Flags().String("summary", "", "short description of the task")
	cmd.Flags().StringArray("requirements", nil, "requirement line to merge (repeatable)")
	cmd.Flags().StringArray("scope", nil, "scope line to merge (repeatable)")

	return cmd
}

func runTasksEnrich(log logger.Logger, indexPath, name, summary string, requirements, scope []string) error {
	err := taskindex.Update(indexPath, func(ix *taskindex.Index) error {
		return ix.Enrich(name, summary, requirements, scope)
	})
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("enriched %s in %s", name, indexPath))
	return nil
}

// NewTasksMigrateCommand creates the tasks migrate command
func NewTasksMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Sweep a tasks directory for entries missing from the index",
		Long: `Migrate scans <tasks-dir>/<task-name>/task.yaml files and reports how
each relates to the index. Without --apply the sweep is read-only;
with --apply every pending task is added to the index.

Examples:
  agentctl tasks migrate --tasks-dir .tmp/task
  agentctl tasks migrate --tasks-dir .tmp/task --apply`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := newRunLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			tasksDir, _ := cmd.Flags().GetString("tasks-dir")
			indexPath, _ := cmd.Flags().GetString("index")
			apply, _ := cmd.Flags().GetBool("apply")

			out := cmd.OutOrStdout()
			if err := runTasksMigrate(log, tasksDir, indexPath, apply, display.ShouldColor(out), out); err != nil {
				return reportError(cmd, "TASK INDEX ERROR", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("tasks-dir", "", "directory holding one subdirectory per task")
	cmd.Flags().String("index", taskindex.DefaultFile, "path to the task index file")
	cmd.Flags().Bool("apply", false, "add pending tasks to the index")
	cmd.MarkFlagRequired("tasks-dir")

	return cmd
}

func runTasksMigrate(log logger.Logger, tasksDir, indexPath string, apply, useColor bool, out io.Writer) error {
	ix, err := taskindex.LoadOrEmpty(indexPath)
	if err != nil {
		return err
	}
	report, err := taskindex.ScanTasks(tasksDir, ix)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("scanned %d task directories under %s", len(report.Entries), report.TasksDir))

	display.MigrationListing(out, report, indexPath, useColor)
	if !apply {
		if len(report.Pending()) > 0 {
			display.ApplyHint(out)
		}
		return nil
	}

	added, err := report.Apply(indexPath)
	if err != nil {
		return err
	}
	display.ApplySummary(out, added, indexPath, useColor)
	return nil
}
