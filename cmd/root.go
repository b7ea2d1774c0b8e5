package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trilinos/status-table-cli/internal/input"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "trilinos-status <pr_status> <merged> <failed> <wip> <review_required> <mm_status> <change_requested> <review_approved> <waiting> <open> <master_merges> <jira_ticket>",
		Short: "Print the daily Trilinos PR and master-merge status as a markdown table",
		Long: `trilinos-status prints today's Trilinos status table in markdown so it can be
pasted into the wiki. It takes twelve positional values, builds GitHub search
links for each pull request count (snapshotted at 12pm) and renders a single
table row.

  pr_status, mm_status: 0 = success, 1 = warning, 2 = failure
  failed, waiting:      accepted for compatibility, not shown in the table

Examples:
  trilinos-status 0 4 6 4 72 0 4 7 8 9 10 435
  trilinos-status 1 3 1 22 21 0 5 5 21 58 1 504

  # Let GitHub fill in the counts
  trilinos-status collect --pr-status 0 --mm-status 0 --ticket 435`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.noTitle, "no-title", false, "Omit the table heading")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose progress output")
	cmd.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "Suppress all progress output")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err, hint: c.UsageString()}
	})

	cmd.AddCommand(newCollectCmd(opts))
	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func runRender(cmd *cobra.Command, opts *globalOptions, args []string) error {
	parsed, err := input.ParseArgs(args)
	if err != nil {
		return &usageError{err: err, hint: input.Usage}
	}

	cfg, err := loadConfig(opts, 0)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	logger.Debug("Parsed arguments",
		"pr_status", parsed.PRStatus.String(),
		"mm_status", parsed.MMStatus.String(),
		"jira_ticket", parsed.JiraTicket)

	dates, err := resolveDates(cfg, logger)
	if err != nil {
		return err
	}

	return writeTable(cmd.OutOrStdout(), parsed, dates, cfg, logger)
}
