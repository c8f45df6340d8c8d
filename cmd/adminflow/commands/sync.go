package commands

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/adminflow/adminflow-api/internal/core/domain"
)

var syncDirectory string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass and exit",
	Long: `Reconcile the external directories against the member list once and
print the result as JSON. Intended for cron jobs.

Examples:
  # Reconcile every directory
  adminflow sync

  # Reconcile only Slack
  adminflow sync --directory slack`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncDirectory, "directory", "d", "", "Directory to reconcile (default: all)")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		results []domain.ReconciliationResult
		syncErr error
	)
	if syncDirectory != "" {
		res, err := a.sync.Sync(ctx, syncDirectory)
		if res != nil {
			results = append(results, *res)
		}
		syncErr = err
	} else {
		results, syncErr = a.sync.SyncAll(ctx)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return errors.Join(syncErr, err)
	}
	return syncErr
}
