package cmd

import (
	"context"
	"fmt"

	"postcard-sync/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile card command
	reconcileAll bool
)

// reconcileCmd is the parent command for pull cycles.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Pull records from the remote service",
	Long: `Fetch remote documents and merge them into local records.
Fields, photo lists and assets are applied in one transaction per record.`,
}

// cardReconcileCmd pulls one card or every card.
var cardReconcileCmd = &cobra.Command{
	Use:   "card [uuid]",
	Short: "Pull a card (or all cards) from the remote service",
	Long: `Pull a card from the remote service and report what changed.

Examples:
  # Pull one card
  reconcile card 3f0c9e56-1b7f-4d6e-9a51-7e0f3c2a9b10

  # Pull every local card; failures do not stop the batch
  reconcile card --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if reconcileAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runCardReconcile,
}

// pushCmd is the parent command for push cycles.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish local records to the remote service",
}

var cardPushCmd = &cobra.Command{
	Use:   "card <uuid>",
	Short: "Publish a card to the remote service",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardPush,
}

func init() {
	cardReconcileCmd.Flags().BoolVar(&reconcileAll, "all", false, "Pull every local card")
	reconcileCmd.AddCommand(cardReconcileCmd)
	pushCmd.AddCommand(cardPushCmd)

	RootCmd.AddCommand(reconcileCmd)
	RootCmd.AddCommand(pushCmd)
}

func runCardReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(nil)
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	if !reconcileAll {
		res, err := d.service.Pull(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to pull %s: %w", args[0], err)
		}
		printResult(d.logger, res)
		return nil
	}

	d.logger.Info("Pulling all cards")
	outcomes, err := d.service.PullAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull cards: %w", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			d.logger.Warn("Card pull failed",
				zap.String("uuid", o.UUID),
				zap.String("outcome", reconcile.Outcome(o.Err)),
				zap.Error(o.Err),
			)
			continue
		}
		printResult(d.logger, o.Result)
	}

	d.logger.Info("Pull finished", zap.Int("cards", len(outcomes)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d cards failed to pull", failed, len(outcomes))
	}
	return nil
}

func runCardPush(cmd *cobra.Command, args []string) error {
	d, err := buildDeps(nil)
	if err != nil {
		return err
	}
	defer d.logger.Sync()

	res, err := d.service.Push(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to push %s: %w", args[0], err)
	}
	printResult(d.logger, res)
	return nil
}

// printResult prints a cycle result using logger.
func printResult(l *zap.Logger, res *reconcile.Result) {
	fields := []zap.Field{
		zap.String("uuid", res.UUID),
		zap.String("direction", res.Direction),
		zap.Strings("applied", res.Applied),
		zap.Int("conflicts", len(res.Conflicts)),
		zap.Int("field_errors", len(res.FieldErrors)),
	}
	if res.Children != nil {
		fields = append(fields,
			zap.Int("photos", res.Children.Total),
			zap.Int("photos_inserted", res.Children.Inserted),
			zap.Int("photos_deleted", res.Children.Deleted),
			zap.Int("photos_reordered", res.Children.Reordered),
		)
	}
	l.Info("Sync report", fields...)

	for _, c := range res.Conflicts {
		l.Warn("Conflicting field",
			zap.String("field", c.Field),
			zap.Any("local", c.Local),
			zap.Any("remote", c.Remote),
			zap.Bool("kept_local", c.Kept),
		)
	}
	for _, fe := range res.FieldErrors {
		l.Warn("Skipped field", zap.String("key", fe.Key), zap.Error(fe))
	}
}
