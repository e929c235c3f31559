package cmd

import (
	"context"
	"fmt"

	"postcard-sync/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that cards, photos and stored media agree",
	Long: `Checks that the media bucket exists, that the card tables carry every synced column
and that every photo has stored content. With --fix the bucket is created and orphaned objects are removed.`,
	Args: cobra.NoArgs,
	RunE: runIntegrityChecks,
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and remove orphaned media")
	RootCmd.AddCommand(integrityCmd)
}

func runIntegrityChecks(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d, err := buildDeps(nil)
	if err != nil {
		return err
	}
	defer d.logger.Sync()
	l := d.logger
	svc := integrity.NewService(d.integrityDeps())

	exists, err := svc.CheckStorage(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if !fixFlag {
			l.Warn("Media bucket missing", zap.String("bucket", d.cfg.Storage.Bucket))
			return fmt.Errorf("bucket %s does not exist", d.cfg.Storage.Bucket)
		}
		if err := svc.FixStorage(ctx); err != nil {
			return err
		}
		l.Info("Created media bucket", zap.String("bucket", d.cfg.Storage.Bucket))
	}

	missing, err := svc.CheckSchema()
	if err != nil {
		return err
	}
	for table, cols := range missing {
		l.Warn("Missing columns", zap.String("table", table), zap.Strings("columns", cols))
	}

	report, err := svc.CheckMedia(ctx)
	if err != nil {
		return err
	}
	l.Info("Media report",
		zap.Int("photos", report.Photos),
		zap.Int("stored", report.Stored),
		zap.Int("missing", len(report.Missing)),
		zap.Int("orphans", len(report.Orphans)),
	)
	for _, name := range report.Missing {
		l.Debug("Photo without content", zap.String("object", name))
	}

	if fixFlag && len(report.Orphans) > 0 {
		if _, err := svc.FixMedia(ctx, report); err != nil {
			return err
		}
	}
	return nil
}
