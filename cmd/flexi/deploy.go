package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flexireact/flexi/internal/config"
	"github.com/flexireact/flexi/pkg/deploy"
)

func deployCmd() *cobra.Command {
	var (
		bucket    string
		prefix    string
		prune     bool
		skipBuild bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Publish the static export to S3",
		Long: `Upload the exported site to an S3 bucket.

Runs a static export first unless --skip-build is set, then uploads
every file in the output directory with a detected content type.
Credentials load from the environment the way the AWS CLI does.

With prune enabled, remote objects under the prefix that no longer
exist locally are deleted after all uploads succeed.

Examples:
  flexi deploy
  flexi deploy --bucket=my-site --prune
  flexi deploy --skip-build`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(bucket, prefix, prune, skipBuild)
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Target bucket (default from flexi.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix inside the bucket")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete remote objects with no local counterpart")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Upload the existing output directory without rebuilding")

	return cmd
}

func runDeploy(bucket, prefix string, prune, skipBuild bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if bucket != "" {
		cfg.Deploy.Bucket = bucket
	}
	if prefix != "" {
		cfg.Deploy.Prefix = prefix
	}
	if prune {
		cfg.Deploy.Prune = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	if !skipBuild {
		if err := runBuild(""); err != nil {
			return err
		}
	}

	fmt.Printf("  Publishing to s3://%s/%s\n", cfg.Deploy.Bucket, cfg.Deploy.Prefix)
	fmt.Println()

	publisher, err := deploy.NewFromProject(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := publisher.Publish(ctx, cfg.OutputPath())
	if err != nil {
		return err
	}

	success("Uploaded %d files (%s) in %s",
		result.Uploaded, formatBytes(result.Bytes), result.Duration.Round(1000000))
	if result.Deleted > 0 {
		info("Pruned %d stale objects", result.Deleted)
	}

	return nil
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
