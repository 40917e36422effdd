// Command resetbucket deletes and recreates the configured InfluxDB bucket.
// Useful after field type conflicts, which InfluxDB cannot resolve in place.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rlanders/weatherview/internal/config"
	"github.com/rlanders/weatherview/internal/observability"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	_ = godotenv.Load()
	cfg := config.InfluxConfig{
		URL:    strings.TrimSpace(os.Getenv("INFLUXDB_URL")),
		Token:  strings.TrimSpace(os.Getenv("INFLUXDB_TOKEN")),
		Org:    strings.TrimSpace(os.Getenv("INFLUXDB_ORG")),
		Bucket: strings.TrimSpace(os.Getenv("INFLUXDB_BUCKET")),
	}
	if err := ensureConfigured(cfg); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	logger.Info("resetting bucket",
		zap.String("url", cfg.URL),
		zap.String("org", cfg.Org),
		zap.String("bucket", cfg.Bucket))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	defer client.Close()

	if err := resetBucket(ctx, client, cfg.Org, cfg.Bucket, logger); err != nil {
		logger.Fatal("reset bucket", zap.Error(err))
	}
	logger.Info("bucket reset complete", zap.String("bucket", cfg.Bucket))
}

// ensureConfigured refuses to run against a partial or missing connection
// group; a reset against the wrong deployment is unrecoverable.
func ensureConfigured(cfg config.InfluxConfig) error {
	if !cfg.Enabled() {
		return fmt.Errorf("INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG, and INFLUXDB_BUCKET must all be set")
	}
	return nil
}

// resetBucket drops the named bucket and recreates it under the same org
// with the same retention rules.
func resetBucket(ctx context.Context, client influxdb2.Client, orgName, bucketName string, logger *zap.Logger) error {
	org, err := client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		return fmt.Errorf("find organization %q: %w", orgName, err)
	}

	bucketsAPI := client.BucketsAPI()
	old, err := bucketsAPI.FindBucketByName(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("find bucket %q: %w", bucketName, err)
	}

	if err := bucketsAPI.DeleteBucket(ctx, old); err != nil {
		return fmt.Errorf("delete bucket %q: %w", bucketName, err)
	}
	logger.Info("bucket deleted", zap.String("bucket", bucketName))

	if _, err := bucketsAPI.CreateBucketWithName(ctx, org, bucketName, old.RetentionRules...); err != nil {
		return fmt.Errorf("recreate bucket %q: %w", bucketName, err)
	}
	return nil
}
