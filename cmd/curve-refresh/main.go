// curve-refresh runs the treasury curve collector once and stores the
// result, in the same flag-driven shape as benritz-gilts'
// cmd/collect-data: an -profile flag for the AWS config, a positional
// destination argument that is either a local path or an s3:// URI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/pbnjay/grate/xls"

	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/curvefeed"
	"github.com/quillhorn/bondengine/internal/curvestore"
)

func getAwsConfig(ctx context.Context, profile string) (aws.Config, error) {
	if profile == "default" {
		return config.LoadDefaultConfig(ctx)
	}
	return config.LoadDefaultConfig(ctx, config.WithSharedConfigProfile(profile))
}

func storeToS3(ctx context.Context, snap *curve.Snapshot, profile string, dst *curvestore.S3Path) (string, error) {
	cfg, err := getAwsConfig(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return curvestore.StoreToS3(ctx, snap, client, dst)
}

func collect(ctx context.Context, date time.Time) (*curve.Snapshot, error) {
	collectors := []curvefeed.Collector{curvefeed.NewXLSCollector(), curvefeed.NewHTMLCollector()}

	var lastErr error
	for _, c := range collectors {
		collected, err := c.Collect(ctx, date)
		if err != nil {
			lastErr = err
			continue
		}
		return curve.NewSnapshot(collected.AsOf, collected.Points)
	}
	return nil, fmt.Errorf("curve-refresh: all collectors failed, last error: %w", lastErr)
}

func main() {
	ctx := context.Background()

	profile := flag.String("profile", "default", "the AWS profile to use")
	helpFlag := flag.Bool("help", false, "print this help message")
	flag.Parse()
	args := flag.Args()

	if len(args) != 1 || *helpFlag {
		fmt.Printf("Usage: %s <flags> <destination>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(1)
	}

	dst := args[0]

	snap, err := collect(ctx, time.Now())
	if err != nil {
		fmt.Printf("Failed to collect curve: %v\n", err)
		os.Exit(1)
	}

	var outPath string
	if s3Path, _ := curvestore.ParseS3(dst); s3Path != nil {
		outPath, err = storeToS3(ctx, snap, *profile, s3Path)
	} else {
		outPath, err = curvestore.StoreToPath(snap, dst)
	}
	if err != nil {
		fmt.Printf("Failed to store curve: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Stored curve snapshot to %s\n", outPath)
}
