// curve-refresh Lambda handler: fetches the treasury curve and
// archives it to S3 on an EventBridge schedule, mirroring
// benritz-gilts' lambda/collect-data almost exactly. The SQS-shaped
// handler signature is retained for parity with that batch-item
// failure reporting, even though this function is scheduled rather
// than queue-triggered.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/pbnjay/grate/xls"

	"github.com/quillhorn/bondengine/internal/curve"
	"github.com/quillhorn/bondengine/internal/curvefeed"
	"github.com/quillhorn/bondengine/internal/curvestore"
)

var (
	envBucketName   = "BONDENGINE_CURVE_BUCKET_NAME"
	envBucketPrefix = "BONDENGINE_CURVE_BUCKET_PREFIX"
)

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

func refreshCurve(ctx context.Context) error {
	bucketName := os.Getenv(envBucketName)
	if bucketName == "" {
		return fmt.Errorf("%s is not set", envBucketName)
	}
	bucketPrefix := os.Getenv(envBucketPrefix)

	snap, err := collect(ctx, time.Now())
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	outPath, err := curvestore.StoreToS3(ctx, snap, client, &curvestore.S3Path{Bucket: bucketName, Prefix: bucketPrefix})
	if err != nil {
		return err
	}

	fmt.Printf("Stored curve snapshot to %s\n", outPath)
	return nil
}

func responseWithFailure(rec events.SQSMessage) events.SQSEventResponse {
	return events.SQSEventResponse{
		BatchItemFailures: []events.SQSBatchItemFailure{{ItemIdentifier: rec.MessageId}},
	}
}

func handler(ctx context.Context, request events.SQSEvent) (events.SQSEventResponse, error) {
	if err := refreshCurve(ctx); err != nil {
		if len(request.Records) > 0 {
			return responseWithFailure(request.Records[0]), fmt.Errorf("failed to refresh curve: %w", err)
		}
		return events.SQSEventResponse{}, err
	}
	return events.SQSEventResponse{}, nil
}

func main() {
	lambda.Start(handler)
}
