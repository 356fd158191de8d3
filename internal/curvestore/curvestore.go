// Package curvestore persists treasury curve snapshots, using the same
// parquet-go writer and aws-sdk-go-v2 upload that benritz-gilts'
// internal/collect.go uses for gilt rows, generalized from writing
// []*types.Bond to writing the curve's (tenor, par yield) points plus
// an as-of timestamp. Unlike the gilt collector (one filename per
// scrape source), a curve snapshot always resolves to the single fixed
// treasury-curve.parquet name, so the local and S3 destinations share
// one dated-key builder instead of formatting the path twice.
package curvestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/parquet-go/parquet-go"

	"github.com/quillhorn/bondengine/internal/curve"
)

// pointRecord is the parquet row shape: one row per curve point plus
// the as-of date repeated, so a single flat file carries the whole
// snapshot without a nested schema.
type pointRecord struct {
	AsOf       time.Time `parquet:"as_of"`
	TenorYears float64   `parquet:"tenor_years"`
	ParYield   float64   `parquet:"par_yield"`
}

func toRecords(snap *curve.Snapshot) []pointRecord {
	records := make([]pointRecord, len(snap.Points))
	for i, p := range snap.Points {
		records[i] = pointRecord{AsOf: snap.AsOf, TenorYears: p.TenorYears, ParYield: p.ParYield}
	}
	return records
}

func writeSnapshot(snap *curve.Snapshot, out io.Writer) error {
	writer := parquet.NewGenericWriter[pointRecord](out)
	defer writer.Close()

	if _, err := writer.Write(toRecords(snap)); err != nil {
		return fmt.Errorf("curvestore: writing records: %w", err)
	}
	return nil
}

// datedKey builds the YYYY/MM/DD/treasury-curve.parquet path shared by
// both the local and S3 destinations, joined with sep, so the two
// storage backends below derive the same dated layout from one place
// rather than each formatting it independently.
func datedKey(date time.Time, sep string) string {
	return fmt.Sprintf("%04d%s%02d%s%02d%streasury-curve.parquet",
		date.UTC().Year(), sep, date.UTC().Month(), sep, date.UTC().Day(), sep)
}

// StoreToPath writes snap as a parquet file under
// basepath/YYYY/MM/DD/treasury-curve.parquet.
func StoreToPath(snap *curve.Snapshot, basepath string) (string, error) {
	outPath := filepath.Join(basepath, datedKey(snap.AsOf, string(filepath.Separator)))
	if err := os.MkdirAll(filepath.Dir(outPath), os.ModePerm); err != nil {
		return "", err
	}

	file, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := writeSnapshot(snap, file); err != nil {
		return "", err
	}
	return outPath, nil
}

// S3Path names an upload destination, mirroring collect.S3Path.
type S3Path struct {
	Bucket string
	Prefix string
}

// ParseS3 parses an "s3://bucket/prefix" path, mirroring
// collect.ParseS3.
func ParseS3(path string) (*S3Path, error) {
	if !strings.HasPrefix(path, "s3://") {
		return nil, fmt.Errorf("curvestore: path must start with s3://")
	}
	path = strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(path, "/", 2)

	prefix := ""
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}
	return &S3Path{Bucket: parts[0], Prefix: prefix}, nil
}

// StoreToS3 uploads snap as a parquet object, mirroring collect.StoreToS3's
// temp-file-then-PutObject flow.
func StoreToS3(ctx context.Context, snap *curve.Snapshot, client *s3.Client, dst *S3Path) (string, error) {
	tmp, err := os.CreateTemp("", "treasury-curve-*.parquet")
	if err != nil {
		return "", fmt.Errorf("curvestore: creating temp file: %w", err)
	}
	defer tmp.Close()
	defer os.Remove(tmp.Name())

	if err := writeSnapshot(snap, tmp); err != nil {
		return "", err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return "", fmt.Errorf("curvestore: seeking to start of file: %w", err)
	}

	key := datedKey(snap.AsOf, "/")
	if dst.Prefix != "" {
		key = dst.Prefix + "/" + key
	}

	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(dst.Bucket),
		Key:    aws.String(key),
		Body:   tmp,
	}); err != nil {
		return "", fmt.Errorf("curvestore: uploading to s3://%s/%s: %w", dst.Bucket, key, err)
	}

	return fmt.Sprintf("s3://%s/%s", dst.Bucket, key), nil
}
