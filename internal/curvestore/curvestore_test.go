package curvestore

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhorn/bondengine/internal/curve"
)

func testSnapshot(t *testing.T) *curve.Snapshot {
	t.Helper()
	snap, err := curve.NewSnapshot(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), []curve.Point{
		{TenorYears: 1, ParYield: 0.045},
		{TenorYears: 10, ParYield: 0.042},
	})
	require.NoError(t, err)
	return snap
}

func readRecords(t *testing.T, path string) []pointRecord {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[pointRecord](file)
	defer reader.Close()

	var out []pointRecord
	buf := make([]pointRecord, 8)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if n == 0 {
			break
		}
	}
	return out
}

func TestStoreToPath_RoundTrip(t *testing.T) {
	snap := testSnapshot(t)
	basepath := t.TempDir()

	outPath, err := StoreToPath(snap, basepath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(basepath, "2025", "06", "30", "treasury-curve.parquet"), outPath)

	records := readRecords(t, outPath)
	require.Len(t, records, 2)
	assert.Equal(t, 1.0, records[0].TenorYears)
	assert.InDelta(t, 0.045, records[0].ParYield, 1e-12)
	assert.Equal(t, 10.0, records[1].TenorYears)
	assert.True(t, records[0].AsOf.Equal(snap.AsOf))
}

func TestParseS3(t *testing.T) {
	p, err := ParseS3("s3://my-bucket/curves/treasury")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", p.Bucket)
	assert.Equal(t, "curves/treasury", p.Prefix)

	p, err = ParseS3("s3://my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", p.Bucket)
	assert.Equal(t, "", p.Prefix)

	_, err = ParseS3("not-s3://my-bucket")
	assert.Error(t, err)
}

func TestDatedKey(t *testing.T) {
	date := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025/01/05/treasury-curve.parquet", datedKey(date, "/"))
}

// TestStoreToS3_BuildsExpectedKey exercises the key-building side of
// StoreToS3 without a real S3 client: ParseS3 plus datedKey together
// produce the same key StoreToS3 would pass to PutObject.
func TestStoreToS3_BuildsExpectedKey(t *testing.T) {
	dst, err := ParseS3("s3://treasury-curves/archive")
	require.NoError(t, err)

	snap := testSnapshot(t)
	key := datedKey(snap.AsOf, "/")
	if dst.Prefix != "" {
		key = dst.Prefix + "/" + key
	}
	assert.Equal(t, "archive/2025/06/30/treasury-curve.parquet", key)
}
