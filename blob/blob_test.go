package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilesystemBlobStore(t *testing.T) *FilesystemBlobStore {
	t.Helper()
	store, err := NewFilesystemBlobStore(filepath.Join(t.TempDir(), "diagrams"))
	require.NoError(t, err)
	return store
}

func TestFilesystemBlobStore_RoundTrip(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	ctx := context.Background()
	diagram := []byte("@startuml\nstart\nstop\n@enduml\n")

	url, err := store.Put(ctx, diagram, "text/plain", "flow.puml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "flow.puml"))

	got, err := store.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, diagram, got)

	_, err = os.Stat(strings.TrimPrefix(url, "file://") + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file left behind")
}

func TestFilesystemBlobStore_StripsDirectories(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	url, err := store.Put(context.Background(), []byte("x"), "text/plain", "../../escape.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.dir, "escape.md"), strings.TrimPrefix(url, "file://"))
}

func TestFilesystemBlobStore_GeneratedName(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	url, err := store.Put(context.Background(), []byte{}, "text/plain", "")
	require.NoError(t, err)
	assert.Contains(t, url, "diagram-")
}

func TestFilesystemBlobStore_GetRejects(t *testing.T) {
	store := newTestFilesystemBlobStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "s3://bucket/key")
	assert.Error(t, err)

	_, err = store.Get(ctx, "file:///etc/passwd")
	assert.Error(t, err)

	_, err = store.Get(ctx, "file://"+filepath.Join(store.dir, "missing.md"))
	assert.Error(t, err)
}

func TestNewDefaultBlobStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "out")

	store, err := NewDefaultBlobStore(ctx, &BlobConfig{Directory: dir})
	require.NoError(t, err)
	assert.IsType(t, &FilesystemBlobStore{}, store)

	_, err = NewDefaultBlobStore(ctx, &BlobConfig{Driver: "s3"})
	assert.Error(t, err)

	_, err = NewDefaultBlobStore(ctx, &BlobConfig{Driver: "ftp"})
	assert.Error(t, err)
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://diagrams/renders/flow.md")
	require.NoError(t, err)
	assert.Equal(t, "diagrams", bucket)
	assert.Equal(t, "renders/flow.md", key)

	for _, bad := range []string{"file:///x", "s3://", "s3://bucket", "s3://bucket/"} {
		_, _, err := parseS3URL(bad)
		assert.Error(t, err, bad)
	}
}

func TestS3BlobStore_RoundTrip(t *testing.T) {
	bucket := os.Getenv("S3_TEST_BUCKET")
	region := os.Getenv("S3_TEST_REGION")
	if bucket == "" || region == "" {
		t.Skip("S3_TEST_BUCKET or S3_TEST_REGION not set")
	}
	ctx := context.Background()
	store, err := NewS3BlobStore(ctx, bucket, region)
	require.NoError(t, err)

	url, err := store.Put(ctx, []byte("# flow\n"), "text/markdown", "flowviz-test.md")
	require.NoError(t, err)
	got, err := store.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "# flow\n", string(got))
}

func TestNewS3BlobStore_RequiresBucketAndRegion(t *testing.T) {
	_, err := NewS3BlobStore(context.Background(), "", "us-east-1")
	assert.Error(t, err)
}
