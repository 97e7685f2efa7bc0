package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/utils"
)

const fileScheme = "file://"

// FilesystemBlobStore writes diagrams into a local directory.
type FilesystemBlobStore struct {
	dir string
}

var _ BlobStore = (*FilesystemBlobStore)(nil)

// NewFilesystemBlobStore creates the directory if it does not exist.
func NewFilesystemBlobStore(dir string) (*FilesystemBlobStore, error) {
	if err := os.MkdirAll(dir, constants.DirPermission); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &FilesystemBlobStore{dir: abs}, nil
}

// Put stores the blob as a file in the directory. Returns a file:// URL.
// Only the base name of filename is used.
func (f *FilesystemBlobStore) Put(ctx context.Context, data []byte, mime, filename string) (string, error) {
	filename = filepath.Base(filename)
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = fmt.Sprintf("diagram-%d", time.Now().UnixNano())
	}
	path := filepath.Join(f.dir, filename)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, constants.FilePermission); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", err
	}
	return fileScheme + path, nil
}

// Get reads a blob back from its file:// URL. Paths outside the store's
// directory are rejected.
func (f *FilesystemBlobStore) Get(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, fileScheme) {
		return nil, utils.Errorf("invalid file URL: %s", url)
	}
	path := filepath.Clean(strings.TrimPrefix(url, fileScheme))
	if filepath.Dir(path) != f.dir {
		return nil, utils.Errorf("file URL outside blob directory: %s", url)
	}
	return os.ReadFile(path)
}
