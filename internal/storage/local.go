package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// URLPrefix is the public path uploads are served under.
const URLPrefix = "/uploads/"

// LocalStore keeps uploaded photos on the local filesystem. Files are
// named <unix-millis>-<original-name> so repeated uploads of the same
// file never collide.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the uploaded file to disk and returns its public URL.
func (s *LocalStore) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(s.dir, name)); err != nil {
		return "", err
	}
	return URLPrefix + name, nil
}

// Remove deletes the backing file for a previously saved URL.
func (s *LocalStore) Remove(imageURL string) error {
	name := filepath.Base(strings.TrimPrefix(imageURL, URLPrefix))
	return os.Remove(filepath.Join(s.dir, name))
}
