package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ignite/jtbd-explorer/internal/config"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("object not found")

// Archive keeps raw uploaded survey files for later inspection.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Check verifies the backend is reachable.
	Check(ctx context.Context) error
}

// New builds the archive selected by cfg.Type: "s3", "local", or "none"
// (nil archive, uploads are not kept).
func New(ctx context.Context, cfg config.StorageConfig) (Archive, error) {
	switch cfg.Type {
	case "s3":
		return NewS3Archive(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.GetAWSProfile())
	case "local", "":
		return NewLocalArchive(cfg.LocalPath)
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

// UploadKey builds the archive key of an uploaded file.
func UploadKey(orgID, sessionID, filename string, at time.Time) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	return fmt.Sprintf("uploads/%s/%s/%s-%s", orgID, at.UTC().Format("2006/01/02"), sessionID, name)
}

// LocalArchive stores files under a root directory.
type LocalArchive struct {
	root string
}

// NewLocalArchive creates the root directory if needed.
func NewLocalArchive(root string) (*LocalArchive, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	return &LocalArchive{root: root}, nil
}

func (a *LocalArchive) path(key string) (string, error) {
	p := filepath.Join(a.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(a.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return p, nil
}

func (a *LocalArchive) Put(_ context.Context, key string, data []byte, _ string) error {
	p, err := a.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (a *LocalArchive) Get(_ context.Context, key string) ([]byte, error) {
	p, err := a.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (a *LocalArchive) Check(_ context.Context) error {
	info, err := os.Stat(a.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", a.root)
	}
	return nil
}
