package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Local struct {
	BaseDir   string
	URLPrefix string
}

func NewLocal(baseDir, urlPrefix string) *Local {
	return &Local{BaseDir: baseDir, URLPrefix: urlPrefix}
}

func (l *Local) PutPNG(ctx context.Context, name string, png []byte) (string, error) {
	_ = ctx

	if err := os.MkdirAll(l.BaseDir, 0o755); err != nil {
		return "", err
	}

	key := safeKey(name)
	if err := os.WriteFile(filepath.Join(l.BaseDir, key), png, 0o644); err != nil {
		return "", err
	}
	return strings.TrimRight(l.URLPrefix, "/") + "/" + key, nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	_ = ctx
	return os.Remove(filepath.Join(l.BaseDir, safeKey(name)))
}

func safeKey(name string) string {
	key := filepath.Base(strings.TrimSpace(name))
	if !strings.HasSuffix(key, ".png") {
		key += ".png"
	}
	return key
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.BaseDir) }
