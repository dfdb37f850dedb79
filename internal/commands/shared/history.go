package shared

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tombee/flowkit/internal/config"
	"github.com/tombee/flowkit/internal/history"
)

// OpenHistory opens the push history in the config dir.
func OpenHistory(ctx context.Context) (*history.Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return history.Open(ctx, filepath.Join(dir, history.FileName))
}
