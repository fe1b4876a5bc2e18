package config

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"github.com/marmos91/notefs/pkg/content"
	contentFs "github.com/marmos91/notefs/pkg/content/fs"
	contentMemory "github.com/marmos91/notefs/pkg/content/memory"
)

// CreateContentStore creates a content store based on configuration.
//
// This factory uses the Type field to select the store implementation, then
// decodes the type-specific configuration from the corresponding map and
// passes it to the store's constructor.
//
// Supported types:
//   - "filesystem": pkg/content/fs (local filesystem storage)
//   - "memory": pkg/content/memory (ephemeral, for tests and dry runs)
func CreateContentStore(ctx context.Context, cfg *ContentConfig) (content.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemContentStore(ctx, cfg.Filesystem)
	case "memory":
		return contentMemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown content store type: %q", cfg.Type)
	}
}

// createFilesystemContentStore creates a filesystem-based content store.
func createFilesystemContentStore(ctx context.Context, options map[string]any) (content.Store, error) {
	type FilesystemContentStoreConfig struct {
		// Path, when set, is created (with parents) before the store is
		// returned, so a fresh deployment starts with its root in place.
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemContentStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem content store config: %w", err)
	}

	if storeCfg.Path != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(storeCfg.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to prepare filesystem content store root: %w", err)
		}
	}

	return contentFs.New(), nil
}
