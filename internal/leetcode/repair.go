package leetcode

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	appErr "leetbridge/pkg/errors"
	"leetbridge/pkg/utils/logger"
)

// corruptionSignatures are output fragments the CLI emits when its
// plugin cache is damaged. Matching any of them triggers a cache wipe
// and a single retry.
var corruptionSignatures = []string{
	"ENOENT: no such file or directory",
	"Cannot find module",
	"Unexpected end of JSON input",
	"Unexpected token",
	"cache missing or corrupted",
}

// needsRepair reports whether combined output matches a corruption
// signature.
func needsRepair(output string) bool {
	for _, signature := range corruptionSignatures {
		if strings.Contains(output, signature) {
			return true
		}
	}
	return false
}

// repairPluginCache deletes the CLI's plugin cache directory so the next
// invocation rebuilds it.
func (e *Executor) repairPluginCache(ctx context.Context) error {
	dir := e.cfg.Cache.PluginCacheDir
	if dir == "" {
		return appErr.New(appErr.CacheRepairFailed).WithMessage("plugin cache dir is not configured")
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// nothing to wipe, still worth retrying the command
		return nil
	}
	logger.Warn(ctx, "wiping corrupted plugin cache", zap.String("dir", dir))
	if err := os.RemoveAll(dir); err != nil {
		return appErr.Wrap(err, appErr.CacheRepairFailed).WithDetail("dir", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return appErr.Wrap(err, appErr.CacheRepairFailed).WithDetail("dir", dir)
	}
	return nil
}
