package runtime

import (
	"context"
	"path"
	"strings"

	"leetbridge/internal/invoker"
	appErr "leetbridge/pkg/errors"
	"leetbridge/pkg/utils/logger"
)

// ToWSLPath translates a Windows path into its WSL view. It asks the
// wslpath utility first and falls back to pure drive-letter translation
// when the utility is unavailable.
func ToWSLPath(ctx context.Context, iv *invoker.Invoker, p string) (string, error) {
	if p == "" || !looksWindowsPath(p) {
		return p, nil
	}
	if strings.HasPrefix(p, `\\`) {
		// UNC paths have no /mnt view, pass through
		return p, nil
	}
	res, err := iv.Run(ctx, invoker.Request{Name: "wslpath", Args: []string{"-u", p}})
	if err == nil && res.ExitCode == 0 {
		if out := strings.TrimSpace(res.Stdout); out != "" {
			return out, nil
		}
	}
	logger.Debugf(ctx, "wslpath unavailable, using string translation for %s", p)
	return translateToWSL(p)
}

// ToWindowsPath translates a WSL path back into its Windows view.
func ToWindowsPath(ctx context.Context, iv *invoker.Invoker, p string) (string, error) {
	if p == "" || looksWindowsPath(p) {
		return p, nil
	}
	res, err := iv.Run(ctx, invoker.Request{Name: "wslpath", Args: []string{"-w", p}})
	if err == nil && res.ExitCode == 0 {
		if out := strings.TrimSpace(res.Stdout); out != "" {
			return out, nil
		}
	}
	logger.Debugf(ctx, "wslpath unavailable, using string translation for %s", p)
	return translateToWindows(p)
}

// WrapArgv prepends the WSL launcher to an argument vector. Exposed for
// callers that assemble argv outside the invoker.
func WrapArgv(name string, args []string) (string, []string) {
	return "wsl", append([]string{name}, args...)
}

// looksWindowsPath reports whether p starts with a drive letter or is a
// UNC path.
func looksWindowsPath(p string) bool {
	if strings.HasPrefix(p, `\\`) {
		return true
	}
	if len(p) < 2 || p[1] != ':' {
		return false
	}
	c := p[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// translateToWSL maps C:\Users\x to /mnt/c/Users/x.
func translateToWSL(p string) (string, error) {
	if len(p) < 2 || p[1] != ':' {
		return "", appErr.Newf(appErr.WSLTranslateFailed, "not a drive path: %s", p)
	}
	drive := strings.ToLower(p[:1])
	rest := strings.ReplaceAll(p[2:], `\`, "/")
	return path.Join("/mnt", drive, rest), nil
}

// translateToWindows maps /mnt/c/Users/x back to C:\Users\x.
func translateToWindows(p string) (string, error) {
	const prefix = "/mnt/"
	if !strings.HasPrefix(p, prefix) || len(p) < len(prefix)+1 {
		return "", appErr.Newf(appErr.WSLTranslateFailed, "not a /mnt path: %s", p)
	}
	drive := strings.ToUpper(p[len(prefix) : len(prefix)+1])
	rest := p[len(prefix)+1:]
	if rest == "" {
		// a bare drive root needs the separator, C: alone is
		// drive-relative on Windows
		return drive + `:\`, nil
	}
	if !strings.HasPrefix(rest, "/") {
		return "", appErr.Newf(appErr.WSLTranslateFailed, "not a /mnt path: %s", p)
	}
	return drive + ":" + strings.ReplaceAll(rest, "/", `\`), nil
}
