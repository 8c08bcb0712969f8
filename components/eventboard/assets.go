package eventboard

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

//go:embed assets/logos/*.svg
var embeddedAssets embed.FS

// LogoAssetsFS exposes the embedded logos rooted at the logo directory.
func LogoAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets/logos")
	if err != nil {
		// The directory is embedded at build time.
		panic(fmt.Errorf("eventboard: prepare embedded logos: %w", err))
	}
	return sub
}

// LogoAssetsHandler serves the embedded logos under prefix.
func LogoAssetsHandler(prefix string) http.Handler {
	if prefix == "" {
		prefix = LogoAssetsPath
	}
	prefix = ensureTrailingSlash(prefix)
	return http.StripPrefix(prefix, http.FileServer(http.FS(LogoAssetsFS())))
}

// PreloadAssets checks that every logo in the mapping is present in fsys so
// the first page load does not hit broken images. Callers log the result; a
// missing asset is never fatal.
func PreloadAssets(fsys fs.FS, logos LogoMapping, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	paths := logos.Paths()
	paths["default"] = logos.Fallback()

	var missing error
	checked := 0
	for name, p := range paths {
		if !strings.HasPrefix(p, LogoAssetsPath) {
			// Remote or custom-mounted logo; nothing to preload.
			continue
		}
		rel := strings.TrimPrefix(p, LogoAssetsPath)
		if _, err := fs.Stat(fsys, rel); err != nil {
			missing = errors.Join(missing, fmt.Errorf("logo for %q: %w", name, err))
			continue
		}
		checked++
	}
	if missing != nil {
		logger.Warn("asset preload failed", zap.Error(missing))
		return missing
	}
	logger.Info("asset preload registered", zap.Int("logos", checked))
	return nil
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
