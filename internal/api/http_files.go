package api

import (
	"accounts/internal/storage"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MountUploads serves locally stored avatars under the public base path.
// Remote drivers and absolute public URLs are served elsewhere.
func (h *HTTPHandler) MountUploads(r *gin.Engine) {
	localProvider, ok := h.storage.(storage.LocalBaseDirProvider)
	if !ok {
		return
	}
	prefix := h.storagePublicBase
	if strings.HasPrefix(prefix, "http://") || strings.HasPrefix(prefix, "https://") {
		return
	}
	r.Static(prefix, localProvider.LocalBaseDir())
}

// MountFrontend serves a built single-page application from dir. Unknown
// non-API GET paths fall back to index.html.
func MountFrontend(r *gin.Engine, dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logrus.WithError(err).WithField("dir", dir).Warn("frontend index not found, SPA disabled")
		return
	}

	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "Not found")
			return
		}
		candidate := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.File(candidate)
			return
		}
		c.File(index)
	})
}
