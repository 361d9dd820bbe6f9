package http

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
)

// StaticHandler serves embedded stylesheet and image assets. Unlike
// http.FileServer it never lists directories.
type StaticHandler struct {
	fileSystem http.FileSystem
}

// NewStaticHandler creates a new static asset handler
func NewStaticHandler(filesystem http.FileSystem) *StaticHandler {
	return &StaticHandler{fileSystem: filesystem}
}

// ServeHTTP implements the http.Handler interface
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Clean the path to prevent directory traversal attacks.
	cleanPath := path.Clean("/" + r.URL.Path)

	file, err := h.fileSystem.Open(cleanPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	if contentType := getContentType(cleanPath); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, file); err != nil {
		http.Error(w, "Failed to serve file", http.StatusInternalServerError)
		return
	}
}

var mimeTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".woff": "font/woff",
	".ttf":  "font/ttf",
}

// getContentType returns the content type for common file extensions
func getContentType(filePath string) string {
	return mimeTypes[path.Ext(filePath)]
}
