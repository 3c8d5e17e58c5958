package dashboard

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandler_Embedded(t *testing.T) {
	h := Handler("")

	tests := []struct {
		name     string
		target   string
		contains string
	}{
		{"root", "/", "<!DOCTYPE html>"},
		{"stylesheet", "/style.css", "border-collapse"},
		{"spa fallback", "/players/ada", "<!DOCTYPE html>"},
		{"single segment fallback", "/admin", "EventSource"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, h, tt.target)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s: status %d, want 200", tt.target, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("GET %s: body does not contain %q", tt.target, tt.contains)
			}
		})
	}
}

func TestHandler_CacheControl(t *testing.T) {
	w := get(t, Handler(""), "/")
	if got := w.Header().Get("Cache-Control"); got != "no-cache, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestHandler_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>custom</html>"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0600); err != nil {
		t.Fatal(err)
	}
	h := Handler(dir)

	if w := get(t, h, "/"); !strings.Contains(w.Body.String(), "custom") {
		t.Errorf("GET /: body = %q, want custom index", w.Body.String())
	}
	if w := get(t, h, "/app.js"); !strings.Contains(w.Body.String(), "console.log") {
		t.Errorf("GET /app.js: body = %q", w.Body.String())
	}
	if w := get(t, h, "/nowhere"); !strings.Contains(w.Body.String(), "custom") {
		t.Errorf("GET /nowhere: body = %q, want fallback to custom index", w.Body.String())
	}
}

func TestHandler_MissingDirectoryUsesEmbedded(t *testing.T) {
	w := get(t, Handler("/does/not/exist"), "/")
	if !strings.Contains(w.Body.String(), "API Challenge") {
		t.Error("missing dir did not fall back to embedded page")
	}
}
