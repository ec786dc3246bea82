package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/httputil"
)

func TestDataURI(t *testing.T) {
	tests := []struct {
		ct   string
		data string
		want string
	}{
		{"image/png", "hi", "data:image/png;base64,aGk="},
		{"image/svg+xml; charset=utf-8", "hi", "data:image/svg+xml;base64,aGk="},
		{"", "hi", "data:application/octet-stream;base64,aGk="},
	}
	for _, tt := range tests {
		if got := DataURI(tt.ct, []byte(tt.data)); got != tt.want {
			t.Errorf("DataURI(%q) = %q, want %q", tt.ct, got, tt.want)
		}
	}
}

func TestResolveLocal(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "img"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "img", "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(dir)
	got, err := r.Resolve(context.Background(), []string{"img/a.png", "img/a.png", "", "data:image/gif;base64,R0"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(Resolve()) = %d, want 2: %v", len(got), got)
	}
	if want := "data:image/png;base64,cG5n"; got["img/a.png"] != want {
		t.Errorf("img/a.png = %q, want %q", got["img/a.png"], want)
	}
	if got["data:image/gif;base64,R0"] != "data:image/gif;base64,R0" {
		t.Errorf("data URI not passed through: %q", got["data:image/gif;base64,R0"])
	}
}

func TestResolveMissing(t *testing.T) {
	r := NewResolver(t.TempDir())
	got, err := r.Resolve(context.Background(), []string{"nope.png"})
	if err != nil || len(got) != 0 {
		t.Errorf("lenient Resolve = %v, %v, want empty map and no error", got, err)
	}

	r = NewResolver(t.TempDir(), WithStrict(true))
	if _, err := r.Resolve(context.Background(), []string{"nope.png"}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("strict Resolve error = %v, want FILE_NOT_FOUND", err)
	}

	for _, ref := range []string{"rel.png", "/etc/passwd"} {
		if _, err := NewResolver("").One(context.Background(), ref); !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("One(%q) without base = %v, want INVALID_PATH", ref, err)
		}
	}
	if _, err := NewResolver("").One(context.Background(), "https://example.com/a.png"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("remote without fetcher = %v, want UNSUPPORTED", err)
	}
}

func TestResolveRemote(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte(strings.TrimPrefix(r.URL.Path, "/")))
	}))
	defer srv.Close()

	client := httputil.NewClient(httputil.WithRetry(1, time.Millisecond))
	r := NewResolver("", WithClient(client), WithConcurrency(2))

	refs := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c", srv.URL + "/a"}
	got, err := r.Resolve(context.Background(), refs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 3 || calls.Load() != 3 {
		t.Errorf("resolved %d refs with %d requests, want 3 and 3", len(got), calls.Load())
	}
	if want := DataURI("image/jpeg", []byte("b")); got[srv.URL+"/b"] != want {
		t.Errorf("b = %q, want %q", got[srv.URL+"/b"], want)
	}
}
