// Package assets turns entity image references into self-contained hrefs.
//
// A dataset's image column may hold a data URI, an http(s) URL or a path
// relative to the dataset file. Exported SVGs are rendered outside the
// browser (rsvg-convert, the HTTP server's clients), so every reference is
// resolved to a data URI before drawing.
//
//	r := assets.NewResolver(filepath.Dir(datasetPath), assets.WithClient(httputil.NewClient()))
//	hrefs, err := r.Resolve(ctx, ds.Images())
//	svg := sink.RenderSVG(frame, sink.WithImages(hrefs))
package assets

import (
	"context"
	"encoding/base64"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/barrace/pkg/errors"
	"github.com/matzehuels/barrace/pkg/httputil"
)

// DefaultConcurrency bounds parallel fetches.
const DefaultConcurrency = 8

// Fetcher retrieves remote resources. *httputil.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, url string) (httputil.Resource, error)
}

// Resolver resolves image references into data URIs.
type Resolver struct {
	base        string
	fetcher     Fetcher
	concurrency int
	strict      bool
	logger      *log.Logger
}

type Option func(*Resolver)

// WithClient sets the fetcher for http(s) references. Without one, remote
// references are rejected.
func WithClient(f Fetcher) Option { return func(r *Resolver) { r.fetcher = f } }

// WithConcurrency bounds the number of references resolved in parallel.
func WithConcurrency(n int) Option { return func(r *Resolver) { r.concurrency = n } }

// WithStrict makes Resolve fail on the first unresolvable reference instead
// of leaving it out of the result.
func WithStrict(strict bool) Option { return func(r *Resolver) { r.strict = strict } }

func WithLogger(l *log.Logger) Option { return func(r *Resolver) { r.logger = l } }

// NewResolver returns a resolver for local paths relative to base. An empty
// base rejects every local path.
func NewResolver(base string, opts ...Option) *Resolver {
	r := &Resolver{base: base, concurrency: DefaultConcurrency}
	for _, o := range opts {
		o(r)
	}
	if r.concurrency <= 0 {
		r.concurrency = DefaultConcurrency
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard)
	}
	return r
}

// Resolve maps every distinct reference in refs to a data URI. Empty
// references are skipped. Unless the resolver is strict, references that
// fail are logged and omitted, so renderers fall back to the raw reference.
func (r *Resolver) Resolve(ctx context.Context, refs []string) (map[string]string, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]string, len(refs))
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		g.Go(func() error {
			uri, err := r.One(ctx, ref)
			if err != nil {
				if r.strict {
					return err
				}
				r.logger.Warn("skipping image", "ref", ref, "err", err)
				return nil
			}
			mu.Lock()
			out[ref] = uri
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// One resolves a single reference.
func (r *Resolver) One(ctx context.Context, ref string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return ref, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if r.fetcher == nil {
			return "", errors.New(errors.ErrCodeUnsupported, "remote image %s: no fetcher configured", ref)
		}
		res, err := r.fetcher.Get(ctx, ref)
		if err != nil {
			return "", err
		}
		return DataURI(res.ContentType, res.Data), nil
	default:
		return r.local(ref)
	}
}

func (r *Resolver) local(ref string) (string, error) {
	// Without a base directory (inline datasets) the file system is off limits.
	if r.base == "" {
		return "", errors.New(errors.ErrCodeInvalidPath, "local image %q without a base directory", ref)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.base, path)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", ref)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read image %s", ref)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return DataURI(ct, data), nil
}

// DataURI encodes data as a base64 data URI. Parameters after the media type
// (such as charset) are dropped.
func DataURI(contentType string, data []byte) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
