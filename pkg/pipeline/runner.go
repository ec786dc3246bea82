package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/barrace/pkg/assets"
	"github.com/matzehuels/barrace/pkg/cache"
	"github.com/matzehuels/barrace/pkg/httputil"
	"github.com/matzehuels/barrace/pkg/observability"
	"github.com/matzehuels/barrace/pkg/render/race"
	"github.com/matzehuels/barrace/pkg/timeline"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the HTTP server use it so caching behaves the same for both.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Fetcher downloads remote images when Options.Embed is set. NewRunner
	// sets an httputil.Client backed by Cache.
	Fetcher assets.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewClient(httputil.WithCache(c, keyer, cache.TTLAsset)),
	}
}

// Execute loads the inputs, composes the frame at opts.Index and renders it
// in every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result := &Result{InputHash: in.Hash}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Entities = len(in.Dataset.Entities)
	result.Stats.Steps = in.Dataset.Len()

	renderStart := time.Now()
	frame, artifacts, hit, err := r.RenderFrameWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Frame = frame
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered frame",
		"index", opts.Index,
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and validates the inputs named by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*Inputs, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	in, err := Load(opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("loaded inputs",
		"entities", len(in.Dataset.Entities),
		"steps", in.Dataset.Len(),
		"hash", in.Hash[:12])
	return in, nil
}

// RenderFrameWithCacheInfo renders the frame at opts.Index in every requested
// format and reports whether all artifacts came from the cache. The composed
// frame is nil on a cache hit.
func (r *Runner) RenderFrameWithCacheInfo(ctx context.Context, in *Inputs, opts Options) (*race.Frame, map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}

	return r.renderFrame(ctx, in, opts, func(ctx context.Context) (map[string]string, error) {
		return r.Images(ctx, in, opts)
	})
}

// RenderFrame is a convenience wrapper that calls RenderFrameWithCacheInfo and discards the cache hit info.
func (r *Runner) RenderFrame(ctx context.Context, in *Inputs, opts Options) (map[string][]byte, error) {
	_, artifacts, _, err := r.RenderFrameWithCacheInfo(ctx, in, opts)
	return artifacts, err
}

// RenderSequence renders the frame at every index in parallel and passes each
// result to emit together with its position in indices. emit is called
// concurrently and in no particular order. The first error cancels the
// remaining work.
func (r *Runner) RenderSequence(ctx context.Context, in *Inputs, opts Options, indices []float64, emit func(i int, artifacts map[string][]byte) error) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	// Resolve images once rather than per frame.
	images, err := r.Images(ctx, in, opts)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, index := range indices {
		g.Go(func() error {
			frameOpts := opts
			frameOpts.Index = index
			_, artifacts, _, err := r.renderFrame(ctx, in, frameOpts, func(context.Context) (map[string]string, error) {
				return images, nil
			})
			if err != nil {
				return fmt.Errorf("frame %d (index %g): %w", i, index, err)
			}
			return emit(i, artifacts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	r.Logger.Debug("rendered sequence", "frames", len(indices), "formats", opts.Formats)
	return nil
}

// renderFrame serves the artifacts from the cache or composes and renders
// them. images is only called on a miss.
func (r *Runner) renderFrame(ctx context.Context, in *Inputs, opts Options, images func(context.Context) (map[string]string, error)) (*race.Frame, map[string][]byte, bool, error) {
	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, in, opts); ok {
			observability.Cache().OnCacheHit(ctx, "frame")
			return nil, artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "frame")
	}

	frame, err := r.compose(ctx, in, opts.Index)
	if err != nil {
		return nil, nil, false, err
	}
	hrefs, err := images(ctx)
	if err != nil {
		return nil, nil, false, err
	}
	artifacts, err := RenderAll(ctx, frame, hrefs, opts)
	if err != nil {
		return nil, nil, false, err
	}

	for format, data := range artifacts {
		key := r.Keyer.FrameKey(in.Hash, opts.FrameKeyOpts(opts.Index, format))
		if r.Cache.Set(ctx, key, data, cache.TTLFrame) == nil {
			observability.Cache().OnCacheSet(ctx, "frame", len(data))
		}
	}
	return frame, artifacts, false, nil
}

// PlanWithCacheInfo samples the inputs' timeline at fps and reports whether
// the plan came from the cache.
func (r *Runner) PlanWithCacheInfo(ctx context.Context, in *Inputs, fps int) ([]timeline.Frame, bool, error) {
	return r.plan(ctx, timeline.FromSettings(in.Settings.Timeline, in.Dataset.Len()), fps)
}

// Plan samples a timeline given directly as options, with caching.
func (r *Runner) Plan(ctx context.Context, opts timeline.Options, fps int) ([]timeline.Frame, error) {
	frames, _, err := r.plan(ctx, opts, fps)
	return frames, err
}

func (r *Runner) plan(ctx context.Context, opts timeline.Options, fps int) ([]timeline.Frame, bool, error) {
	key := r.Keyer.PlanKey(cache.PlanKeyOpts{
		Steps:    opts.Steps,
		Duration: opts.Duration.Seconds(),
		Loop:     opts.Loop,
		Before:   opts.LoopDelayBefore.Seconds(),
		After:    opts.LoopDelayAfter.Seconds(),
		FPS:      fps,
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var frames []timeline.Frame
		if json.Unmarshal(data, &frames) == nil {
			observability.Cache().OnCacheHit(ctx, "plan")
			return frames, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "plan")

	frames, err := timeline.Plan(opts, fps)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(frames); err == nil {
		if r.Cache.Set(ctx, key, data, cache.TTLPlan) == nil {
			observability.Cache().OnCacheSet(ctx, "plan", len(data))
		}
	}
	r.Logger.Debug("planned timeline", "frames", len(frames), "fps", fps)
	return frames, false, nil
}

// Images resolves the dataset's image references to data URIs when
// opts.Embed is set, and returns nil otherwise.
func (r *Runner) Images(ctx context.Context, in *Inputs, opts Options) (map[string]string, error) {
	if !opts.Embed {
		return nil, nil
	}
	refs := in.Dataset.Images()
	if len(refs) == 0 {
		return nil, nil
	}
	resolver := assets.NewResolver(in.BaseDir, assets.WithClient(r.Fetcher), assets.WithLogger(r.Logger))
	return resolver.Resolve(ctx, refs)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) compose(ctx context.Context, in *Inputs, index float64) (*race.Frame, error) {
	observability.Pipeline().OnComposeStart(ctx, index)
	start := time.Now()
	frame, err := in.Composer().Frame(index)
	bars := 0
	if frame != nil {
		bars = len(frame.Visible())
	}
	observability.Pipeline().OnComposeComplete(ctx, index, bars, time.Since(start), err)
	return frame, err
}

func (r *Runner) cachedArtifacts(ctx context.Context, in *Inputs, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.FrameKey(in.Hash, opts.FrameKeyOpts(opts.Index, format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}
