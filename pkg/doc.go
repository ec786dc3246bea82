// Package pkg provides the core libraries for Barrace bar chart races.
//
// # Overview
//
// Barrace turns a table of entities and their values over time into an
// animated ranking: at every moment the largest values are drawn as
// horizontal bars, sorted, and bars jump as ranks change. The pkg directory
// is organized into four areas:
//
//  1. [dataset] and [settings] - Inputs (CSV/JSON datasets, TOML/JSON settings)
//  2. [render/race] - Frame composition (ranking, layout, sinks)
//  3. [timeline] - Playback (driver, scheduler, frame plans)
//  4. [pipeline] - Orchestration (load → compose → render, with caching)
//
// # Architecture
//
// The typical data flow through Barrace:
//
//	Dataset + Settings
//	         ↓
//	    [render/race/ranking] (select and order the visible entities)
//	         ↓
//	    [render/race/layout] (bar heights, offsets, widths, images)
//	         ↓
//	    [render/race] (compose a Frame at a fractional index)
//	         ↓
//	    [render/race/sink] (SVG/PDF/PNG/JSON)
//
// The [timeline] driver supplies the index while a race plays; [timeline.Plan]
// samples the same timeline at a fixed frame rate for offline export.
//
// # Quick Start
//
// Compose and render one frame:
//
//	import (
//	    "github.com/matzehuels/barrace/pkg/dataset"
//	    "github.com/matzehuels/barrace/pkg/render/race"
//	    "github.com/matzehuels/barrace/pkg/render/race/sink"
//	    "github.com/matzehuels/barrace/pkg/settings"
//	)
//
//	ds, _ := dataset.Load("population.csv", dataset.EmptyInterpolate)
//	f, _ := race.Compose(ds, settings.Default(), 12.5)
//	svg := sink.RenderSVG(f)
//
// Play a race in real time:
//
//	c, _ := race.NewComposer(ds, s)
//	d, _ := timeline.New(timeline.FromSettings(s.Timeline, ds.Len()),
//	    timeline.WithOnChange(func(snap timeline.Snapshot) {
//	        f, _ := c.Frame(snap.Index)
//	        draw(f)
//	    }))
//	d.Play()
//
// # Main Packages
//
// [pipeline] - Load, compose and render with content-addressed caching. Used
// by the CLI and the HTTP server so both produce identical artifacts.
//
// [cache] - Cache backends behind one interface: file (CLI), memory (server
// and tests), Redis and MongoDB (shared deployments).
//
// [assets] - Resolves entity images (data URIs, URLs, local files) into
// self-contained hrefs before rendering.
//
// [render/nodelink] - Graphviz diagram of the timeline's state machine.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// [errors] - Error codes shared by every package and mapped to HTTP statuses
// by the server.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/dataset
// [settings]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/settings
// [render/race]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/render/race
// [render/race/ranking]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/render/race/ranking
// [render/race/layout]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/render/race/layout
// [render/race/sink]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/render/race/sink
// [timeline]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/timeline
// [timeline.Plan]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/timeline#Plan
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/cache
// [assets]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/assets
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/barrace/pkg/errors
package pkg
