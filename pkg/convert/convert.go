// Package convert turns table files into GLB scenes and thumbnails.
//
// Each call is an independent, synchronous pipeline: parse the container,
// build meshes and lights, assemble the scene graph and write the document.
// Nothing is shared between calls, so conversions may run concurrently.
// Callers that need a deadline wrap the call themselves.
package convert

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/pkg/cfb"
	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/mesh"
	"github.com/vpdb/server-sub007/pkg/scene"
	"github.com/vpdb/server-sub007/pkg/thumbnail"
)

// Options controls a conversion.
type Options struct {
	// UnitScale converts table units to scene units.
	UnitScale float32
	// TolerantImages keeps partially decoded bitmaps instead of failing.
	TolerantImages bool
	// EmbedTextures writes referenced images into the scene.
	EmbedTextures bool
	Logger        *zap.Logger
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		UnitScale:     mesh.DefaultScale,
		EmbedTextures: true,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) parseOptions() formats.ParseOptions {
	return formats.ParseOptions{TolerantImages: o.TolerantImages}
}

// Stats summarises a conversion.
type Stats struct {
	Items     int
	Images    int
	Materials int
	Scene     scene.Stats
	Duration  time.Duration
}

// Result is a converted table.
type Result struct {
	// Scene is the GLB document.
	Scene []byte
	// Table is the parsed input.
	Table *formats.Table
	// Warnings collects the non-fatal problems of every stage.
	Warnings []error
	Stats    Stats
}

// Convert parses a table file and writes its scene.
func Convert(data []byte, opts Options) (*Result, error) {
	start := time.Now()
	t, err := formats.Parse(data, opts.parseOptions())
	if err != nil {
		return nil, err
	}
	return convertTable(t, opts, start)
}

// ConvertFile converts the table file at path.
func ConvertFile(path string, opts Options) (*Result, error) {
	start := time.Now()
	t, err := formats.ParseFile(path, opts.parseOptions())
	if err != nil {
		return nil, err
	}
	return convertTable(t, opts, start)
}

// ConvertStorage converts an already opened compound file.
func ConvertStorage(st *cfb.Storage, opts Options) (*Result, error) {
	start := time.Now()
	t, err := formats.ParseStorage(st, opts.parseOptions())
	if err != nil {
		return nil, err
	}
	return convertTable(t, opts, start)
}

// ConvertTable writes the scene of a parsed table.
func ConvertTable(t *formats.Table, opts Options) (*Result, error) {
	return convertTable(t, opts, time.Now())
}

func convertTable(t *formats.Table, opts Options, start time.Time) (*Result, error) {
	log := opts.logger()

	built, err := mesh.Build(&mesh.Context{Table: t, Scale: opts.UnitScale, Logger: log})
	if err != nil {
		return nil, err
	}
	g := scene.Assemble(t, built.Nodes)

	out, err := scene.ExportGLB(g, t, scene.ExportOptions{
		Scale:         opts.UnitScale,
		EmbedTextures: opts.EmbedTextures,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Scene: out.GLB,
		Table: t,
		Stats: Stats{
			Items:     len(t.Items),
			Images:    len(t.Images),
			Materials: len(t.Materials),
			Scene:     out.Stats,
			Duration:  time.Since(start),
		},
	}
	res.Warnings = append(res.Warnings, t.Warnings...)
	res.Warnings = append(res.Warnings, built.Warnings...)
	res.Warnings = append(res.Warnings, out.Warnings...)

	if len(res.Warnings) > 0 {
		log.Warn("conversion finished with warnings",
			zap.Int("count", len(res.Warnings)),
			zap.Error(multierr.Combine(res.Warnings...)))
	}
	log.Info("converted table",
		zap.String("name", t.GameData.Name),
		zap.Int("items", res.Stats.Items),
		zap.Int("meshes", out.Stats.Meshes),
		zap.Int("lights", out.Stats.Lights),
		zap.Int("triangles", out.Stats.Triangles),
		zap.Int("bytes", out.Stats.Bytes),
		zap.Duration("took", res.Stats.Duration))
	return res, nil
}

// Thumbnail parses a table file and renders its preview as PNG.
func Thumbnail(data []byte, width, height int, opts Options) ([]byte, error) {
	t, err := formats.Parse(data, opts.parseOptions())
	if err != nil {
		return nil, err
	}
	return TableThumbnail(t, width, height, opts)
}

// TableThumbnail renders the preview of a parsed table as PNG.
func TableThumbnail(t *formats.Table, width, height int, opts Options) ([]byte, error) {
	topts := thumbnail.DefaultOptions()
	topts.Width, topts.Height = width, height
	topts.Logger = opts.logger()
	png, err := thumbnail.RenderPNG(t, topts)
	if err != nil {
		return nil, fmt.Errorf("rendering thumbnail: %w", err)
	}
	return png, nil
}
