// vpxtool is a CLI utility for inspecting and converting Visual Pinball tables.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/vpdb/server-sub007/internal/config"
	"github.com/vpdb/server-sub007/internal/logger"
	"github.com/vpdb/server-sub007/pkg/convert"
	"github.com/vpdb/server-sub007/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		err = cmdInfo(cfg, rest)
	case "convert", "glb":
		err = cmdConvert(cfg, rest)
	case "thumbnail", "thumb":
		err = cmdThumbnail(cfg, rest)
	case "images":
		err = cmdImages(cfg, rest)
	case "config":
		err = cmdConfig(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Log.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`vpxtool - Visual Pinball table utility

Usage:
  vpxtool [flags] <command> [arguments]

Commands:
  info <table.vpx>                Show table information
  convert <table.vpx> [out.glb]   Convert the table to a GLB scene
  thumbnail <table.vpx> [out.png] Render a playfield preview
  images <table.vpx> [dir]        Extract embedded images
  config [path]                   Write the effective configuration

Flags:
  -config <file>    Config file (default ./config.yaml or user config dir)
  -debug            Enable debug logging
  -scale <n>        Table units to scene units
  -tolerant         Keep partially decoded images
  -no-textures      Do not embed textures
  -timeout <d>      Conversion timeout per table
  -width, -height   Thumbnail size

Examples:
  vpxtool info table.vpx
  vpxtool -scale 0.01 convert table.vpx table.glb
  vpxtool -width 256 -height 512 thumbnail table.vpx`)
}

func convertOptions(cfg *config.Config) convert.Options {
	return convert.Options{
		UnitScale:      cfg.Convert.UnitScale,
		TolerantImages: cfg.Convert.TolerantImages,
		EmbedTextures:  cfg.Convert.EmbedTextures,
		Logger:         logger.Log,
	}
}

// outputPath returns args[1], or the input path with ext when absent.
func outputPath(args []string, ext string) string {
	if len(args) > 1 {
		return args[1]
	}
	in := args[0]
	return strings.TrimSuffix(in, filepath.Ext(in)) + ext
}

// withTimeout runs fn and gives up once the configured timeout elapses.
// The conversion itself is not interruptible; it is abandoned, not stopped.
func withTimeout[T any](cfg *config.Config, fn func() (T, error)) (T, error) {
	ctx := context.Background()
	if cfg.Convert.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Convert.Timeout)
		defer cancel()
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("conversion timed out after %v: %w", cfg.Convert.Timeout, ctx.Err())
	}
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: vpxtool info <table.vpx>")
	}

	t, err := formats.ParseFile(args[0], formats.ParseOptions{TolerantImages: cfg.Convert.TolerantImages})
	if err != nil {
		return err
	}

	gd := t.GameData
	fmt.Printf("Table:       %s\n", args[0])
	fmt.Printf("Name:        %s\n", gd.Name)
	fmt.Printf("Version:     %d\n", t.Version)
	fmt.Printf("Size:        %.0f x %.0f\n", t.Width(), t.Height())
	fmt.Printf("Inclination: %.1f\n", gd.Inclination)
	fmt.Printf("FOV:         %.1f\n", gd.FOV)
	fmt.Printf("Playfield:   %s\n", gd.Image)
	fmt.Printf("Items:       %d\n", len(t.Items))
	fmt.Printf("Images:      %d\n", len(t.Images))
	fmt.Printf("Materials:   %d\n", len(t.Materials))

	if len(t.Info) > 0 {
		fmt.Println()
		fmt.Println("Info:")
		keys := make([]string, 0, len(t.Info))
		for k := range t.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-16s %s\n", k, t.Info[k])
		}
	}

	// Count by kind
	kindCount := make(map[formats.ItemKind]int)
	for _, it := range t.Items {
		kindCount[it.Kind]++
	}
	type kindStat struct {
		kind  formats.ItemKind
		count int
	}
	var stats []kindStat
	for kind, count := range kindCount {
		stats = append(stats, kindStat{kind, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].kind < stats[j].kind
	})

	fmt.Println()
	fmt.Println("Items by kind:")
	for _, s := range stats {
		fmt.Printf("  %-12s %d\n", s.kind, s.count)
	}

	if len(t.Warnings) > 0 {
		fmt.Println()
		fmt.Printf("Warnings (%d):\n", len(t.Warnings))
		for _, w := range t.Warnings {
			fmt.Printf("  %v\n", w)
		}
	}
	return nil
}

func cmdConvert(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: vpxtool convert <table.vpx> [out.glb]")
	}
	out := outputPath(args, ".glb")

	res, err := withTimeout(cfg, func() (*convert.Result, error) {
		return convert.ConvertFile(args[0], convertOptions(cfg))
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, res.Scene, 0644); err != nil {
		return err
	}

	s := res.Stats
	fmt.Printf("Wrote %s (%.2f MB)\n", out, float64(len(res.Scene))/(1024*1024))
	fmt.Printf("  meshes %d, lights %d, materials %d, textures %d, triangles %d\n",
		s.Scene.Meshes, s.Scene.Lights, s.Scene.Materials, s.Scene.Textures, s.Scene.Triangles)
	if len(res.Warnings) > 0 {
		fmt.Printf("  %d warning(s), see log\n", len(res.Warnings))
	}
	return nil
}

func cmdThumbnail(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: vpxtool thumbnail <table.vpx> [out.png]")
	}
	out := outputPath(args, ".png")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := withTimeout(cfg, func() ([]byte, error) {
		return convert.Thumbnail(data, cfg.Thumbnail.Width, cfg.Thumbnail.Height, convertOptions(cfg))
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, img, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d)\n", out, cfg.Thumbnail.Width, cfg.Thumbnail.Height)
	return nil
}

func cmdImages(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: vpxtool images <table.vpx> [dir]")
	}
	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}

	t, err := formats.ParseFile(args[0], formats.ParseOptions{TolerantImages: cfg.Convert.TolerantImages})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	count := 0
	for _, img := range t.Images {
		data, ext, err := imageFile(img)
		if err != nil {
			logger.Log.Warn("skipping image", zap.String("image", img.Name), zap.Error(err))
			continue
		}
		path := filepath.Join(dir, safeName(img.Name)+"."+ext)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Println(path)
		count++
	}
	fmt.Printf("Extracted %d of %d images\n", count, len(t.Images))
	return nil
}

// imageFile returns the original bytes of embedded files and a PNG for
// bitmaps.
func imageFile(img *formats.Image) ([]byte, string, error) {
	if img.Raster == nil && len(img.Data) > 0 {
		kind, err := filetype.Match(img.Data)
		if err == nil && kind != filetype.Unknown {
			return img.Data, kind.Extension, nil
		}
	}
	pix, err := img.Decode()
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, pix); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "png", nil
}

func safeName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}
