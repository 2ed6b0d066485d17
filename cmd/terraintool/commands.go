package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	getter "github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/Faultbox/mountainhome/internal/config"
	"github.com/Faultbox/mountainhome/internal/engine/lod"
	"github.com/Faultbox/mountainhome/internal/engine/scene"
	"github.com/Faultbox/mountainhome/internal/engine/terrain"
	"github.com/Faultbox/mountainhome/internal/logger"
	"github.com/Faultbox/mountainhome/pkg/grid"
)

var errUsage = errors.New("invalid arguments")

func openSave(path, backend string) (grid.Grid, error) {
	return terrain.OpenGrid(path, backend, grid.WithLogger(logger.Named("grid")))
}

func parseColumn(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: x %q: %v", errUsage, xs, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: y %q: %v", errUsage, ys, err)
	}
	return x, y, nil
}

func cmdInfo(args []string) error {
	fs, level := commandFlags("info")
	backend := fs.String("backend", terrain.BackendOctree, "Save format: octree or matrix")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: usage: terraintool info [-backend b] <save>", errUsage)
	}
	if err := initLogging(*level); err != nil {
		return err
	}

	g, err := openSave(fs.Arg(0), *backend)
	if err != nil {
		return err
	}

	columns, top := 0, -1
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if s := g.SurfaceLevel(x, y); s >= 0 {
				columns++
				top = max(top, s)
			}
		}
	}

	fmt.Printf("Save:       %s\n", fs.Arg(0))
	fmt.Printf("Backend:    %s\n", *backend)
	fmt.Printf("Dimensions: %d x %d x %d\n", g.Width(), g.Height(), g.Depth())
	fmt.Printf("Columns:    %d of %d filled\n", columns, g.Width()*g.Height())
	fmt.Printf("Top level:  %d\n", top)
	if o, ok := g.(*grid.Octree); ok {
		fmt.Printf("Nodes:      %d (%d leaves, depth %d)\n", o.NodeCount(), o.LeafCount(), o.Root().Depth())
	}
	return nil
}

func cmdSurface(args []string) error {
	fs, level := commandFlags("surface")
	backend := fs.String("backend", terrain.BackendOctree, "Save format: octree or matrix")
	fs.Parse(args)
	if fs.NArg() < 3 {
		return fmt.Errorf("%w: usage: terraintool surface [-backend b] <save> <x> <y>", errUsage)
	}
	if err := initLogging(*level); err != nil {
		return err
	}
	x, y, err := parseColumn(fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	g, err := openSave(fs.Arg(0), *backend)
	if err != nil {
		return err
	}
	if !g.InBounds(x, y, 0) {
		return fmt.Errorf("column (%d, %d) outside %dx%d", x, y, g.Width(), g.Height())
	}
	fmt.Println(g.SurfaceLevel(x, y))
	return nil
}

func cmdRanges(args []string) error {
	fs, level := commandFlags("ranges")
	backend := fs.String("backend", terrain.BackendOctree, "Save format: octree or matrix")
	fs.Parse(args)
	if fs.NArg() < 3 {
		return fmt.Errorf("%w: usage: terraintool ranges [-backend b] <save> <x> <y>", errUsage)
	}
	if err := initLogging(*level); err != nil {
		return err
	}
	x, y, err := parseColumn(fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	g, err := openSave(fs.Arg(0), *backend)
	if err != nil {
		return err
	}
	if !g.InBounds(x, y, 0) {
		return fmt.Errorf("column (%d, %d) outside %dx%d", x, y, g.Width(), g.Height())
	}

	fmt.Printf("Column (%d, %d):\n", x, y)
	for _, r := range g.FilledRanges(x, y) {
		fmt.Printf("  filled %4d..%-4d (%d)\n", r.Start, r.End, r.Len())
	}
	for _, r := range g.EmptyRanges(x, y) {
		fmt.Printf("  empty  %4d..%-4d (%d)\n", r.Start, r.End, r.Len())
	}
	return nil
}

func cmdMesh(args []string) error {
	fs, level := commandFlags("mesh")
	backend := fs.String("backend", terrain.BackendOctree, "Save format: octree or matrix")
	reduce := fs.Bool("reduce", false, "Simplify chunk meshes")
	chunkSize := fs.Int("chunk-size", terrain.DefaultChunkSize, "Chunk edge length")
	maxCost := fs.Float64("max-cost", float64(lod.DefaultMaxCost), "Simplifier collapse cost limit")
	whole := fs.Bool("whole", false, "Also build one mesh for the whole grid")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: usage: terraintool mesh [-reduce] [-chunk-size n] <save>", errUsage)
	}
	if err := initLogging(*level); err != nil {
		return err
	}

	g, err := openSave(fs.Arg(0), *backend)
	if err != nil {
		return err
	}

	simplify := lod.DefaultOptions()
	simplify.MaxCost = float32(*maxCost)

	sc := scene.New(scene.WithLogger(logger.Named("scene")))
	tr, err := terrain.NewWithGrid(g, terrain.Options{
		ChunkSize:     *chunkSize,
		PolyReduction: *reduce,
		Simplify:      simplify,
		Logger:        logger.Named("terrain"),
	}, sc)
	if err != nil {
		return err
	}
	tr.Populate()

	st := sc.Stats()
	fmt.Printf("Chunks:    %d (size %d)\n", st.Entities, *chunkSize)
	fmt.Printf("Vertices:  %d\n", st.Vertices)
	fmt.Printf("Triangles: %d\n", st.Triangles)
	if b, ok := sc.Bounds(); ok {
		fmt.Printf("Bounds:    %v .. %v\n", b.Min, b.Max)
	}

	if *whole {
		m := terrain.BuildSurfaceMesh(g, terrain.SurfaceOptions{
			Reduce:   *reduce,
			Simplify: simplify,
			Logger:   logger.Named("terrain"),
		})
		fmt.Printf("Whole grid: %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	}
	return nil
}

func cmdConvert(args []string) error {
	fs, level := commandFlags("convert")
	from := fs.String("from", terrain.BackendOctree, "Input save format")
	to := fs.String("to", terrain.BackendMatrix, "Output save format")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: usage: terraintool convert -from b -to b <in> <out>", errUsage)
	}
	if err := initLogging(*level); err != nil {
		return err
	}

	src, err := openSave(fs.Arg(0), *from)
	if err != nil {
		return err
	}
	dst, err := terrain.NewGrid(*to, src.Width(), src.Height(), src.Depth(),
		grid.WithLogger(logger.Named("grid")))
	if err != nil {
		return err
	}
	if err := grid.Copy(dst, src); err != nil {
		return err
	}

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}
	if err := dst.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("converted terrain save",
		zap.String("from", *from), zap.String("to", *to), zap.String("out", fs.Arg(1)))
	fmt.Printf("Wrote %s (%s, %dx%dx%d)\n", fs.Arg(1), *to, dst.Width(), dst.Height(), dst.Depth())
	return nil
}

func cmdFetch(args []string) error {
	fs, level := commandFlags("fetch")
	fs.Parse(args)
	if err := initLogging(*level); err != nil {
		return err
	}

	// Missing arguments fall back to the data section of config.yaml.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	src, dir := cfg.Data.FetchSource, cfg.Data.FetchDir
	if fs.NArg() > 0 {
		src = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		dir = fs.Arg(1)
	}
	if src == "" {
		return fmt.Errorf("%w: usage: terraintool fetch [source] [dir] (or set data.fetch_source)", errUsage)
	}

	dst, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("fetching terrain", zap.String("source", src), zap.String("dir", dst))
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeAny,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	logger.Info("fetched terrain", zap.String("dir", dst))
	fmt.Printf("Fetched %s into %s\n", src, dst)
	return nil
}
