package cmd

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/geometry"
	"github.com/df07/go-radiance-estimator/pkg/inference"
	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/df07/go-radiance-estimator/pkg/loaders"
	"github.com/df07/go-radiance-estimator/pkg/renderer"
	"github.com/df07/go-radiance-estimator/pkg/scene"
	"github.com/urfave/cli"
)

// Flags shared by every command that loads a scene
var sceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "scenes-dir",
		Value: "scenes",
		Usage: "directory searched for scene_name.pbrt",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "override the film width; the aspect ratio is kept",
	},
}

// Flags that override the scene's Integrator statement
var integratorFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "integrator",
		Usage: `integrator name: "bk" (learned) or "position" (analytic)`,
	},
	cli.IntFlag{
		Name:  "maxdepth",
		Usage: "maximum path depth",
	},
	cli.StringFlag{
		Name:  "strategy",
		Usage: `light sample array reservation: "one" or "all"`,
	},
	cli.StringFlag{
		Name:  "mode",
		Usage: `analytic output: "rgb", "depth" or "position"`,
	},
	cli.StringFlag{
		Name:  "lightsamplestrategy",
		Usage: `light distribution of the learned integrator: "uniform", "power" or "spatial"`,
	},
	cli.StringFlag{
		Name:  "pixelbounds",
		Usage: "render only x0,x1,y0,y1 of the film",
	},
}

// Flags of the learned integrator's inference session
var modelFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "model",
		Value: "./model/frozen_graph.onnx",
		Usage: "ONNX graph of the radiance model",
	},
	cli.StringFlag{
		Name:   "onnxruntime-lib",
		Usage:  "path of the ONNX Runtime shared library",
		EnvVar: inference.LibraryPathEnv,
	},
	cli.IntFlag{
		Name:  "intra-op-threads",
		Usage: "ONNX Runtime intra-op threads (0 = runtime default)",
	},
	cli.DurationFlag{
		Name:  "timeout",
		Usage: "per-inference timeout (0 = wait indefinitely)",
	},
	cli.BoolFlag{
		Name:  "batch",
		Usage: "coalesce concurrent inference calls into batches",
	},
	cli.IntFlag{
		Name:  "batch-size",
		Value: inference.DefaultBatcherConfig().MaxBatchSize,
		Usage: "maximum inference batch size",
	},
	cli.DurationFlag{
		Name:  "batch-delay",
		Value: inference.DefaultBatcherConfig().MaxDelay,
		Usage: "maximum time a request waits for its batch to fill",
	},
}

// Flags of the tiled renderer
var renderFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "spp",
		Usage: "samples per pixel (default: the scene's pixelsamples)",
	},
	cli.IntFlag{
		Name:  "workers",
		Usage: "render workers (0 = one per CPU)",
	},
	cli.IntFlag{
		Name:  "tile-size",
		Value: renderer.DefaultConfig().TileSize,
		Usage: "tile edge length in pixels",
	},
	cli.Int64Flag{
		Name:  "seed",
		Value: 1,
		Usage: "seed of the sample generator",
	},
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, group := range groups {
		flags = append(flags, group...)
	}
	return flags
}

// loadScene loads the scene named by the first argument, cornell-box by default
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	name := "cornell-box"
	if ctx.NArg() > 0 {
		name = ctx.Args().First()
	}

	var overrides []geometry.CameraConfig
	if width := ctx.Int("width"); width > 0 {
		overrides = append(overrides, geometry.CameraConfig{Width: width})
	}

	s, err := scene.Load(name, ctx.String("scenes-dir"), logger, overrides...)
	if err != nil {
		return nil, fmt.Errorf("scene load: %w", err)
	}
	if err := s.Preprocess(); err != nil {
		return nil, fmt.Errorf("scene preprocess: %w", err)
	}

	logger.Infof("loaded scene %q: %d shapes, %d lights, film %v", name, len(s.Shapes), len(s.Lights()), s.Camera.SampleBounds())
	return s, nil
}

// integratorConfig parses the scene's Integrator statement and applies the
// command line overrides
func integratorConfig(ctx *cli.Context, s *scene.Scene) (integrator.Config, error) {
	film := s.Camera.SampleBounds()

	stmt := s.Integrator
	if ctx.IsSet("integrator") {
		override := loaders.PBRTStatement{Type: "Integrator"}
		if stmt != nil {
			override = *stmt
		}
		override.Subtype = ctx.String("integrator")
		stmt = &override
	}

	cfg, err := integrator.ParseConfig(stmt, film, logger)
	if err != nil {
		return integrator.Config{}, err
	}

	if ctx.IsSet("maxdepth") {
		cfg.MaxDepth = ctx.Int("maxdepth")
	}
	if ctx.IsSet("strategy") {
		cfg.Strategy = integrator.ParseLightStrategy(ctx.String("strategy"), logger)
	}
	if ctx.IsSet("lightsamplestrategy") {
		cfg.LightSampleStrategy = ctx.String("lightsamplestrategy")
	}
	if ctx.IsSet("mode") {
		if cfg.Mode, err = integrator.ParseAnalyticMode(ctx.String("mode")); err != nil {
			return integrator.Config{}, err
		}
	}
	if ctx.IsSet("pixelbounds") {
		pb, err := parseInts(ctx.String("pixelbounds"))
		if err != nil {
			return integrator.Config{}, fmt.Errorf("pixelbounds: %w", err)
		}
		if cfg.PixelBounds, err = integrator.ClipPixelBounds(pb, film, logger); err != nil {
			return integrator.Config{}, err
		}
	}

	return cfg, nil
}

// parseInts parses a comma or space separated list of integers
func parseInts(list string) ([]int, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' })
	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// openSession loads the model and wraps it in a batcher when requested
func openSession(ctx *cli.Context) (inference.Session, error) {
	onnx, err := inference.LoadONNXSession(ctx.String("model"), ctx.String("onnxruntime-lib"), ctx.Int("intra-op-threads"), logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", integrator.ErrModelLoad, err)
	}
	logger.Infof("loaded model %s", ctx.String("model"))

	if !ctx.Bool("batch") {
		return onnx, nil
	}
	return inference.NewBatcher(onnx, inference.BatcherConfig{
		MaxBatchSize: ctx.Int("batch-size"),
		MaxDelay:     ctx.Duration("batch-delay"),
	}, logger), nil
}

// pipeline is a loaded scene with its integrator and sampler
type pipeline struct {
	scene      *scene.Scene
	config     integrator.Config
	sampler    *core.RandomSampler
	integrator *integrator.Integrator
}

// newPipeline builds the integrator for cfg. The learned integrator gets an
// ONNX session; failures to load it are reported as model load errors.
func newPipeline(ctx *cli.Context, s *scene.Scene, cfg integrator.Config) (*pipeline, error) {
	opts := integrator.Options{
		Learned: integrator.LearnedOptions{Timeout: ctx.Duration("timeout")},
	}
	if cfg.Kind == integrator.EstimatorLearned {
		session, err := openSession(ctx)
		if err != nil {
			return nil, err
		}
		opts.Session = session
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(ctx.Int64("seed"))))
	it, err := integrator.New(cfg, s, s.Camera, sampler, opts, logger)
	if err != nil {
		if opts.Session != nil {
			opts.Session.Close()
		}
		return nil, err
	}

	logger.Infof("integrator %s: maxdepth %d, pixel bounds %v", cfg.Kind, cfg.MaxDepth, cfg.PixelBounds)
	return &pipeline{scene: s, config: cfg, sampler: sampler, integrator: it}, nil
}

// newRenderer creates a tiled renderer over the pipeline's pixel bounds
func (p *pipeline) newRenderer(ctx *cli.Context) (*renderer.Renderer, error) {
	config := renderer.DefaultConfig()
	config.Film = p.scene.Camera.SampleBounds()
	config.PixelBounds = p.config.PixelBounds
	config.SamplesPerPixel = p.scene.SamplingConfig.SamplesPerPixel
	if ctx.IsSet("spp") {
		config.SamplesPerPixel = ctx.Int("spp")
	}
	config.NumWorkers = ctx.Int("workers")
	config.TileSize = ctx.Int("tile-size")

	return renderer.NewRenderer(p.scene, p.scene.Camera, p.integrator, p.sampler, config, logger)
}

func (p *pipeline) Close() error {
	return p.integrator.Close()
}

// stageError names the stage a render failed in
func stageError(err error) error {
	switch {
	case errors.Is(err, integrator.ErrModelLoad):
		return fmt.Errorf("model load: %w", err)
	case errors.Is(err, integrator.ErrInference), errors.Is(err, integrator.ErrInferenceTimeout):
		return fmt.Errorf("inference: %w", err)
	default:
		return err
	}
}
