package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/df07/go-radiance-estimator/pkg/log"
)

// Config contains the frame and parallelism settings of a render
type Config struct {
	Film            image.Rectangle // Film sample bounds; the size of the output image
	PixelBounds     image.Rectangle // Pixels actually rendered, inside Film
	SamplesPerPixel int
	TileSize        int
	NumWorkers      int // 0 = use CPU count
}

// DefaultConfig returns sensible default values. Film and PixelBounds must
// still be set.
func DefaultConfig() Config {
	return Config{
		SamplesPerPixel: 16,
		TileSize:        32,
		NumWorkers:      0,
	}
}

// Renderer renders a frame in parallel tiles
type Renderer struct {
	scene      integrator.Scene
	camera     Camera
	integrator Integrator
	sampler    *core.RandomSampler
	config     Config
	logger     log.Logger
}

// NewRenderer creates a renderer. The integrator must have been constructed
// against sampler so that its sample array reservations are in place.
func NewRenderer(scene integrator.Scene, camera Camera, integratorInst Integrator, sampler *core.RandomSampler, config Config, logger log.Logger) (*Renderer, error) {
	if config.Film.Empty() {
		return nil, fmt.Errorf("empty film %v", config.Film)
	}
	if config.PixelBounds.Empty() {
		config.PixelBounds = config.Film
	}
	if !config.PixelBounds.In(config.Film) {
		return nil, fmt.Errorf("pixel bounds %v outside film %v", config.PixelBounds, config.Film)
	}

	return &Renderer{
		scene:      scene,
		camera:     camera,
		integrator: integratorInst,
		sampler:    sampler,
		config:     config,
		logger:     logger,
	}, nil
}

// Render renders every tile of the pixel bounds. The first tile error cancels
// the remaining tiles and is returned; no image is produced in that case.
func (r *Renderer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tiles := NewTileGrid(r.config.PixelBounds, r.config.TileSize)
	pixelStats := make([][]PixelStats, r.config.Film.Max.Y)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, r.config.Film.Max.X)
	}

	tileRenderer := NewTileRenderer(r.scene, r.camera, r.integrator, r.sampler, r.config.SamplesPerPixel)
	pool := NewWorkerPool(tileRenderer, r.config.NumWorkers, len(tiles))
	r.logger.Infof("rendering %v in %d tiles at %d spp using %d workers",
		r.config.PixelBounds, len(tiles), tileRenderer.samplesPerPixel, pool.GetNumWorkers())

	pool.Start(ctx)
	for id, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: id, PixelStats: pixelStats})
	}

	var firstErr error
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			firstErr = errors.New("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
				cancel()
			}
			continue
		}
		r.logger.Debugf("tile %d done: %d samples", result.TaskID, result.Stats.TotalSamples)
	}
	pool.Stop()

	if firstErr != nil {
		return nil, RenderStats{}, firstErr
	}

	img, stats := r.assembleImage(pixelStats)
	stats.Tiles = len(tiles)
	stats.Workers = pool.GetNumWorkers()
	stats.RenderTime = time.Since(start)
	return img, stats, nil
}

// assembleImage creates the film image and the statistics of the pixel bounds
func (r *Renderer) assembleImage(pixelStats [][]PixelStats) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(r.config.Film)
	bounds := r.config.PixelBounds

	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  max(1, r.config.SamplesPerPixel),
		MinSamples:  max(1, r.config.SamplesPerPixel),
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := &pixelStats[y][x]
			img.SetRGBA(x, y, vec3ToColor(pixel.GetColor()))

			stats.TotalSamples += pixel.SampleCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)
		}
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)

	return img, stats
}

// SavePNG writes img to filename, creating parent directories as needed
func SavePNG(filename string, img image.Image) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("error saving PNG: %w", err)
	}
	return file.Close()
}
