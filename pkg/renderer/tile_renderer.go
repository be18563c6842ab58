package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/df07/go-radiance-estimator/pkg/material"
)

// Integrator computes the radiance along a camera ray
type Integrator interface {
	RayColor(ctx context.Context, ray core.Ray, scene integrator.Scene, sampler core.Sampler, arena *core.Arena[material.SurfaceInteraction]) (core.Vec3, error)
}

// Camera generates camera rays for pixels
type Camera interface {
	GetRay(i, j int, sample core.Vec2) core.Ray
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Seed   int64           // Seed of the tile's sampler, for deterministic results
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle) *Tile {
	return &Tile{
		ID:     id,
		Bounds: bounds,
		Seed:   int64(id + 42), // +42 to avoid seed 0
	}
}

// NewTileGrid covers bounds with tiles of at most tileSize pixels a side
func NewTileGrid(bounds image.Rectangle, tileSize int) []*Tile {
	if tileSize <= 0 {
		tileSize = DefaultConfig().TileSize
	}

	var tiles []*Tile
	tileID := 0
	for y0 := bounds.Min.Y; y0 < bounds.Max.Y; y0 += tileSize {
		for x0 := bounds.Min.X; x0 < bounds.Max.X; x0 += tileSize {
			x1 := min(x0+tileSize, bounds.Max.X)
			y1 := min(y0+tileSize, bounds.Max.Y)
			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1)))
			tileID++
		}
	}

	return tiles
}

// TileRenderer renders the pixels of a tile with a fixed sample count
type TileRenderer struct {
	scene           integrator.Scene
	camera          Camera
	integrator      Integrator
	sampler         *core.RandomSampler // Holds the reservations every tile sampler copies
	samplesPerPixel int
}

// NewTileRenderer creates a tile renderer. sampler must already carry the
// integrator's sample array reservations.
func NewTileRenderer(scene integrator.Scene, camera Camera, integratorInst Integrator, sampler *core.RandomSampler, samplesPerPixel int) *TileRenderer {
	return &TileRenderer{
		scene:           scene,
		camera:          camera,
		integrator:      integratorInst,
		sampler:         sampler,
		samplesPerPixel: max(1, samplesPerPixel),
	}
}

// RenderTile renders tile into pixelStats, which is indexed in film
// coordinates. The arena is rewound after every sample. The first integrator
// error stops the tile.
func (tr *TileRenderer) RenderTile(ctx context.Context, tile *Tile, pixelStats [][]PixelStats, arena *core.Arena[material.SurfaceInteraction]) (RenderStats, error) {
	sampler := tr.sampler.Clone(tile.Seed)
	stats := RenderStats{
		TotalPixels: tile.Bounds.Dx() * tile.Bounds.Dy(),
		MaxSamples:  tr.samplesPerPixel,
		MinSamples:  tr.samplesPerPixel,
	}

	for j := tile.Bounds.Min.Y; j < tile.Bounds.Max.Y; j++ {
		for i := tile.Bounds.Min.X; i < tile.Bounds.Max.X; i++ {
			if err := ctx.Err(); err != nil {
				return stats, err
			}

			ps := &pixelStats[j][i]
			for s := 0; s < tr.samplesPerPixel; s++ {
				sampler.StartPixelSample()
				ray := tr.camera.GetRay(i, j, sampler.Get2D())

				mark := arena.Mark()
				radiance, err := tr.integrator.RayColor(ctx, ray, tr.scene, sampler, arena)
				arena.Rewind(mark)
				if err != nil {
					return stats, fmt.Errorf("pixel (%d, %d): %w", i, j, err)
				}
				ps.AddSample(radiance)
			}

			stats.TotalSamples += ps.SampleCount
			stats.MinSamples = min(stats.MinSamples, ps.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, ps.SampleCount)
		}
	}

	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	return stats, nil
}

// vec3ToColor converts a linear color to RGBA with gamma 2 and clamping
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.GammaCorrect(2.0).Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
