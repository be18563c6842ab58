package cmd

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/df07/go-radiance-estimator/pkg/inference"
	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/df07/go-radiance-estimator/pkg/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// RenderFrame renders a still frame and writes it as PNG.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := loadScene(ctx)
	if err != nil {
		return err
	}
	cfg, err := integratorConfig(ctx, s)
	if err != nil {
		return err
	}

	p, err := newPipeline(ctx, s, cfg)
	if err != nil {
		return stageError(err)
	}
	defer func() {
		if err := inference.ShutdownONNX(); err != nil {
			logger.Warningf("ONNX Runtime left running: %v", err)
		}
	}()
	defer p.Close()

	r, err := p.newRenderer(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("rendering with the %s integrator", cfg.Kind)
	img, stats, err := r.Render(context.Background())
	if err != nil {
		return stageError(err)
	}

	out := ctx.String("out")
	if err := renderer.SavePNG(out, img); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s", out)

	displayFrameStats(stats, renderer.CalculateAverageLuminance(img))
	displayPathStats(p.integrator.Controller.Stats().Snapshot())
	return nil
}

func displayFrameStats(stats renderer.RenderStats, luminance float64) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pixels", "Samples", "Samples/pixel", "Tiles", "Workers", "Avg luminance", "Render time"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.TotalPixels),
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%.1f (%d - %d)", stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed),
		fmt.Sprintf("%d", stats.Tiles),
		fmt.Sprintf("%d", stats.Workers),
		fmt.Sprintf("%.4f", luminance),
		stats.RenderTime.String(),
	})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}

func displayPathStats(snap integrator.StatsSnapshot) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Paths", "Zero radiance", "Misses", "Skipped surfaces", "Estimates"})
	table.Append([]string{
		fmt.Sprintf("%d", snap.Paths),
		fmt.Sprintf("%02.1f %%", snap.ZeroRadiancePercent()),
		fmt.Sprintf("%d", snap.Misses),
		fmt.Sprintf("%d", snap.Skips),
		fmt.Sprintf("%d", snap.Estimates),
	})
	table.Render()

	lengths := make([]int, 0, len(snap.PathLengths))
	for length := range snap.PathLengths {
		lengths = append(lengths, length)
	}
	sort.Ints(lengths)

	distribution := tablewriter.NewWriter(&buf)
	distribution.SetAutoFormatHeaders(false)
	distribution.SetHeader([]string{"Intersections", "Paths", "% of paths"})
	for _, length := range lengths {
		n := snap.PathLengths[length]
		distribution.Append([]string{
			fmt.Sprintf("%d", length),
			fmt.Sprintf("%d", n),
			fmt.Sprintf("%02.1f %%", 100*float64(n)/float64(snap.Paths)),
		})
	}
	distribution.Render()

	logger.Noticef("path statistics\n%s", buf.String())
}
