package cmd

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/df07/go-radiance-estimator/pkg/core"
	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ShowBounds runs the analytic preprocess pass and prints the normalization
// frame of the false-colour modes together with the sample arrays it reserves.
func ShowBounds(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := loadScene(ctx)
	if err != nil {
		return err
	}
	cfg, err := integratorConfig(ctx, s)
	if err != nil {
		return err
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(1)))
	bounds, err := integrator.Preprocess(s, s.Camera, sampler, cfg.Strategy, cfg.MaxDepth)
	if err != nil {
		return err
	}

	displayBounds(bounds, cfg, sampler.Requested2DArrays())
	return nil
}

func displayBounds(bounds integrator.SceneBounds, cfg integrator.Config, reserved []int) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Axis", "Min", "Max", "Extent"})
	for _, axis := range []struct {
		name     string
		min, max float64
	}{
		{"x", bounds.MinX, bounds.MaxX},
		{"y", bounds.MinY, bounds.MaxY},
		{"z", bounds.MinZ, bounds.MaxZ},
	} {
		table.Append([]string{
			axis.name,
			fmt.Sprintf("%.3f", axis.min),
			fmt.Sprintf("%.3f", axis.max),
			fmt.Sprintf("%.3f", axis.max-axis.min),
		})
	}
	table.SetFooter([]string{"", "", "MAX DIST", fmt.Sprintf("%.3f", bounds.MaxDist)})
	table.Render()

	total := 0
	for _, n := range reserved {
		total += n
	}
	logger.Noticef("scene bounds\n%s", buf.String())
	logger.Noticef("strategy %s, maxdepth %d: %d sample arrays reserved (%d samples per pixel sample)",
		cfg.Strategy, cfg.MaxDepth, len(reserved), total)
}
