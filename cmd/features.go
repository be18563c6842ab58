package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/df07/go-radiance-estimator/pkg/integrator"
	"github.com/urfave/cli"
)

// ExportFeatures traces the scene with the analytic estimator and writes one
// CSV row per estimate: the features the learned estimator would see and the
// analytic radiance as training target.
func ExportFeatures(ctx *cli.Context) error {
	setupLogging(ctx)

	s, err := loadScene(ctx)
	if err != nil {
		return err
	}
	cfg, err := integratorConfig(ctx, s)
	if err != nil {
		return err
	}
	if cfg.Kind != integrator.EstimatorAnalytic || cfg.Mode != integrator.ModeRGB {
		logger.Warningf("features are exported with the analytic rgb estimator, not %s/%s", cfg.Kind, cfg.Mode)
		cfg.Kind = integrator.EstimatorAnalytic
		cfg.Mode = integrator.ModeRGB
	}

	p, err := newPipeline(ctx, s, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	out := ctx.String("out")
	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	recorder, err := integrator.NewRecorder(file)
	if err != nil {
		return err
	}
	p.integrator.Controller.SetRecorder(recorder)

	r, err := p.newRenderer(ctx)
	if err != nil {
		return err
	}
	if _, _, err := r.Render(context.Background()); err != nil {
		return err
	}

	if err := recorder.Flush(); err != nil {
		return err
	}
	logger.Noticef("wrote %d feature rows to %s", recorder.Rows(), out)
	return file.Close()
}
