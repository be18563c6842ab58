package cmd

import (
	"github.com/urfave/cli"
)

// NewApp returns the command line application
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "radiance"
	app.Usage = "render scenes with a learned or analytic radiance estimator"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a still frame",
			Description: `
Trace one path per camera sample. Paths pass through medium boundaries and end
at the first scattering surface, where the configured estimator supplies the
radiance: "bk" evaluates the ONNX radiance model, "position" the analytic
reflectance estimate or one of its false-colour modes.

Flags override the scene's Integrator statement.`,
			ArgsUsage: "[scene name or file.pbrt]",
			Flags: joinFlags(sceneFlags, integratorFlags, modelFlags, renderFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "render.png",
					Usage: "image filename for the rendered frame",
				},
			}),
			Action: RenderFrame,
		},
		{
			Name:        "bounds",
			Usage:       "print the scene bounds used by the false-colour modes",
			ArgsUsage:   "[scene name or file.pbrt]",
			Flags:       joinFlags(sceneFlags, integratorFlags),
			Action:      ShowBounds,
			Description: `Run the analytic preprocess pass without rendering.`,
		},
		{
			Name:  "features",
			Usage: "export estimator features with analytic targets as CSV",
			Description: `
Trace the scene with the analytic estimator and write the feature record of
every estimated hit, followed by the analytic radiance, for training.`,
			ArgsUsage: "[scene name or file.pbrt]",
			Flags: joinFlags(sceneFlags, integratorFlags, renderFlags, []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "features.csv",
					Usage: "CSV output file",
				},
			}),
			Action: ExportFeatures,
		},
		{
			Name:   "scenes",
			Usage:  "list available scenes",
			Flags:  sceneFlags[:1],
			Action: ListScenes,
		},
	}

	return app
}
