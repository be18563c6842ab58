package main

import (
	"os"

	"github.com/df07/go-radiance-estimator/cmd"
	"github.com/df07/go-radiance-estimator/pkg/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	if err := cmd.NewApp().Run(os.Args); err != nil {
		log.New("radiance").Fatalf("error: %v", err)
	}
}
