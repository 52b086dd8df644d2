package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	// DefaultLogDir specifies where log files are stored.
	DefaultLogDir = "logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "modreport",
		Usage: "Discord report forwarding and moderator review bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-dir",
				Value: DefaultLogDir,
				Usage: "Directory for log sessions",
			},
		},
		Commands: []*cli.Command{
			botCommand(),
			migrateCommand(),
			exportCommand(),
		},
	}

	return app.Run(context.Background(), os.Args)
}
