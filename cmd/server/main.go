package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("club-booking failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "club-booking",
		Usage: "book competition places for clubs with points",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to an optional YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serveAction,
			},
			{
				Name:   "consume",
				Usage:  "append booking events from RabbitMQ to the booking log",
				Action: consumeAction,
			},
			{
				Name:   "points",
				Usage:  "print every club's points as JSON",
				Action: pointsAction,
			},
			{
				Name:  "export",
				Usage: "write clubs, bookings and competitions to an xlsx workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "club-booking.xlsx", Usage: "output file"},
				},
				Action: exportAction,
			},
			{
				Name:   "seed",
				Usage:  "copy the JSON files into the configured bolt or mysql store",
				Action: seedAction,
			},
		},
	}
}
