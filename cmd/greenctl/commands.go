package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"example.com/greenpoints/internal/api"
	"example.com/greenpoints/internal/config"
	"example.com/greenpoints/internal/domain"
)

func newApp(service *domain.Service, out io.Writer) *cli.App {
	return &cli.App{
		Name:   "greenctl",
		Usage:  "log eco activities and inspect GreenPoints standings",
		Writer: out,
		Commands: []*cli.Command{
			commandSeed(service, out),
			commandLog(service, out),
			commandLeaderboard(service, out),
			commandSummary(service, out),
		},
	}
}

func commandSeed(service *domain.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "log the demo activities for a user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Value: domain.DefaultSeedUsername},
		},
		Action: func(c *cli.Context) error {
			results, err := service.Seed(c.Context, c.String("username"))
			if err != nil {
				return err
			}
			return printJSON(out, api.NewSeedResponse(results))
		},
	}
}

func commandLog(service *domain.Service, out io.Writer) *cli.Command {
	types := make([]string, 0)
	for _, t := range domain.ActivityTypes() {
		types = append(types, string(t))
	}

	return &cli.Command{
		Name:  "log",
		Usage: "log one activity",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "type", Required: true, Usage: strings.Join(types, ", ")},
			&cli.IntFlag{Name: "quantity", Value: 1},
			&cli.StringFlag{Name: "notes"},
		},
		Action: func(c *cli.Context) error {
			input := domain.LogActivityInput{
				Username:     c.String("username"),
				ActivityType: c.String("type"),
				Quantity:     c.Int("quantity"),
			}
			if c.IsSet("notes") {
				notes := c.String("notes")
				input.Notes = &notes
			}

			res, err := service.LogActivity(c.Context, input)
			if err != nil {
				return fmt.Errorf("log %s: %w", input.ActivityType, err)
			}
			return printJSON(out, api.NewLogActivityResponse(*res))
		},
	}
}

func commandLeaderboard(service *domain.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "leaderboard",
		Usage: "print the top users by points",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: domain.DefaultLeaderboardLimit},
		},
		Action: func(c *cli.Context) error {
			entries, err := service.Leaderboard(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			return printJSON(out, api.NewLeaderboardView(entries))
		},
	}
}

func commandSummary(service *domain.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "print a user's shareable summary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
		},
		Action: func(c *cli.Context) error {
			summary, err := service.ShareableSummary(c.Context, c.String("username"))
			if err != nil {
				return err
			}
			return printJSON(out, api.NewSummaryView(*summary))
		},
	}
}

// warnEphemeral flags runs whose records vanish with the process.
func warnEphemeral(cfg config.Config, logger logrus.FieldLogger) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, greenctl records are discarded when the command exits")
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
