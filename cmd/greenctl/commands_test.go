package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/greenpoints/internal/api"
	"example.com/greenpoints/internal/config"
	"example.com/greenpoints/internal/docstore"
	"example.com/greenpoints/internal/domain"
)

func TestSeedThenLeaderboardCommands(t *testing.T) {
	service := newTestService()
	var out bytes.Buffer
	cliApp := newApp(service, &out)

	require.NoError(t, cliApp.RunContext(context.Background(), []string{"greenctl", "seed"}))
	var seeded api.SeedResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &seeded))
	require.True(t, seeded.OK)
	require.Len(t, seeded.Created, 4)

	out.Reset()
	require.NoError(t, cliApp.RunContext(context.Background(), []string{"greenctl", "leaderboard", "--limit", "3"}))
	require.JSONEq(t, `[{"username":"neo","points":112}]`, out.String())
}

func TestLogAndSummaryCommands(t *testing.T) {
	service := newTestService()
	var out bytes.Buffer
	cliApp := newApp(service, &out)

	args := []string{"greenctl", "log", "--username", "trinity", "--type", "tree_planting", "--notes", "oak"}
	require.NoError(t, cliApp.RunContext(context.Background(), args))
	var logged api.LogActivityResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &logged))
	require.Equal(t, 50, logged.Points)
	require.Len(t, logged.Badges, 1)

	out.Reset()
	require.NoError(t, cliApp.RunContext(context.Background(), []string{"greenctl", "summary", "--username", "trinity"}))
	var summary api.SummaryView
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	require.Equal(t, 50, summary.TotalPoints)
	require.Equal(t, "trinity earned 50 Green Points with 1 eco actions! 🌿", summary.ShareText)

	activities, err := service.ListActivities(context.Background(), "trinity", 0)
	require.NoError(t, err)
	require.NotNil(t, activities[0].Notes)
	require.Equal(t, "oak", *activities[0].Notes)
}

func TestLogCommandRejectsUnknownType(t *testing.T) {
	var out bytes.Buffer
	cliApp := newApp(newTestService(), &out)

	err := cliApp.RunContext(context.Background(), []string{"greenctl", "log", "--username", "neo", "--type", "teleport"})
	require.ErrorIs(t, err, domain.ErrInvalidActivityType)
	require.Empty(t, out.String())
}

func newTestService() *domain.Service {
	logger, _ := test.NewNullLogger()
	return domain.NewService(docstore.NewMemoryStore(), domain.WithLogger(logger))
}

func TestWarnEphemeralOnlyWithoutDatabase(t *testing.T) {
	logger, hook := test.NewNullLogger()

	warnEphemeral(config.Config{}, logger)
	require.Len(t, hook.Entries, 1)
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	hook.Reset()
	warnEphemeral(config.Config{DatabaseURL: "postgres://greenpoints@localhost/greenpoints"}, logger)
	require.Empty(t, hook.Entries)
}
