package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentgw/internal/platform/config"
	"contentgw/internal/safety"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyText(t *testing.T) {
	out, err := runCommand(t, "", "classify", "explicit", "nude", "porn", "xxx")
	require.NoError(t, err)

	var res safety.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, safety.ClassNSFW, res.Classification)
}

func TestClassifyReadsStdin(t *testing.T) {
	out, err := runCommand(t, "a lovely landscape", "classify")
	require.NoError(t, err)

	var res safety.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, safety.ClassSafe, res.Classification)
}

func TestClassifyURL(t *testing.T) {
	out, err := runCommand(t, "", "classify", "--url", "https://example.com/page")
	require.NoError(t, err)

	var res safety.URLAssessment
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "example.com", res.Domain)
}

func TestClassifyRejectsEmptyInput(t *testing.T) {
	_, err := runCommand(t, "   ", "classify")
	require.Error(t, err)

	_, err = runCommand(t, "", "classify", "--image", "ftp://nope")
	require.Error(t, err)
}

func TestJanitorRunsEveryJob(t *testing.T) {
	j := newJanitor(slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var seen []string
	j.add("first", func(_ context.Context, at time.Time) (int, error) {
		assert.Equal(t, now, at)
		seen = append(seen, "first")
		return 0, errors.New("backend down")
	})
	j.add("second", count(func(context.Context, time.Time) int {
		seen = append(seen, "second")
		return 3
	}))

	j.tick(context.Background(), now)

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestBuildSourcesFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Booru = []config.Booru{{ID: "gel", BaseURL: "https://gel.example"}}
	cfg.Sources.Listing = []config.Listing{{
		ID:         "clips",
		BaseURL:    "https://clips.example",
		SearchPath: "/search?q={query}&p={page}",
		BrowsePath: "/latest/{page}",
		Selectors:  config.ListingSelectors{Block: ".item", Link: "a"},
	}}

	registry, err := buildSources(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)

	var ids []string
	for _, a := range registry.All() {
		ids = append(ids, a.ID())
	}
	assert.ElementsMatch(t, []string{"jikan", "kitsu", "gel", "clips"}, ids)
}
