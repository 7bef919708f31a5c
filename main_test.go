package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/thedittmer/intel-hub/internal/failure"
	"github.com/thedittmer/intel-hub/internal/models"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCodeFor(nil))
	assert.Equal(t, ExitConfigError, exitCodeFor(failure.New(failure.Config, "op", errors.New("x"))))
	assert.Equal(t, ExitConfigError, exitCodeFor(&failure.StatusError{StatusCode: 401}))
	assert.Equal(t, ExitDataError, exitCodeFor(&failure.StatusError{StatusCode: 503}))
	assert.Equal(t, ExitDataError, exitCodeFor(&failure.StatusError{StatusCode: 429}))
	assert.Equal(t, ExitGeneralError, exitCodeFor(errors.New("plain")))
}

func TestSearchFeed(t *testing.T) {
	items := []models.Item{
		{Title: "Scaling laws for LLM agents", Source: "arXiv"},
		{Title: "New GPU", Source: "NVIDIA", Content: "<p>Faster inference for LLM serving</p>"},
		{Title: "Rocket launch", Source: "News"},
	}

	assert.Equal(t, []int{0, 1}, searchFeed(items, "llm"))
	assert.Equal(t, []int{1}, searchFeed(items, "LLM nvidia"))
	assert.Empty(t, searchFeed(items, "quantum"))
	assert.Nil(t, searchFeed(items, "   "))
}

func TestNewAppCommands(t *testing.T) {
	app := newApp()
	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"refresh", "show", "summarize", "save", "bookmarks", "blogs", "init-sheet", "interactive"} {
		assert.True(t, names[want], want)
	}
}

func TestBlogsAddWritesBlogsFile(t *testing.T) {
	dir := t.TempDir()

	err := newApp().Run([]string{"intel-hub", "--data-dir", dir, "blogs", "add", "Hugging", "Face", "https://huggingface.co/blog/feed.xml"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "blogs.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hugging Face https://huggingface.co/blog/feed.xml\n")

	err = newApp().Run([]string{"intel-hub", "--data-dir", dir, "blogs", "add", "Hugging Face", "https://example.com/feed"})
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitConfigError, exit.ExitCode())
}

func TestBlogsAddUsage(t *testing.T) {
	err := newApp().Run([]string{"intel-hub", "--data-dir", t.TempDir(), "blogs", "add", "OnlyName"})
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, ExitUsageError, exit.ExitCode())
}
