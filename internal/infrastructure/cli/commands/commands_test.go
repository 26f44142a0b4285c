package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/recogaize/internal/app"
	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/infrastructure/config"
	"github.com/doeshing/recogaize/internal/infrastructure/history"
)

type stubClient struct {
	captions map[string]string
}

func (s stubClient) GenerateCaption(_ context.Context, image domain.ImageFile) (domain.CaptionResponse, error) {
	caption, ok := s.captions[image.Name]
	if !ok {
		return domain.CaptionResponse{}, domain.NewCaptionError("Server error: 500", nil)
	}
	return domain.CaptionResponse{Caption: caption, Success: true}, nil
}

func (s stubClient) CheckHealth(context.Context) (domain.HealthResponse, error) {
	return domain.HealthResponse{Status: "healthy", ModelLoaded: true, Raw: []byte(`{"status":"healthy","model_loaded":true}`)}, nil
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCaptionCommandPrintsCaptionsAndHistory(t *testing.T) {
	dir := t.TempDir()
	cat := writeImage(t, dir, "cat.png")
	cat2 := writeImage(t, dir, "cat2.png")
	dog := writeImage(t, dir, "dog.png")

	archive := history.NewFileStore(filepath.Join(dir, "history.jsonl"))
	container := &app.Container{
		Client: stubClient{captions: map[string]string{
			"cat.png": "a cat", "cat2.png": "a cat", "dog.png": "a dog",
		}},
		HistoryStore: archive,
	}

	out, err := execute(t, NewCaptionCommand(container), cat, cat2, dog)
	require.NoError(t, err)
	assert.Contains(t, out, "cat.png\n  a cat")
	assert.Contains(t, out, "History:\n  1. a dog")
	assert.Contains(t, out, "2. a cat")
	assert.NotContains(t, out, "3. ")

	records, err := archive.Records(10, "")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestCaptionCommandJSONAndFailure(t *testing.T) {
	dir := t.TempDir()
	cat := writeImage(t, dir, "cat.png")
	bad := writeImage(t, dir, "bad.png")
	container := &app.Container{Client: stubClient{captions: map[string]string{"cat.png": "a cat"}}}

	out, err := execute(t, NewCaptionCommand(container), "--json", cat, bad)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 images failed", err.Error())

	var payload struct {
		Results []captionReport        `json:"results"`
		History []domain.CaptionResult `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Results, 2)
	assert.Equal(t, "a cat", payload.Results[0].Caption)
	assert.Equal(t, "Server error: 500", payload.Results[1].Error)
	require.Len(t, payload.History, 1)
	assert.Equal(t, "a cat", payload.History[0].Caption)
}

func TestCaptionCommandRequiresImages(t *testing.T) {
	container := &app.Container{Client: stubClient{}}
	_, err := execute(t, NewCaptionCommand(container))
	require.Error(t, err)
	assert.Equal(t, ErrNoImages, err.Error())
}

func TestCaptionCommandMissingFile(t *testing.T) {
	container := &app.Container{Client: stubClient{}}
	out, err := execute(t, NewCaptionCommand(container), filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.Contains(t, out, "error: failed to read")
}

func TestHealthCommand(t *testing.T) {
	container := &app.Container{Client: stubClient{}}
	out, err := execute(t, NewHealthCommand(container))
	require.NoError(t, err)
	assert.Equal(t, "Status: healthy\nModel loaded: true\n", out)

	out, err = execute(t, NewHealthCommand(container), "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"healthy","model_loaded":true}`, out)
}

func TestHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	archive := history.NewFileStore(filepath.Join(dir, "history.jsonl"))
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, archive.Save(domain.HistoryRecord{ID: "1", Timestamp: base, FileName: "cat.png", Caption: "a cat on a sofa", Success: true, DurationMS: 100, Format: "png"}))
	require.NoError(t, archive.Save(domain.HistoryRecord{ID: "2", Timestamp: base.Add(time.Minute), FileName: "dog.jpg", Error: "Server error: 500", DurationMS: 300, Format: "jpeg"}))
	container := &app.Container{HistoryStore: archive}

	out, err := execute(t, NewHistoryCommand(container), "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "dog.jpg | 300ms | error: Server error: 500")
	assert.Contains(t, lines[1], "cat.png | 100ms | a cat on a sofa")

	out, err = execute(t, NewHistoryCommand(container), "search", "--query", "sofa")
	require.NoError(t, err)
	assert.Contains(t, out, "cat.png")
	assert.NotContains(t, out, "dog.jpg")

	out, err = execute(t, NewHistoryCommand(container), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries analyzed: 2")
	assert.Contains(t, out, "Success rate: 50.0%")
	assert.Contains(t, out, "Average duration: 200ms")
	assert.Contains(t, out, "cat (1)")

	export := filepath.Join(dir, "export.jsonl")
	_, err = execute(t, NewHistoryCommand(container), "export", export)
	require.NoError(t, err)
	data, err := os.ReadFile(export)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	_, err = execute(t, NewHistoryCommand(container), "clear")
	require.NoError(t, err)
	out, err = execute(t, NewHistoryCommand(container), "list")
	require.NoError(t, err)
	assert.Equal(t, MsgNoHistoryRecorded+"\n", out)
}

func TestHistorySearchRequiresQuery(t *testing.T) {
	container := &app.Container{HistoryStore: history.NewFileStore(filepath.Join(t.TempDir(), "h.jsonl"))}
	_, err := execute(t, NewHistoryCommand(container), "search")
	require.Error(t, err)
	assert.Equal(t, ErrQueryRequired, err.Error())
}

func TestHistoryUnavailableWhenArchiveDisabled(t *testing.T) {
	_, err := execute(t, NewHistoryCommand(&app.Container{}), "list")
	require.Error(t, err)
	assert.Equal(t, ErrHistoryStoreUnavailable, err.Error())
}

func TestCacheCommandsDisabled(t *testing.T) {
	_, err := execute(t, NewCacheCommand(&app.Container{}), "list")
	require.Error(t, err)
	assert.Equal(t, ErrCacheStoreUnavailable, err.Error())
}

func configContainer(t *testing.T) *app.Container {
	t.Helper()
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvLogLevel, "")
	loader := config.NewFileLoader(filepath.Join(t.TempDir(), "config.yaml"))
	return &app.Container{ConfigProvider: loader, ConfigLoader: loader}
}

func TestConfigGetSetPath(t *testing.T) {
	container := configContainer(t)

	out, err := execute(t, NewConfigCommand(container), "get", "--key", "api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api\n", out)

	out, err = execute(t, NewConfigCommand(container), "diff")
	require.NoError(t, err)
	assert.Equal(t, MsgNoDifferencesFromDefault+"\n", out)

	_, err = execute(t, NewConfigCommand(container), "set", "api.timeout", "30")
	require.NoError(t, err)
	out, err = execute(t, NewConfigCommand(container), "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "TimeoutSeconds")
	out, err = execute(t, NewConfigCommand(container), "get", "--key", "api.timeout")
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)

	_, err = execute(t, NewConfigCommand(container), "set", "api.nope", "1")
	require.Error(t, err)

	_, err = execute(t, NewConfigCommand(container), "set", "cache.backend", "memcached")
	require.Error(t, err)

	out, err = execute(t, NewConfigCommand(container), "path")
	require.NoError(t, err)
	assert.Equal(t, container.ConfigLoader.Path()+"\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, NewVersionCommand())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "recogaize version "))
}
