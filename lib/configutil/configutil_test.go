package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string   `json:"base_url"`
	MaxJobs int      `json:"max_jobs"`
	Tags    []string `json:"tags"`
	Nested  struct {
		Path string `json:"path"`
	} `json:"nested"`
}

func write(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "config.local.json5", LocalPath("config.json5"))
	require.Equal(t, filepath.Join("a", "b", "telemetry.local.json5"), LocalPath(filepath.Join("a", "b", "telemetry.json5")))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	write(t, name, `{
		// comments are allowed
		base_url: "https://espritconnect.com",
		max_jobs: 200,
		nested: { path: "data" },
	}`)
	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://espritconnect.com", cfg.BaseUrl)
	require.Equal(t, 200, cfg.MaxJobs)

	write(t, filepath.Join(dir, "config.local.json5"), `{max_jobs: 5, tags: ["local"]}`)
	cfg, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://espritconnect.com", cfg.BaseUrl)
	require.Equal(t, 5, cfg.MaxJobs)
	require.Equal(t, []string{"local"}, cfg.Tags)
	require.Equal(t, "data", cfg.Nested.Path)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "config.local.json5"), `{max_jobs: 7}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, 7, cfg.MaxJobs)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	write(t, name, `{max_jobs: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "settings.json5"), `{base_url: "http://found"}`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	chdir(t, nested)

	cfg, err := ReadRecursively[testConfig]("settings.json5")
	require.NoError(t, err)
	require.Equal(t, "http://found", cfg.BaseUrl)

	_, err = ReadRecursively[testConfig]("does-not-exist.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// chdir is a Go 1.21-compatible stand-in for t.Chdir (added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
