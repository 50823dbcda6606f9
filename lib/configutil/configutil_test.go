package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string            `json:"name"`
	Timeout int               `json:"timeout"`
	Headers map[string]string `json:"headers"`
}

func write(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalPath(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "carcrawler.json5", expected: "carcrawler.local.json5"},
		{input: "conf/app.json", expected: "conf/app.local.json"},
		{input: "noext", expected: "noext.local"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, LocalPath(row.input))
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.json5")

	write(t, name, `{
		// comments and trailing commas are fine
		name: "base",
		timeout: 10,
		headers: {accept: "application/json",},
	}`)
	write(t, filepath.Join(dir, "app.local.json5"), `{timeout: 30}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "base", cfg.Name)
	require.Equal(t, 30, cfg.Timeout)
	require.Equal(t, "application/json", cfg.Headers["accept"])
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.json5")
	write(t, filepath.Join(dir, "app.local.json5"), `{name: "local"}`)

	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Name)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nothing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigMalformed(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bad.json5")
	write(t, name, `{name: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	write(t, filepath.Join(root, "app.json5"), `{name: "found"}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := ReadRecursively[testConfig]("app.json5")
	require.NoError(t, err)
	require.Equal(t, "found", cfg.Name)
}
