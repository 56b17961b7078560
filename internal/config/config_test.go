package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the XDG dirs at a temp dir so no user config leaks in
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("COACH_CONFIG", "")
	return dir
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("coach", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(viper.New(), newFlags(t))
	require.NoError(t, err)

	dataDir := filepath.Join(dir, "data", AppName)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, "json", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dataDir, "progress.json"), cfg.Store.Path)
	assert.Equal(t, time.Second, cfg.Player.TickInterval)
	assert.Equal(t, filepath.Join(dataDir, "coach.log"), cfg.Log.File)
	assert.Equal(t, 5, cfg.Log.MaxSizeMB)
	assert.Empty(t, cfg.Speech.Command)
	assert.Empty(t, cfg.File)
}

func TestLoad_NilFlagSet(t *testing.T) {
	isolate(t)
	cfg, err := Load(viper.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Store.Backend)
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", AppName, "config.yaml"), `
store:
  backend: sqlite
speech:
  command: espeak
  args: ["-s", "150"]
log:
  max_backups: 7
`)

	cfg, err := Load(viper.New(), newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, "data", AppName, "progress.db"), cfg.Store.Path)
	assert.Equal(t, "espeak", cfg.Speech.Command)
	assert.Equal(t, []string{"-s", "150"}, cfg.Speech.Args)
	assert.Equal(t, 7, cfg.Log.MaxBackups)
	assert.Equal(t, filepath.Join(dir, "config", AppName, "config.yaml"), cfg.File)
}

func TestLoad_ExplicitTOMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "coach.toml")
	writeFile(t, path, `
data_dir = "/tmp/coach-test"

[player]
tick_interval = "250ms"
`)

	cfg, err := Load(viper.New(), newFlags(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/coach-test", cfg.DataDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Player.TickInterval)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(viper.New(), newFlags(t, "--config", filepath.Join(dir, "nope.yaml")))
	assert.Error(t, err)
}

func TestLoad_BrokenDefaultFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", AppName, "config.yaml"), "store: [unclosed")

	_, err := Load(viper.New(), newFlags(t))
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config", AppName, "config.yaml"), `
store:
  backend: sqlite
speech:
  command: say
`)
	t.Setenv("COACH_STORE_BACKEND", "memory")
	t.Setenv("COACH_SPEECH_COMMAND", "espeak")

	cfg, err := Load(viper.New(), newFlags(t, "--speech-command", "festival"))
	require.NoError(t, err)

	// env beats file, flag beats env
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "festival", cfg.Speech.Command)
}

func TestLoad_Validation(t *testing.T) {
	tests := map[string][]string{
		"unknown backend": {"--store", "postgres"},
		"zero tick":       {"--tick-interval", "0s"},
		"negative tick":   {"--tick-interval", "-1s"},
		"missing catalog": {"--catalog", "/definitely/not/here.yaml"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			_, err := Load(viper.New(), newFlags(t, args...))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyDataDir(t *testing.T) {
	isolate(t)
	v := viper.New()
	v.Set(KeyDataDir, "")
	_, err := Load(v, newFlags(t))
	assert.ErrorContains(t, err, KeyDataDir)
}

func TestLoad_NegativeRotation(t *testing.T) {
	isolate(t)
	t.Setenv("COACH_LOG_MAX_AGE_DAYS", "-1")
	_, err := Load(viper.New(), newFlags(t))
	assert.Error(t, err)
}

func TestDefaultDirs(t *testing.T) {
	dir := isolate(t)
	assert.Equal(t, filepath.Join(dir, "config", AppName), DefaultConfigDir())
	assert.Equal(t, filepath.Join(dir, "data", AppName), DefaultDataDir())
}
