package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/generichash/poshash"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetInt(ConfigWorkers), runtime.NumCPU())
	is.Equal(c.GetFloat64(ConfigMemoryFraction), poshash.DefaultMemoryFraction)
	is.Equal(c.LogLevel(), zerolog.InfoLevel)
	is.Equal(len(c.Args()), 0)
	is.Equal(len(c.HashOptions()), 2)
}

func TestEnvOverride(t *testing.T) {
	is := is.New(t)
	t.Setenv("GENERICHASH_WORKERS", "3")
	t.Setenv("GENERICHASH_MEMORY_FRACTION", "0.25")
	t.Setenv("GENERICHASH_LOG_LEVEL", "debug")
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetInt(ConfigWorkers), 3)
	is.Equal(c.GetFloat64(ConfigMemoryFraction), 0.25)
	is.Equal(c.LogLevel(), zerolog.DebugLevel)
}

func TestFlagBeatsEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("GENERICHASH_WORKERS", "3")
	c := &Config{}
	is.NoErr(c.Load([]string{"--workers", "7", "load", "tictactoe.yaml"}))
	is.Equal(c.GetInt(ConfigWorkers), 7)
	is.Equal(c.Args(), []string{"load", "tictactoe.yaml"})
}

func TestConfigFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "generichash.yaml")
	is.NoErr(os.WriteFile(path, []byte("workers: 5\nspecs-path: /srv/specs\n"), 0o644))
	c := &Config{}
	is.NoErr(c.Load([]string{"--config", path}))
	is.Equal(c.GetInt(ConfigWorkers), 5)
	is.Equal(c.GetString(ConfigSpecsPath), "/srv/specs")

	c.AdjustRelativePaths("/opt/generichash")
	is.Equal(c.GetString(ConfigSpecsPath), "/srv/specs")
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load(nil))
	c.AdjustRelativePaths("/opt/generichash")
	is.Equal(c.GetString(ConfigSpecsPath), "/opt/generichash/data/specs")
}

func TestBadLogLevel(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"--log-level", "loud"}))
	is.Equal(c.LogLevel(), zerolog.InfoLevel)
}
