package config

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/generichash/poshash"
)

const (
	ConfigLogLevel       = "log-level"
	ConfigWorkers        = "workers"
	ConfigMemoryFraction = "memory-fraction"
	ConfigHistoryFile    = "history-file"
	ConfigSpecsPath      = "specs-path"
	ConfigFile           = "config"

	envPrefix = "GENERICHASH"
)

// Config layers, highest priority first: command-line flags, GENERICHASH_*
// environment variables, the optional config file, then defaults.
type Config struct {
	*viper.Viper
	args []string
}

func (c *Config) Load(args []string) error {
	c.Viper = viper.New()

	fs := pflag.NewFlagSet("generichash", pflag.ContinueOnError)
	fs.String(ConfigLogLevel, "info", "log level: debug, info, warn, error")
	fs.Int(ConfigWorkers, runtime.NumCPU(), "goroutines used to enumerate configurations")
	fs.Float64(ConfigMemoryFraction, poshash.DefaultMemoryFraction,
		"largest share of system memory one context's tables may take; 0 disables the check")
	fs.String(ConfigHistoryFile, "/tmp/generichash_history", "shell history file")
	fs.String(ConfigSpecsPath, "./data/specs", "directory holding board description files")
	fs.String(ConfigFile, "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()

	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.GetString(ConfigLogLevel)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// HashOptions turns the context-building settings into poshash options.
func (c *Config) HashOptions() []poshash.Option {
	return []poshash.Option{
		poshash.WithWorkers(c.GetInt(ConfigWorkers)),
		poshash.WithMemoryFraction(c.GetFloat64(ConfigMemoryFraction)),
	}
}

// AdjustRelativePaths resolves a relative specs path against basePath,
// normally the directory of the executable.
func (c *Config) AdjustRelativePaths(basePath string) {
	p := c.GetString(ConfigSpecsPath)
	if p != "" && !filepath.IsAbs(p) {
		c.Set(ConfigSpecsPath, filepath.Join(basePath, p))
	}
}
