package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"gopkg.in/yaml.v3"
)

const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"

	SinkCSV    = "csv"
	SinkPebble = "pebble"
)

// Config is one decode run. Files may be yaml or toml, unset keys keep the
// values of Default.
type Config struct {
	Input        string   `yaml:"input" toml:"input"`
	Output       string   `yaml:"output" toml:"output"`
	Schema       string   `yaml:"schema" toml:"schema"`
	Workers      int      `yaml:"workers" toml:"workers"`
	SliceQueue   int      `yaml:"slice_queue" toml:"slice_queue"`
	LineQueue    int      `yaml:"line_queue" toml:"line_queue"`
	Fields       []string `yaml:"fields" toml:"fields"`
	Sequential   bool     `yaml:"sequential" toml:"sequential"`
	OnError      string   `yaml:"on_error" toml:"on_error"` // skip: 跳过并记录, abort: 终止
	StrictSubcom bool     `yaml:"strict_subcom" toml:"strict_subcom"`
	StrictArrays bool     `yaml:"strict_arrays" toml:"strict_arrays"`
	Sink         string   `yaml:"sink" toml:"sink"`
	LogLevel     string   `yaml:"log_level" toml:"log_level"`
}

func Default() *Config {
	return &Config{
		Workers:    runtime.NumCPU(),
		SliceQueue: 1024,
		LineQueue:  1024,
		OnError:    OnErrorSkip,
		Sink:       SinkCSV,
		LogLevel:   "info",
	}
}

// Load reads a config file over the defaults, the format follows the extension.
func Load(path string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "load config %s", path)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "load config %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config format '%s', expect .yaml, .yml or .toml", path)
	}
	cfg.Fields = ParseFields(cfg.Fields)
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers should be at least 1, got %d", c.Workers)
	}
	if c.SliceQueue < 1 || c.LineQueue < 1 {
		return errors.Errorf("queue depths should be at least 1, got slice=%d line=%d", c.SliceQueue, c.LineQueue)
	}
	switch c.OnError {
	case OnErrorSkip, OnErrorAbort:
	default:
		return errors.Errorf("on_error should be '%s' or '%s', got '%s'", OnErrorSkip, OnErrorAbort, c.OnError)
	}
	switch c.Sink {
	case SinkCSV, SinkPebble:
	default:
		return errors.Errorf("sink should be '%s' or '%s', got '%s'", SinkCSV, SinkPebble, c.Sink)
	}
	return nil
}

// ParseFields normalises a field filter given as a list or as a comma
// separated string.
func ParseFields(v any) []string {
	var raw []string
	if s, ok := v.(string); ok {
		raw = strings.Split(s, ",")
	} else {
		for _, item := range cast.ToStringSlice(v) {
			raw = append(raw, strings.Split(item, ",")...)
		}
	}
	var fields []string
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
