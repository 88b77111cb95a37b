package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// options is everything the download command needs, after defaults, the
// config file, env vars and flags have been layered.
type options struct {
	URL        string
	Out        string
	Threads    int
	ChunkSize  string
	ReadBurst  string
	Proxy      string
	UserAgent  string
	Timeout    time.Duration
	Decompress string
	Progress   bool
}

func defaultOptions() options {
	return options{
		Threads:   6,
		ChunkSize: "20MiB",
		ReadBurst: "1MiB",
		Progress:  true,
	}
}

// fileConfig is the YAML form of options. Durations and sizes stay strings.
type fileConfig struct {
	Out        string `yaml:"out"`
	Threads    int    `yaml:"threads"`
	ChunkSize  string `yaml:"chunk_size"`
	ReadBurst  string `yaml:"read_burst"`
	Proxy      string `yaml:"proxy"`
	UserAgent  string `yaml:"user_agent"`
	Timeout    string `yaml:"timeout"`
	Decompress string `yaml:"decompress"`
	Progress   *bool  `yaml:"progress"`
}

func loadConfigFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, errors.Wrap(err, "parse config file")
	}
	return fc, nil
}

// apply overlays the non-zero values of fc onto o.
func (fc fileConfig) apply(o options) (options, error) {
	if fc.Out != "" {
		o.Out = fc.Out
	}
	if fc.Threads != 0 {
		o.Threads = fc.Threads
	}
	if fc.ChunkSize != "" {
		o.ChunkSize = fc.ChunkSize
	}
	if fc.ReadBurst != "" {
		o.ReadBurst = fc.ReadBurst
	}
	if fc.Proxy != "" {
		o.Proxy = fc.Proxy
	}
	if fc.UserAgent != "" {
		o.UserAgent = fc.UserAgent
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return o, errors.Wrap(err, "parse timeout")
		}
		o.Timeout = d
	}
	if fc.Decompress != "" {
		o.Decompress = fc.Decompress
	}
	if fc.Progress != nil {
		o.Progress = *fc.Progress
	}
	return o, nil
}
