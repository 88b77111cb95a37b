package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pdl.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
out: big.iso
threads: 12
chunk_size: 32MiB
read_burst: 256KiB
proxy: http://localhost:3000
user_agent: pdl-test
timeout: 45s
decompress: zstd
progress: false
`)

	fc, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	o, err := fc.apply(defaultOptions())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := options{
		Out:        "big.iso",
		Threads:    12,
		ChunkSize:  "32MiB",
		ReadBurst:  "256KiB",
		Proxy:      "http://localhost:3000",
		UserAgent:  "pdl-test",
		Timeout:    45 * time.Second,
		Decompress: "zstd",
		Progress:   false,
	}
	if o != want {
		t.Errorf("options = %+v, want %+v", o, want)
	}
}

func TestConfigFileKeepsDefaults(t *testing.T) {
	fc, err := loadConfigFile(writeConfig(t, "threads: 2\n"))
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	o, err := fc.apply(defaultOptions())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	def := defaultOptions()
	if o.Threads != 2 || o.ChunkSize != def.ChunkSize || o.ReadBurst != def.ReadBurst || !o.Progress {
		t.Errorf("unexpected options %+v", o)
	}
}

func TestConfigFileErrors(t *testing.T) {
	if _, err := loadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loadConfigFile(writeConfig(t, "threads: [1, 2")); err == nil {
		t.Error("expected error for malformed YAML")
	}
	fc, err := loadConfigFile(writeConfig(t, "timeout: soon\n"))
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if _, err := fc.apply(defaultOptions()); err == nil {
		t.Error("expected error for bad timeout")
	}
}

func TestResolveOptionsFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "threads: 12\nchunk_size: 32MiB\nout: from-file\n")

	var got options
	app := newApp()
	app.Action = func(cCtx *cli.Context) error {
		var err error
		got, err = resolveOptions(cCtx)
		return err
	}
	args := []string{"pdl", "--config", path, "-t", "3", "-q", "http://example.com/x.bin"}
	if err := app.Run(args); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got.URL != "http://example.com/x.bin" || got.Threads != 3 || got.ChunkSize != "32MiB" || got.Out != "from-file" || got.Progress {
		t.Errorf("unexpected options %+v", got)
	}
}
