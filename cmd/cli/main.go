package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const version = "v0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "pdl",
		Usage:     "download one large file over several ranged connections",
		UsageText: "pdl [options] <url>",
		Version:   version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "file to save the URL contents into (default: last segment of the URL)",
				EnvVars: []string{"PDL_OUT"},
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Value:   6,
				Usage:   "number of chunks downloaded at once",
				EnvVars: []string{"PDL_THREADS"},
			},
			&cli.StringFlag{
				Name:    "chunksize",
				Aliases: []string{"c"},
				Value:   "20MiB",
				Usage:   "size of each chunk, e.g. 25MiB",
				EnvVars: []string{"PDL_CHUNK_SIZE"},
			},
			&cli.StringFlag{
				Name:    "burst",
				Value:   "1MiB",
				Usage:   "bytes read from a connection between cancellation checks",
				EnvVars: []string{"PDL_READ_BURST"},
			},
			&cli.StringFlag{
				Name:    "proxy",
				Usage:   "proxy to use, e.g. http://localhost:3000",
				EnvVars: []string{"PDL_PROXY"},
			},
			&cli.StringFlag{
				Name:    "user-agent",
				Usage:   "User-Agent header sent with every request",
				EnvVars: []string{"PDL_USER_AGENT"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "per-request timeout, 0 disables",
				EnvVars: []string{"PDL_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "decompress",
				Usage:   "decompress the stream before writing: none, gzip or zstd",
				EnvVars: []string{"PDL_DECOMPRESS"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{"PDL_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not show the progress bar",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log chunk scheduling",
			},
		},
		Before: func(cCtx *cli.Context) error {
			logrus.SetOutput(os.Stderr)
			if cCtx.Bool("verbose") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Action: func(cCtx *cli.Context) error {
			o, err := resolveOptions(cCtx)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cCtx.Context)
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					logrus.Warn("received interrupt, shutting down")
					cancel()
				case <-ctx.Done():
				}
			}()

			return runDownload(ctx, o, cCtx.App.Writer)
		},
	}
}

// resolveOptions layers defaults, the config file, then env vars and flags.
func resolveOptions(cCtx *cli.Context) (options, error) {
	o := defaultOptions()
	if path := cCtx.String("config"); path != "" {
		fc, err := loadConfigFile(path)
		if err != nil {
			return o, cli.Exit(err.Error(), ExitInvalidArgs)
		}
		if o, err = fc.apply(o); err != nil {
			return o, cli.Exit(err.Error(), ExitInvalidArgs)
		}
	}

	if cCtx.NArg() != 1 {
		return o, cli.Exit("exactly one URL is required", ExitInvalidArgs)
	}
	o.URL = cCtx.Args().First()

	if cCtx.IsSet("out") {
		o.Out = cCtx.String("out")
	}
	if cCtx.IsSet("threads") {
		o.Threads = cCtx.Int("threads")
	}
	if cCtx.IsSet("chunksize") {
		o.ChunkSize = cCtx.String("chunksize")
	}
	if cCtx.IsSet("burst") {
		o.ReadBurst = cCtx.String("burst")
	}
	if cCtx.IsSet("proxy") {
		o.Proxy = cCtx.String("proxy")
	}
	if cCtx.IsSet("user-agent") {
		o.UserAgent = cCtx.String("user-agent")
	}
	if cCtx.IsSet("timeout") {
		o.Timeout = cCtx.Duration("timeout")
	}
	if cCtx.IsSet("decompress") {
		o.Decompress = cCtx.String("decompress")
	}
	if cCtx.Bool("quiet") {
		o.Progress = false
	}
	if o.Timeout < 0 {
		o.Timeout = time.Duration(0)
	}
	return o, nil
}
