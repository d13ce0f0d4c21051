// Command bikedash serves the bike-sharing dashboard.
//
// Usage:
//
//	bikedash [serve] [flags]          run the HTTP dashboard (default)
//	bikedash render -out DIR [flags]  write every chart of every view to DIR
//
// Settings come from -config (JSON), BIKEDASH_* environment variables and
// flags, in increasing order of precedence.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/text/language"

	"github.com/YuminosukeSato/bikedash/analysis"
	"github.com/YuminosukeSato/bikedash/chart"
	"github.com/YuminosukeSato/bikedash/config"
	"github.com/YuminosukeSato/bikedash/dashboard"
	"github.com/YuminosukeSato/bikedash/dataset"
	"github.com/YuminosukeSato/bikedash/export"
	"github.com/YuminosukeSato/bikedash/metrics"
	"github.com/YuminosukeSato/bikedash/pkg/errors"
	"github.com/YuminosukeSato/bikedash/pkg/log"
	"github.com/YuminosukeSato/bikedash/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bikedash: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "render") {
		cmd, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("bikedash "+cmd, flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(config.EnvPrefix+"CONFIG"), "JSON settings file")
	outDir := fs.String("out", "charts", "output directory (render)")
	format := fs.String("format", "svg", "image format: svg or png (render)")

	// The config file has to be known before the other flags get their
	// defaults, so it is looked up in a first pass.
	pre := flag.NewFlagSet("", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	prePath := pre.String("config", *configPath, "")
	_ = pre.Parse(filterConfigArgs(args))

	cfg, err := config.Load(*prePath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.SetupLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		return err
	}
	lang := dashboard.MatchLanguage(cfg.Language)

	var m *metrics.Metrics
	if cfg.Metrics && cmd == "serve" {
		m = metrics.NewMetrics()
	}
	cache := dataset.NewCache(m, logger, dataset.WithDelimiter(cfg.DelimiterRune()))

	ds, err := cache.Get(cfg.DataPath)
	if err != nil {
		logger.Error("dataset unavailable", err, log.PathKey, cfg.DataPath)
		return err
	}

	switch cmd {
	case "render":
		f, err := chart.ParseFormat(*format)
		if err != nil {
			return err
		}
		return render(dashboard.New(ds, dashboard.WithLanguage(lang), dashboard.WithLogger(logger)), *outDir, f, logger)
	default:
		return serve(cfg, cache, lang, m, logger)
	}
}

func serve(cfg config.Config, cache *dataset.Cache, lang language.Tag, m *metrics.Metrics, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		go func() {
			if err := dataset.Watch(ctx, cache, cfg.DataPath, logger); err != nil {
				logger.Error("file watcher stopped", err, log.PathKey, cfg.DataPath)
			}
		}()
	}

	opts := []server.Option{server.WithLogger(logger), server.WithLanguage(lang)}
	if m != nil {
		opts = append(opts, server.WithMetrics(m))
	}
	srv := server.New(cache, cfg.DataPath, opts...)
	return srv.Run(ctx, server.HTTPConfig{
		Addr:            cfg.Addr,
		ReadTimeout:     cfg.ReadTimeout.Std(),
		WriteTimeout:    cfg.WriteTimeout.Std(),
		ShutdownTimeout: cfg.ShutdownTimeout.Std(),
	})
}

// render writes the charts of every view, over the full selection, as
// <view>-<index>.<format>, plus one <view>.xlsx workbook per view.
func render(d *dashboard.Dashboard, dir string, format chart.Format, logger log.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	sel := analysis.AllSelected(d.Dataset())
	for _, v := range d.Views() {
		page, err := d.Render(v.ID, sel)
		if err != nil {
			return err
		}
		for i, c := range page.Charts() {
			name := filepath.Join(dir, fmt.Sprintf("%s-%d.%s", v.ID, i, format))
			if err := writeFile(name, func(f *os.File) error { return chart.Render(c, format, f) }); err != nil {
				return err
			}
			logger.Info("chart written", log.ViewKey, string(v.ID), log.ChartKindKey, string(c.Kind), log.PathKey, name)
		}
		name := filepath.Join(dir, string(v.ID)+".xlsx")
		if err := writeFile(name, func(f *os.File) error { return export.WriteXLSX(f, page) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(name string, write func(*os.File) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create %s", name)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", name)
		}
	}()
	return write(f)
}

// filterConfigArgs keeps only the -config flag and its value.
func filterConfigArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-config" || a == "--config":
			out = append(out, a)
			if i+1 < len(args) {
				out = append(out, args[i+1])
				i++
			}
		case strings.HasPrefix(a, "-config=") || strings.HasPrefix(a, "--config="):
			out = append(out, a)
		}
	}
	return out
}
