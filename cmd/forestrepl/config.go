package main

import (
	"fmt"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/logrusadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

// tracerKeys lists the tracers of this application.
var tracerKeys = []string{"canopy.forest", "canopy.oplog", "canopy.repl"}

// defaults are configuration values which apply unless overridden by a
// configuration file or by command-line flags.
var defaults = map[string]interface{}{
	"tracing.adapter":          "go",
	"tracelevel.root":          "Error",
	"tracelevel.canopy.forest": "Error",
	"tracelevel.canopy.oplog":  "Error",
	"tracelevel.canopy.repl":   "Info",
	"repl.prompt":              "forest> ",
	"repl.record":              false,
}

// options collects settings from the command line.
type options struct {
	configFile string // NestedText file
	traceLevel string // overrides all trace levels
	adapter    string // tracing adapter: go or logrus
}

// setupConfiguration creates the application configuration and configures
// tracing from it.
func setupConfiguration(opts options) (schuko.Configuration, error) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.RegisterTraceAdapter("logrus", logrusadapter.GetAdapter(), false)
	conf := koanfadapter.New(nil, "", nil)
	conf.InitDefaults()
	if err := conf.Koanf().Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}
	if opts.configFile != "" {
		err := conf.Koanf().Load(file.Provider(opts.configFile), koanfadapter.Parser())
		if err != nil {
			return nil, fmt.Errorf("loading configuration %q: %w", opts.configFile, err)
		}
	}
	if opts.adapter != "" {
		conf.Set("tracing.adapter", opts.adapter)
	}
	if opts.traceLevel != "" {
		conf.Set("tracelevel.root", opts.traceLevel)
		for _, key := range tracerKeys {
			conf.Set("tracelevel."+key, opts.traceLevel)
		}
	}
	if err := trace2go.ConfigureRoot(conf, "tracelevel", trace2go.ReplaceTracers(true)); err != nil {
		return nil, err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return conf, nil
}
