/*
Command inkmetrics measures a run of text in two ways and shows the results
side by side: once by rendering it with a rasterization backend, and once by
reconstructing the metrics from the glyph outlines of the font.

Usage:

	inkmetrics [flags]

Flags are listed with `inkmetrics -h`. Without flag -i, the metrics are
printed once and the command exits. With -i, inkmetrics enters an
interactive mode, where text, font and text-case may be changed and
measured repeatedly.

A font source may contain placeholder {text}, which is replaced by the
(URL-escaped) text to measure. This is useful for services providing font
subsets. A font is loaded again whenever its source changes.

Configuration is read from NestedText files (suffix .nt) at the usual
locations for application "inkmetrics". Flags take precedence.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/inkmetrics/backend/raster"
	"github.com/npillmayer/inkmetrics/backend/raster/ftbackend"
	"github.com/npillmayer/inkmetrics/backend/raster/vectorbackend"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font/fontregistry"
	"github.com/npillmayer/inkmetrics/core/locate/resources"
	"github.com/npillmayer/inkmetrics/core/textcase"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/logrusadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'inkmetrics.cli'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.cli")
}

// Defaults for text and font to measure.
const (
	DefaultText   = "黄河 很长"
	DefaultFont   = "400 42px weilai-yuan"
	DefaultSource = "https://static-assets.strikinglycdn.com/fontsubset/weilai-yuan/400?text={text}"
)

var tracingKeys = []string{
	"inkmetrics.cli",
	"inkmetrics.fonts",
	"inkmetrics.resources",
	"inkmetrics.raster",
	"inkmetrics.metrics",
}

func main() {
	initDisplay()

	// command line flags
	text := flag.String("text", DefaultText, "Text to measure")
	fontspec := flag.String("font", DefaultFont, "Font in CSS shorthand notation")
	source := flag.String("source", DefaultSource, "Source of the font (URL, path, packaged:…, system:…, google:…); {text} is replaced by the text")
	mode := flag.String("case", "normal", "Text case [normal|uppercase|lowercase]")
	backend := flag.String("backend", "", "Rasterization backend [vector|freetype]")
	tolerance := flag.Float64("tolerance", 0.5, "Tolerance in pixels for comparing derivations")
	asJSON := flag.Bool("json", false, "Print metrics as JSON")
	interactive := flag.Bool("i", false, "Interactive mode")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	flag.Parse()

	conf := setupConfig(*tlevel, *backend)
	if err := setupTracing(conf); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	tracer().Infof("trace level is %s", *tlevel)

	reg := fontregistry.NewRegistryFromConfig(conf, resources.NewLoader(conf, nil))
	rasterizer, err := newBackend(conf.GetString("raster-backend"), reg, conf)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	session := &Session{
		conf:      conf,
		reg:       reg,
		backend:   rasterizer,
		text:      *text,
		font:      *fontspec,
		source:    *source,
		mode:      textcase.Parse(*mode),
		tolerance: *tolerance,
		asJSON:    *asJSON,
		out:       os.Stdout,
	}
	if !*interactive {
		rep := session.Measure(context.Background())
		if err := session.Print(rep); err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(3)
		}
		if !rep.Complete() {
			os.Exit(4)
		}
		return
	}
	//
	// set up REPL
	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "inkmetrics > ",
		AutoComplete: completer{reg: reg},
	})
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	pterm.Info.Println("Welcome to inkmetrics") // colored welcome message
	pterm.Info.Println("Quit with <ctrl>D or :quit, help with :help")
	intp := &Intp{session: session, repl: repl}
	intp.REPL() // go into interactive mode
}

// setupConfig creates a configuration from configuration files, defaults
// and command line settings.
func setupConfig(tlevel, backend string) *koanfadapter.KConf {
	conf := koanfadapter.New(nil, "inkmetrics", []string{"nt"})
	conf.InitDefaults()
	defaults := map[string]interface{}{
		"app-key":           "inkmetrics",
		"raster-backend":    "vector",
		"raster-oversample": 4,
		"fetch-timeout":     fontregistry.DefaultTimeout.String(),
	}
	for key, value := range defaults {
		if !conf.IsSet(key) {
			conf.Set(key, value)
		}
	}
	if backend != "" {
		conf.Set("raster-backend", backend)
	}
	for _, key := range tracingKeys {
		conf.Set("trace."+key, tlevel)
	}
	return conf
}

// setupTracing configures trace2go as the tracer for all tracing keys.
// Adapters "go" and "logrus" may be selected with configuration key
// `tracing.adapter`.
func setupTracing(conf schuko.Configuration) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	tracing.RegisterTraceAdapter("logrus", logrusadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("error configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

// newBackend creates a rasterization backend by name.
func newBackend(name string, fonts raster.FontSource, conf schuko.Configuration) (raster.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "vector":
		return vectorbackend.New(fonts, conf), nil
	case "freetype", "ft":
		return ftbackend.New(fonts, conf), nil
	}
	return nil, core.Error(core.EINVALID, "unknown rasterization backend %q", name)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
	pterm.Warning.Prefix = pterm.Prefix{
		Text:  " Diff ",
		Style: pterm.NewStyle(pterm.BgYellow, pterm.FgBlack),
	}
}
