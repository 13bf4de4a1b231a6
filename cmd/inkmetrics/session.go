package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/npillmayer/inkmetrics/backend/raster"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/inkmetrics/core/font/fontregistry"
	"github.com/npillmayer/inkmetrics/core/locate/resources"
	"github.com/npillmayer/inkmetrics/core/metrics"
	"github.com/npillmayer/inkmetrics/core/textcase"
	"github.com/npillmayer/inkmetrics/engine/textmetrics"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// Session holds the current settings for measuring text.
type Session struct {
	conf      schuko.Configuration
	reg       *fontregistry.Registry
	backend   raster.Backend
	text      string
	font      string            // CSS font shorthand
	source    string            // source of the font's first family
	loaded    map[string]string // registry name -> source of the registered font
	mode      textcase.Case
	tolerance float64
	asJSON    bool
	out       io.Writer
}

// Report is the outcome of measuring text with both derivations.
type Report struct {
	Text           string                      `json:"text"`
	Font           string                      `json:"font"`
	Case           string                      `json:"textCase"`
	Backend        string                      `json:"backend"`
	Raster         *metrics.TextMetrics        `json:"raster,omitempty"`
	RasterError    string                      `json:"rasterError,omitempty"`
	Outline        *metrics.TextMetrics        `json:"outline,omitempty"`
	OutlineError   string                      `json:"outlineError,omitempty"`
	Reconciliation *textmetrics.Reconciliation `json:"-"`
	Mismatches     []string                    `json:"mismatches,omitempty"`
	MissingGlyphs  string                      `json:"missingGlyphs,omitempty"`
}

// ExpandSource replaces placeholder {text} in a font source by text, escaped
// for use in an URL. This allows sources which provide a font subset
// covering just the text to measure.
func ExpandSource(source, text string) string {
	if !strings.Contains(source, "{text}") {
		return source
	}
	return strings.ReplaceAll(source, "{text}", url.PathEscape(text))
}

// Complete is true if both derivations succeeded.
func (rep Report) Complete() bool {
	return rep.Raster != nil && rep.Outline != nil
}

// Measure acquires the font and derives metrics for the current text.
// Errors are recorded in the report.
func (s *Session) Measure(ctx context.Context) Report {
	rep := Report{
		Text:    s.text,
		Font:    s.font,
		Case:    s.mode.String(),
		Backend: s.backend.Name(),
	}
	spec, err := font.ParseSpec(s.font)
	if err != nil {
		rep.RasterError, rep.OutlineError = err.Error(), err.Error()
		return rep
	}
	// The font has to be registered before rasterizing, as the backend
	// looks it up in the registry.
	name := font.NormalizeFontname(spec.Family(), spec.Style, spec.Weight)
	cased := textcase.Transform(s.text, s.mode)
	source := ExpandSource(s.source, cased)
	if prev, ok := s.loaded[name]; ok && prev != source {
		tracer().Infof("source of font %s has changed, re-loading it", name)
		s.reg.Evict(name)
	}
	if s.loaded == nil {
		s.loaded = make(map[string]string)
	}
	s.loaded[name] = source
	promise := resources.ResolveFont(s.reg, name, source)
	if !promise.Ready() {
		tracer().Infof("waiting for font %s", name)
	}
	f, ferr := promise.FontWithContext(ctx)
	if ferr != nil {
		tracer().Errorf("font %s not available: %v", name, ferr)
	} else {
		rep.MissingGlyphs = f.MissingGlyphs(cased)
	}
	if m, err := textmetrics.FromRasterizer(s.backend, s.font, s.text, s.mode); err != nil {
		rep.RasterError = err.Error()
	} else {
		rep.Raster = &m
	}
	if m, err := textmetrics.FromOutline(f, s.text, spec.Size, s.mode); err != nil {
		rep.OutlineError = err.Error()
		if ferr != nil {
			rep.OutlineError = fmt.Sprintf("%s (%v)", err.Error(), ferr)
		}
	} else {
		rep.Outline = &m
	}
	if rep.Complete() {
		rec := textmetrics.Reconcile(*rep.Raster, *rep.Outline, s.tolerance)
		rep.Reconciliation = &rec
		for _, d := range rec.Mismatches() {
			rep.Mismatches = append(rep.Mismatches, d.Field)
		}
	}
	tracing.With(tracer()).Dump("report", rep)
	return rep
}

// Print writes a report to the session's output, either as JSON or as a
// table.
func (s *Session) Print(rep Report) error {
	if s.asJSON {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rep)
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(tableData(rep)).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%q in %s (%s)\n", rep.Text, rep.Font, rep.Case)
	fmt.Fprintln(s.out, table)
	if rep.RasterError != "" {
		fmt.Fprint(s.out, pterm.Error.Sprintfln("%s: %s", rep.Backend, rep.RasterError))
	}
	if rep.OutlineError != "" {
		fmt.Fprint(s.out, pterm.Error.Sprintfln("outline: %s", rep.OutlineError))
	}
	if rep.MissingGlyphs != "" {
		fmt.Fprint(s.out, pterm.Warning.Sprintfln("font has no glyphs for %q", rep.MissingGlyphs))
	}
	if rep.Reconciliation != nil && !rep.Reconciliation.Agree() {
		fmt.Fprint(s.out, pterm.Warning.Sprintfln("derivations differ by more than %g px in %v",
			rep.Reconciliation.Tolerance, rep.Mismatches))
	}
	return nil
}

// tableData lists the fields of both records in rows, with a header row.
// A derivation which failed is shown as "–".
func tableData(rep Report) [][]string {
	data := [][]string{{"metric", rep.Backend, "outline", "Δ"}}
	var rfields, ofields []metrics.Field
	if rep.Raster != nil {
		rfields = rep.Raster.Fields()
	}
	if rep.Outline != nil {
		ofields = rep.Outline.Fields()
	}
	for i, f := range (metrics.TextMetrics{}).Fields() {
		row := []string{f.Name, "–", "–", ""}
		if rfields != nil {
			row[1] = fieldString(rfields[i].Value)
		}
		if ofields != nil {
			row[2] = fieldString(ofields[i].Value)
		}
		if rep.Reconciliation != nil {
			d := rep.Reconciliation.Deltas[i]
			row[3] = strconv.FormatFloat(metrics.Round(d.Diff, metrics.OutlinePrecision), 'f', -1, 64)
			if d.Exceeds {
				row[3] += " !"
			}
		}
		data = append(data, row)
	}
	return data
}

func fieldString(v interface{}) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(metrics.Round(x, metrics.OutlinePrecision), 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
