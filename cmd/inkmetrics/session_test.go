package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/npillmayer/inkmetrics/backend/raster/vectorbackend"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font/fontregistry"
	"github.com/npillmayer/inkmetrics/core/locate/resources"
	"github.com/npillmayer/inkmetrics/core/textcase"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
)

func newSession(out *bytes.Buffer) *Session {
	conf := testconfig.Conf{
		"app-key":           "inkmetrics-test",
		"font-cache":        false,
		"raster-oversample": 8,
	}
	reg := fontregistry.NewRegistryFromConfig(conf, resources.NewLoader(conf, nil))
	return &Session{
		conf:      conf,
		reg:       reg,
		backend:   vectorbackend.New(reg, conf),
		text:      "Hxg",
		font:      "400 42px sans-serif",
		source:    "packaged:sans-serif",
		tolerance: 1.0,
		out:       out,
	}
}

func TestSessionMeasure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli", "inkmetrics.fonts")
	defer teardown()
	//
	out := &bytes.Buffer{}
	s := newSession(out)
	rep := s.Measure(context.Background())
	require.True(t, rep.Complete(), "errors: %q, %q", rep.RasterError, rep.OutlineError)
	assert.Equal(t, "vector", rep.Backend)
	assert.Equal(t, 1, s.reg.Size())
	assert.NotNil(t, rep.Reconciliation)
	assert.Empty(t, rep.Mismatches)
	assert.Greater(t, rep.Outline.TextWidth, 0.0)
	require.NoError(t, s.Print(rep))
	assert.Contains(t, out.String(), "horizontalOffsetSpacing")
	assert.Contains(t, out.String(), `"Hxg"`)
}

func TestSessionJSON(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli")
	defer teardown()
	//
	out := &bytes.Buffer{}
	s := newSession(out)
	s.asJSON = true
	s.mode = textcase.Uppercase
	require.NoError(t, s.Print(s.Measure(context.Background())))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "uppercase", decoded["textCase"])
	outline, ok := decoded["outline"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, outline, "verticalWhiteSpace")
	assert.NotContains(t, decoded, "outlineError")
}

func TestSessionFontUnavailable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli")
	defer teardown()
	//
	out := &bytes.Buffer{}
	s := newSession(out)
	s.font = "400 42px no-such-family"
	s.source = "packaged:no-such-family"
	rep := s.Measure(context.Background())
	assert.False(t, rep.Complete())
	assert.Nil(t, rep.Outline)
	assert.Contains(t, rep.OutlineError, "metrics unavailable")
	assert.NotEmpty(t, rep.RasterError)
	require.NoError(t, s.Print(rep))
	assert.Contains(t, out.String(), "–")
	//
	s.font = "42 weilai-yuan"
	rep = s.Measure(context.Background())
	assert.NotEmpty(t, rep.RasterError)
	assert.Equal(t, rep.RasterError, rep.OutlineError)
}

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand("Hello World")
	require.NoError(t, err)
	assert.Equal(t, Command{code: MEASURE, arg: "Hello World"}, cmd)
	cmd, err = parseCommand(":font   bold 36px Go Mono")
	require.NoError(t, err)
	assert.Equal(t, Command{code: FONT, arg: "bold 36px Go Mono"}, cmd)
	cmd, err = parseCommand(":QUIT")
	require.NoError(t, err)
	assert.Equal(t, QUIT, cmd.code)
	cmd, err = parseCommand(":source")
	require.NoError(t, err)
	assert.Equal(t, Command{code: SOURCE}, cmd)
	_, err = parseCommand(":size")
	assert.True(t, core.Is(err, core.EINVALID))
	_, err = parseCommand(":frobnicate 3")
	assert.True(t, core.Is(err, core.EINVALID))
}

func TestExecuteChangesSession(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli")
	defer teardown()
	//
	out := &bytes.Buffer{}
	intp := &Intp{session: newSession(out)}
	s := intp.session
	quit, err := intp.execute(Command{code: SIZE, arg: "36px"})
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "400 36px sans-serif", s.font)
	_, err = intp.execute(Command{code: SIZE, arg: "-3"})
	assert.True(t, core.Is(err, core.EINVALID))
	_, err = intp.execute(Command{code: CASE, arg: "lower"})
	require.NoError(t, err)
	assert.Equal(t, textcase.Lowercase, s.mode)
	_, err = intp.execute(Command{code: FONT, arg: "bold 20px monospace"})
	require.NoError(t, err)
	assert.Equal(t, "", s.source, "source of previous family must be dropped")
	_, err = intp.execute(Command{code: BACKEND, arg: "freetype"})
	require.NoError(t, err)
	assert.Equal(t, "freetype", s.backend.Name())
	_, err = intp.execute(Command{code: BACKEND, arg: "cairo"})
	assert.True(t, core.Is(err, core.EINVALID))
	quit, err = intp.execute(Command{code: QUIT})
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestCompleter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli")
	defer teardown()
	//
	s := newSession(&bytes.Buffer{})
	_ = s.Measure(context.Background())
	c := completer{reg: s.reg}
	sfx, n := c.Do([]rune(":fo"), 3)
	assert.Equal(t, 3, n)
	assert.Equal(t, [][]rune{[]rune("nt"), []rune("nts")}, sfx)
	sfx, n = c.Do([]rune(":fonts Sa"), 9)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][]rune{[]rune("ns-serif")}, sfx)
	sfx, _ = c.Do([]rune("text"), 4)
	assert.Empty(t, sfx)
}

func TestSessionReloadsFontForNewSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli", "inkmetrics.fonts")
	defer teardown()
	//
	out := &bytes.Buffer{}
	intp := &Intp{session: newSession(out)}
	s := intp.session
	before := s.Measure(context.Background())
	require.True(t, before.Complete())
	_, err := intp.execute(Command{code: SOURCE, arg: "packaged:monospace"})
	require.NoError(t, err)
	after := s.Measure(context.Background())
	require.True(t, after.Complete(), "errors: %q, %q", after.RasterError, after.OutlineError)
	f, ok := s.reg.Lookup("sans-serif")
	require.True(t, ok)
	assert.Equal(t, "Go Mono", f.Fontname)
	assert.NotEqual(t, before.Outline.TextWidth, after.Outline.TextWidth)
	assert.InDelta(t, after.Outline.TextWidth, after.Raster.TextWidth, 1.0, "both derivations use the new font")
	assert.Equal(t, 1, s.reg.Size())
	//
	s.font = "bold 42px sans-serif"
	s.source = "packaged:sans-serif"
	rep := s.Measure(context.Background())
	require.True(t, rep.Complete())
	f, ok = s.reg.Match("sans-serif", xfont.StyleNormal, xfont.WeightBold)
	require.True(t, ok)
	assert.Equal(t, "Go Bold", f.Fontname)
	assert.Equal(t, 2, s.reg.Size(), "weights are registered separately")
}

func TestSessionReportsMissingGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.cli")
	defer teardown()
	//
	out := &bytes.Buffer{}
	s := newSession(out)
	s.text = "黄河 Hx"
	rep := s.Measure(context.Background())
	assert.Equal(t, "黄河", rep.MissingGlyphs)
	require.NoError(t, s.Print(rep))
	assert.Contains(t, out.String(), "no glyphs")
}

func TestExpandSource(t *testing.T) {
	assert.Equal(t,
		"https://static-assets.strikinglycdn.com/fontsubset/weilai-yuan/400?text=%E9%BB%84%E6%B2%B3%20%E5%BE%88%E9%95%BF",
		ExpandSource(DefaultSource, DefaultText))
	assert.Equal(t, "packaged:sans-serif", ExpandSource("packaged:sans-serif", "Hxg"))
}
