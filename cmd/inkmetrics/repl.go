package main

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/inkmetrics/core/font/fontregistry"
	"github.com/npillmayer/inkmetrics/core/textcase"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	session *Session
	repl    *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	intp.measure()
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		quit, err := intp.execute(cmd)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op codes of commands.
const (
	MEASURE int = iota
	QUIT
	HELP
	CASE
	SIZE
	FONT
	SOURCE
	BACKEND
	TOLERANCE
	FONTS
)

var commands = map[string]int{
	":quit":      QUIT,
	":help":      HELP,
	":case":      CASE,
	":size":      SIZE,
	":font":      FONT,
	":source":    SOURCE,
	":backend":   BACKEND,
	":tolerance": TOLERANCE,
	":fonts":     FONTS,
}

// Command is a parsed input line.
type Command struct {
	code int
	arg  string
}

// parseCommand interprets an input line. Lines starting with a colon are
// commands, every other line is text to measure.
func parseCommand(line string) (Command, error) {
	if !strings.HasPrefix(line, ":") {
		return Command{code: MEASURE, arg: line}, nil
	}
	name, arg := line, ""
	if i := strings.IndexAny(line, " \t"); i > 0 {
		name, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	code, ok := commands[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Command{}, core.Error(core.EINVALID, "unknown command %s, try :help", name)
	}
	switch code {
	case CASE, SIZE, FONT, SOURCE, BACKEND, TOLERANCE:
		if arg == "" && code != SOURCE {
			return Command{}, core.Error(core.EINVALID, "command %s needs an argument", name)
		}
	}
	return Command{code: code, arg: arg}, nil
}

func (intp *Intp) execute(cmd Command) (bool, error) {
	tracer().Debugf("cmd = %v", cmd)
	s := intp.session
	switch cmd.code {
	case QUIT:
		return true, nil
	case HELP:
		help()
		return false, nil
	case FONTS:
		names := s.reg.Names(cmd.arg)
		pterm.Printfln("%d fonts registered, %d matching", s.reg.Size(), len(names))
		for _, name := range names {
			pterm.Println("   " + name)
		}
		return false, nil
	case MEASURE:
		s.text = cmd.arg
	case CASE:
		s.mode = textcase.Parse(cmd.arg)
	case SIZE:
		spec, err := font.ParseSpec(s.font)
		if err != nil {
			return false, err
		}
		size, err := strconv.ParseFloat(strings.TrimSuffix(cmd.arg, "px"), 64)
		if err != nil || !(size > 0) {
			return false, core.Error(core.EINVALID, "size must be a positive number of pixels: %s", cmd.arg)
		}
		spec.Size = size
		s.font = spec.String()
	case FONT:
		spec, err := font.ParseSpec(cmd.arg)
		if err != nil {
			return false, err
		}
		if prev, err := font.ParseSpec(s.font); err != nil || fontregistry.Key(prev.Family()) != fontregistry.Key(spec.Family()) {
			s.source = "" // the source belongs to the previous family
		}
		s.font = cmd.arg
	case SOURCE:
		s.source = cmd.arg
	case BACKEND:
		b, err := newBackend(cmd.arg, s.reg, s.conf)
		if err != nil {
			return false, err
		}
		s.backend = b
	case TOLERANCE:
		tol, err := strconv.ParseFloat(cmd.arg, 64)
		if err != nil || tol < 0 {
			return false, core.Error(core.EINVALID, "tolerance must be a non-negative number: %s", cmd.arg)
		}
		s.tolerance = tol
	}
	intp.measure()
	return false, nil
}

func (intp *Intp) measure() {
	rep := intp.session.Measure(context.Background())
	if err := intp.session.Print(rep); err != nil {
		pterm.Error.Println(err.Error())
	}
}

func help() {
	pterm.Println(`Enter text to measure it, or one of these commands:
   :case normal|uppercase|lowercase    set text case
   :size <px>                          set font size
   :font <css font shorthand>          set font, e.g. "bold 36px Go Mono"
   :source <source>                    set source of the font's family,
                                       {text} is replaced by the text
   :backend vector|freetype            set rasterization backend
   :tolerance <px>                     set tolerance for comparing metrics
   :fonts [prefix]                     list registered fonts
   :quit                               quit`)
}

// completer completes command names and font names for readline.
type completer struct {
	reg *fontregistry.Registry
}

var _ readline.AutoCompleter = completer{}

// Do returns the suffixes completing the word at pos, and the length of the
// word.
func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	typed := string(line[:pos])
	if !strings.HasPrefix(typed, ":") {
		return nil, 0
	}
	if !strings.ContainsAny(typed, " \t") {
		var names []string
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		return suffixes(names, typed), len([]rune(typed))
	}
	if strings.HasPrefix(typed, ":fonts ") && c.reg != nil {
		prefix := strings.ToLower(strings.TrimPrefix(typed, ":fonts "))
		return suffixes(c.reg.Names(prefix), prefix), len([]rune(prefix))
	}
	return nil, 0
}

func suffixes(candidates []string, prefix string) [][]rune {
	var sfx [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			sfx = append(sfx, []rune(cand[len(prefix):]))
		}
	}
	return sfx
}
