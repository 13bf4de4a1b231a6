/*
Package textcase applies text-case transforms to strings prior to measurement.

Both metrics derivations call Transform with the same mode, which keeps their
results comparable. Case mapping is locale-independent and uses full Unicode
mappings, i.e. a single rune may map to more than one rune ('ß' → "SS").

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package textcase

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case is a text-case transform mode.
type Case int8

// Text-case modes. Any unknown mode behaves as Normal.
const (
	Normal Case = iota
	Uppercase
	Lowercase
)

func (c Case) String() string {
	switch c {
	case Uppercase:
		return "uppercase"
	case Lowercase:
		return "lowercase"
	}
	return "normal"
}

// Parse interprets a mode name as used in CSS `text-transform`.
// Unknown names yield Normal.
func Parse(mode string) Case {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "uppercase", "upper":
		return Uppercase
	case "lowercase", "lower":
		return Lowercase
	}
	return Normal
}

// Transform applies mode to text. It is total and has no failure conditions.
func Transform(text string, mode Case) string {
	if text == "" {
		return text
	}
	// a Caser keeps state and must not be shared between goroutines
	switch mode {
	case Uppercase:
		return cases.Upper(language.Und).String(text)
	case Lowercase:
		return cases.Lower(language.Und).String(text)
	}
	return text
}
