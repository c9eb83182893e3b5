package main

import (
	"bytes"
	"io"
	"os"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"

	"github.com/alf-academy/enroll/internal/tui/theme"
)

// highlight colors source for w. Output that is not a color terminal gets
// the source unchanged.
func highlight(w io.Writer, source, language string) string {
	var formatterName string
	switch colorprofile.Detect(w, os.Environ()) {
	case colorprofile.TrueColor:
		formatterName = "terminal16m"
	case colorprofile.ANSI256, colorprofile.ANSI:
		formatterName = "terminal256"
	default:
		return source
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatter := formatters.Get(formatterName)
	if formatter == nil {
		return source
	}

	baseStyle := styles.Get("monokai")
	if baseStyle == nil {
		baseStyle = styles.Fallback
	}
	// Use the theme background instead of monokai's.
	bg := chroma.MustParseColour(theme.Current().BgBase)
	style, err := baseStyle.Builder().Transform(func(entry chroma.StyleEntry) chroma.StyleEntry {
		entry.Background = bg
		return entry
	}).Build()
	if err != nil {
		style = baseStyle
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return strings.TrimRight(buf.String(), "\n")
}
