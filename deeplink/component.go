package deeplink

import (
	"fmt"
	"strings"
)

// Kind identifies the variant of a template Component.
type Kind int

const (
	// KindLiteral is fixed text that must appear verbatim in the URL.
	KindLiteral Kind = iota
	// KindArgument captures a single string into a field.
	KindArgument
	// KindArgumentList captures a string split on Separator into a list field.
	KindArgumentList
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindArgument:
		return "argument"
	case KindArgumentList:
		return "argument-list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Component is one element of a compiled template.
type Component struct {
	Kind Kind
	// Text is the literal text. Only set for KindLiteral.
	Text string
	// Field is the dotted field path the capture is written to.
	Field string
	// Separator splits a list capture. Only set for KindArgumentList.
	Separator rune
}

// Part is a template building block accepted by Compile.
type Part = Component

// Lit returns a literal part.
func Lit(text string) Part {
	return Component{Kind: KindLiteral, Text: text}
}

// Arg returns a scalar argument part bound to field.
func Arg(field string) Part {
	return Component{Kind: KindArgument, Field: field}
}

// ArgList returns a list argument part bound to field, split on sep.
func ArgList(field string, sep rune) Part {
	return Component{Kind: KindArgumentList, Field: field, Separator: sep}
}

func (c Component) isArgument() bool {
	return c.Kind == KindArgument || c.Kind == KindArgumentList
}

// pattern renders the component in placeholder syntax.
func (c Component) pattern() string {
	switch c.Kind {
	case KindArgument:
		return "{" + c.Field + "}"
	case KindArgumentList:
		return "{" + c.Field + ":" + separatorName(c.Separator) + "}"
	default:
		return c.Text
	}
}

// separatorMacros maps macro names to list separators.
// Used in placeholder definitions: {name:macro}.
var separatorMacros = map[string]rune{
	"comma":      ',',
	"semicolon":  ';',
	"pipe":       '|',
	"plus":       '+',
	"colon":      ':',
	"slash":      '/',
	"amp":        '&',
	"dot":        '.',
	"dash":       '-',
	"underscore": '_',
	"space":      ' ',
	"lbrace":     '{',
	"rbrace":     '}',
}

// expandSeparator returns the separator for a macro name or a single
// character. ok is false for anything else.
func expandSeparator(s string) (rune, bool) {
	if r, ok := separatorMacros[s]; ok {
		return r, true
	}

	runes := []rune(s)
	if len(runes) != 1 {
		return 0, false
	}

	return runes[0], true
}

// separatorName returns the form of sep that survives a round trip through
// Parse.
func separatorName(sep rune) string {
	switch sep {
	case '{':
		return "lbrace"
	case '}':
		return "rbrace"
	case ' ':
		return "space"
	}
	return string(sep)
}

// reservedCharacters terminate the last captured segment.
const reservedCharacters = ":/?#[]@!$&'()*+,;="

// terminators returns the reserved characters minus the list separator of
// the last component.
func terminators(components []Component) string {
	if len(components) == 0 {
		return reservedCharacters
	}

	last := components[len(components)-1]
	if last.Kind != KindArgumentList {
		return reservedCharacters
	}

	return strings.Map(func(r rune) rune {
		if r == last.Separator {
			return -1
		}
		return r
	}, reservedCharacters)
}
