package deeplink

import (
	"net/url"
	"strings"
)

// RelativeReference returns the escaped path, query and fragment of u,
// dropping scheme, user info, host and port:
//
//	https://example.com/test?query=some#fragment -> /test?query=some#fragment
//	myapp:///sell/123                            -> /sell/123
//	myapp:sell/123                               -> sell/123
//
// The opaque part of a URL without "//" is used as its path.
func RelativeReference(u *url.URL) (string, error) {
	if u == nil {
		return "", &MalformedURLError{}
	}

	var b strings.Builder
	if u.Opaque != "" {
		b.WriteString(u.Opaque)
	} else {
		b.WriteString(u.EscapedPath())
	}
	if u.ForceQuery || u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.EscapedFragment())
	}

	return b.String(), nil
}

// Segments splits rel into one string per argument of t. Literals are
// consumed in order at their first occurrence, with no backtracking. The
// last segment is cut at the first reserved URL character, except the
// separator of a trailing list argument.
func (t *Template[T]) Segments(rel string) ([]string, error) {
	if t.catchAll {
		return nil, nil
	}

	var literals []string
	for _, c := range t.components {
		if c.Kind == KindLiteral {
			literals = append(literals, c.Text)
		}
	}

	if len(literals) == 1 && literals[0] == "" && rel == "" {
		return nil, nil
	}

	segments, err := splitLiterals(literals, rel)
	if err != nil {
		return nil, err
	}

	if len(segments) > 0 {
		last := len(segments) - 1
		if i := strings.IndexAny(segments[last], terminators(t.components)); i >= 0 {
			segments[last] = segments[last][:i]
		}

		if segments[0] != "" {
			return nil, &LiteralMismatchError{Remainder: segments[0], Literal: t.description}
		}
		segments = segments[1:]
	}

	if n := len(t.fields); len(segments) > n {
		segments = segments[:n]
	}

	return segments, nil
}

// splitLiterals splits rel at the first occurrence of each literal in turn:
// "1234567890" split with ["2", "6"] gives ["1", "345", "7890"].
func splitLiterals(literals []string, rel string) ([]string, error) {
	segments := make([]string, 0, len(literals)+1)
	rest := rel

	for _, lit := range literals {
		if rest == "" || lit == "" {
			return nil, &LiteralMismatchError{Remainder: rest, Literal: lit}
		}

		before, after, found := strings.Cut(rest, lit)
		if !found {
			return nil, &LiteralMismatchError{Remainder: rest, Literal: lit}
		}

		segments = append(segments, before)
		rest = after
	}

	return append(segments, rest), nil
}
