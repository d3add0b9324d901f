package deeplink

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// catchAllPattern is the source form of a catch-all template.
const catchAllPattern = "{*}"

// Template is a compiled URL template whose captures are written into
// values of type T. Templates are immutable and safe for concurrent use.
type Template[T any] struct {
	components  []Component
	catchAll    bool
	pattern     string
	description string
	fields      []string
	// accessors holds one entry per argument. Nil when T implements Record.
	accessors []*fieldAccessor
}

// Literal returns a template made of a single literal. The text is not
// scanned for placeholders.
func Literal[T any](text string) *Template[T] {
	return &Template[T]{
		components:  []Component{Lit(text)},
		pattern:     text,
		description: text,
	}
}

// CatchAll returns a template that matches every URL and binds nothing.
func CatchAll[T any]() *Template[T] {
	return &Template[T]{
		catchAll:    true,
		pattern:     catchAllPattern,
		description: catchAllPattern,
	}
}

// Parse compiles a template written in placeholder syntax:
//
//	/artist/{slug}/{id}
//	/restaurants/ids={ids:,}
//	/tags/{tags:pipe}
//
// A placeholder names a field path of T. The optional part after the colon
// is the list separator, either one character or a macro name. The pattern
// "{*}" yields CatchAll.
func Parse[T any](pattern string) (*Template[T], error) {
	if pattern == catchAllPattern {
		return CatchAll[T](), nil
	}

	idxs, err := braceIndices(pattern)
	if err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(idxs)+1)

	var end int
	for i := 0; i < len(idxs); i += 2 {
		parts = append(parts, Lit(pattern[end:idxs[i]]))
		end = idxs[i+1]

		name, sep, isList := strings.Cut(pattern[idxs[i]+1:end-1], ":")
		if name == "" {
			return nil, &SyntaxError{Pattern: pattern, Reason: fmt.Sprintf("missing name in %q", pattern[idxs[i]:end])}
		}
		if name == "*" {
			return nil, &SyntaxError{Pattern: pattern, Reason: "catch-all must be the whole template"}
		}
		if strings.ContainsAny(name, "{}") {
			return nil, &SyntaxError{Pattern: pattern, Reason: fmt.Sprintf("nested braces in %q", pattern[idxs[i]:end])}
		}

		if !isList {
			parts = append(parts, Arg(name))
			continue
		}

		r, ok := expandSeparator(sep)
		if !ok {
			return nil, &SyntaxError{Pattern: pattern, Reason: fmt.Sprintf("separator %q of %q must be a single character or a macro", sep, name)}
		}
		parts = append(parts, ArgList(name, r))
	}
	parts = append(parts, Lit(pattern[end:]))

	return Compile[T](parts...)
}

// MustParse is like Parse but panics on error.
func MustParse[T any](pattern string) *Template[T] {
	tpl, err := Parse[T](pattern)
	if err != nil {
		panic(err)
	}
	return tpl
}

// Compile builds a template from parts. Empty literals are dropped, an
// argument directly after another argument fails with
// ConsecutiveArgumentsError, and a repeated field path fails with
// DuplicateArgumentError.
func Compile[T any](parts ...Part) (*Template[T], error) {
	components := make([]Component, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, p := range parts {
		switch p.Kind {
		case KindLiteral:
			if p.Text == "" {
				continue
			}
		case KindArgument, KindArgumentList:
			if n := len(components); n > 0 && components[n-1].isArgument() {
				return nil, &ConsecutiveArgumentsError{First: components[n-1].Field, Second: p.Field}
			}
			if seen[p.Field] {
				return nil, &DuplicateArgumentError{Field: p.Field}
			}
			seen[p.Field] = true
		default:
			return nil, &SyntaxError{Pattern: p.pattern(), Reason: fmt.Sprintf("unknown component kind %v", p.Kind)}
		}

		components = append(components, p)
	}

	if len(components) == 0 {
		return Literal[T](""), nil
	}

	tpl := &Template[T]{components: components}

	var pattern, description strings.Builder
	for _, c := range components {
		pattern.WriteString(c.pattern())
		if c.isArgument() {
			description.WriteString("{}")
			tpl.fields = append(tpl.fields, c.Field)
		} else {
			description.WriteString(c.Text)
		}
	}
	tpl.pattern = pattern.String()
	tpl.description = description.String()

	accessors, err := accessorsFor[T](components)
	if err != nil {
		return nil, err
	}
	tpl.accessors = accessors

	return tpl, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile[T any](parts ...Part) *Template[T] {
	tpl, err := Compile[T](parts...)
	if err != nil {
		panic(err)
	}
	return tpl
}

// accessorsFor resolves one accessor per argument. Record implementers
// bind by name and are not validated here.
func accessorsFor[T any](components []Component) ([]*fieldAccessor, error) {
	typ := reflect.TypeFor[T]()
	if reflect.PointerTo(typ).Implements(recordType) {
		return nil, nil
	}

	var accessors []*fieldAccessor
	for _, c := range components {
		if !c.isArgument() {
			continue
		}

		acc, ok := lookupAccessor(typ, c.Field)
		if !ok || acc.mode.isList() != (c.Kind == KindArgumentList) {
			return nil, &UnknownFieldError{Type: typ.String(), Field: c.Field}
		}
		accessors = append(accessors, acc)
	}

	return accessors, nil
}

// String returns the canonical description: literal text with "{}" in
// place of every argument.
func (t *Template[T]) String() string {
	return t.description
}

// Pattern returns the template in placeholder syntax.
func (t *Template[T]) Pattern() string {
	return t.pattern
}

// Fields returns the argument field paths in declaration order.
func (t *Template[T]) Fields() []string {
	return append([]string(nil), t.fields...)
}

// Components returns a copy of the compiled components.
func (t *Template[T]) Components() []Component {
	return append([]Component(nil), t.components...)
}

// IsCatchAll reports whether t matches every URL.
func (t *Template[T]) IsCatchAll() bool {
	return t.catchAll
}

// Match extracts the relative reference of u and matches it, writing the
// captures into into.
func (t *Template[T]) Match(u *url.URL, into *T) error {
	rel, err := RelativeReference(u)
	if err != nil {
		return err
	}
	return t.MatchString(rel, into)
}

// MatchString matches an already extracted relative reference and writes
// the captures into into. On error into may be partially written.
func (t *Template[T]) MatchString(rel string, into *T) error {
	segments, err := t.Segments(rel)
	if err != nil {
		return err
	}
	return t.bind(segments, into)
}

// bind pairs argument components with segments positionally.
func (t *Template[T]) bind(segments []string, into *T) error {
	if len(segments) == 0 {
		return nil
	}

	rec, isRecord := any(into).(Record)
	root := reflect.ValueOf(into).Elem()

	var n int
	for _, c := range t.components {
		if !c.isArgument() {
			continue
		}
		if n >= len(segments) {
			break
		}
		segment := segments[n]

		switch {
		case isRecord && c.Kind == KindArgument:
			if err := rec.SetString(c.Field, segment); err != nil {
				return &BindError{Field: c.Field, Value: segment, Err: err}
			}
		case isRecord:
			if err := rec.SetStrings(c.Field, splitList(segment, c.Separator)); err != nil {
				return &BindError{Field: c.Field, Value: segment, Err: err}
			}
		case c.Kind == KindArgument:
			if err := t.accessors[n].setString(root, segment); err != nil {
				return err
			}
		default:
			t.accessors[n].setStrings(root, splitList(segment, c.Separator))
		}
		n++
	}

	return nil
}

// splitList splits a list capture on sep, dropping empty items.
func splitList(segment string, sep rune) []string {
	return strings.FieldsFunc(segment, func(r rune) bool { return r == sep })
}

// Encode renders t with the field values of v. List fields are joined with
// their separator. Values are written as is, without escaping.
func (t *Template[T]) Encode(v T) (string, error) {
	if t.catchAll {
		return "", &SyntaxError{Pattern: t.pattern, Reason: "catch-all template cannot be encoded"}
	}

	getter, isGetter := any(&v).(Getter)
	if t.accessors == nil && len(t.fields) > 0 && !isGetter {
		return "", fmt.Errorf("deeplink: %T does not implement Getter", v)
	}
	root := reflect.ValueOf(&v).Elem()

	var (
		b strings.Builder
		n int
	)
	for _, c := range t.components {
		switch c.Kind {
		case KindLiteral:
			b.WriteString(c.Text)
			continue
		case KindArgument:
			if isGetter && t.accessors == nil {
				s, ok := getter.GetString(c.Field)
				if !ok {
					return "", &BindError{Field: c.Field, Err: errMissingField}
				}
				b.WriteString(s)
				break
			}
			s, err := t.accessors[n].getString(root)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case KindArgumentList:
			var values []string
			if isGetter && t.accessors == nil {
				var ok bool
				if values, ok = getter.GetStrings(c.Field); !ok {
					return "", &BindError{Field: c.Field, Err: errMissingField}
				}
			} else {
				values = t.accessors[n].getStrings(root)
			}
			b.WriteString(strings.Join(values, string(c.Separator)))
		}
		n++
	}

	return b.String(), nil
}

// braceIndices returns the first and last index of each outermost pair of
// braces in s.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, &SyntaxError{Pattern: s, Reason: "unbalanced braces"}
			}
		}
	}
	if level != 0 {
		return nil, &SyntaxError{Pattern: s, Reason: "unbalanced braces"}
	}
	return idxs, nil
}
