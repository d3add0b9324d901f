package deeplink

import (
	"encoding"
	"errors"
	"reflect"
	"strings"
	"sync"
)

// Record is implemented by types that bind captures themselves instead of
// going through reflection. Field is the path declared in the template.
type Record interface {
	SetString(field, value string) error
	SetStrings(field string, values []string) error
}

// Getter is implemented by Record types that support Template.Encode.
type Getter interface {
	GetString(field string) (string, bool)
	GetStrings(field string) ([]string, bool)
}

// Cloner is implemented by record types whose values share memory (maps,
// pointers). The seed of a registration is cloned before every attempt.
type Cloner[T any] interface {
	Clone() T
}

var (
	recordType          = reflect.TypeFor[Record]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()

	errNotMarshaler = errors.New("field does not implement encoding.TextMarshaler")
	errMissingField = errors.New("field has no value")
)

// fieldMode is the storage shape of a bindable field.
type fieldMode int

const (
	modeString fieldMode = iota
	modeStringPtr
	modeText
	modeTextPtr
	modeList
	modeListPtr
)

func (m fieldMode) isList() bool {
	return m == modeList || m == modeListPtr
}

// fieldAccessor reads and writes one field path of a struct type.
type fieldAccessor struct {
	path  string
	index []int
	mode  fieldMode
}

type accessorKey struct {
	typ  reflect.Type
	path string
}

// accessorCache caches resolved accessors by type and field path.
// Entries are bounded by the number of compiled templates.
var accessorCache sync.Map

// lookupAccessor returns the cached accessor for path on typ, resolving
// and caching it on first use. ok is false when path does not name a
// bindable field.
func lookupAccessor(typ reflect.Type, path string) (*fieldAccessor, bool) {
	key := accessorKey{typ: typ, path: path}
	if v, ok := accessorCache.Load(key); ok {
		return v.(*fieldAccessor), true
	}

	acc, ok := resolveAccessor(typ, path)
	if !ok {
		return nil, false
	}

	actual, _ := accessorCache.LoadOrStore(key, acc)

	return actual.(*fieldAccessor), true
}

func resolveAccessor(typ reflect.Type, path string) (*fieldAccessor, bool) {
	if path == "" {
		return nil, false
	}

	var index []int
	cur := typ
	for _, name := range strings.Split(path, ".") {
		for cur.Kind() == reflect.Pointer {
			cur = cur.Elem()
		}
		if cur.Kind() != reflect.Struct {
			return nil, false
		}

		f, ok := fieldByName(cur, name)
		if !ok {
			return nil, false
		}

		index = append(index, f.Index[0])
		cur = f.Type
	}

	mode, ok := modeOf(cur)
	if !ok {
		return nil, false
	}

	return &fieldAccessor{path: path, index: index, mode: mode}, true
}

// fieldByName finds an exported field by its deeplink tag, falling back
// to a case-insensitive match on the Go field name.
func fieldByName(typ reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("deeplink"), ",")
		if tag == name && tag != "-" {
			return f, true
		}
	}

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() || f.Tag.Get("deeplink") == "-" {
			continue
		}
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}

	return reflect.StructField{}, false
}

func modeOf(typ reflect.Type) (fieldMode, bool) {
	switch {
	case reflect.PointerTo(typ).Implements(textUnmarshalerType) && typ.Kind() != reflect.Pointer:
		return modeText, true
	case typ.Kind() == reflect.Pointer && typ.Implements(textUnmarshalerType):
		return modeTextPtr, true
	case typ.Kind() == reflect.String:
		return modeString, true
	case typ.Kind() == reflect.Slice && typ.Elem().Kind() == reflect.String:
		return modeList, true
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.String:
		return modeStringPtr, true
	case typ.Kind() == reflect.Pointer && typ.Elem().Kind() == reflect.Slice && typ.Elem().Elem().Kind() == reflect.String:
		return modeListPtr, true
	}
	return 0, false
}

// target walks to the field. With alloc set, every pointer on the way is
// replaced by a new one: nil pointers point to a zero value, others to a
// copy of their target, so writes never reach memory shared with a seed.
// ok is false when a nil pointer is met without alloc.
func (a *fieldAccessor) target(root reflect.Value, alloc bool) (reflect.Value, bool) {
	v := root
	for _, i := range a.index {
		for v.Kind() == reflect.Pointer {
			switch {
			case alloc:
				p := reflect.New(v.Type().Elem())
				if !v.IsNil() {
					p.Elem().Set(v.Elem())
				}
				v.Set(p)
			case v.IsNil():
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, true
}

func (a *fieldAccessor) setString(root reflect.Value, s string) error {
	fv, _ := a.target(root, true)

	switch a.mode {
	case modeString:
		fv.SetString(s)
	case modeStringPtr:
		p := reflect.New(fv.Type().Elem())
		p.Elem().SetString(s)
		fv.Set(p)
	case modeText:
		if err := fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return &BindError{Field: a.path, Value: s, Err: err}
		}
	case modeTextPtr:
		p := reflect.New(fv.Type().Elem())
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return &BindError{Field: a.path, Value: s, Err: err}
		}
		fv.Set(p)
	}

	return nil
}

func (a *fieldAccessor) setStrings(root reflect.Value, values []string) {
	fv, _ := a.target(root, true)

	sliceType := fv.Type()
	if a.mode == modeListPtr {
		sliceType = sliceType.Elem()
	}

	list := reflect.MakeSlice(sliceType, len(values), len(values))
	for i, s := range values {
		list.Index(i).SetString(s)
	}

	if a.mode == modeListPtr {
		p := reflect.New(sliceType)
		p.Elem().Set(list)
		fv.Set(p)
		return
	}
	fv.Set(list)
}

func (a *fieldAccessor) getString(root reflect.Value) (string, error) {
	fv, ok := a.target(root, false)
	if !ok {
		return "", nil
	}

	switch a.mode {
	case modeString:
		return fv.String(), nil
	case modeStringPtr:
		if fv.IsNil() {
			return "", nil
		}
		return fv.Elem().String(), nil
	case modeTextPtr:
		if fv.IsNil() {
			return "", nil
		}
	}

	var m encoding.TextMarshaler
	switch {
	case fv.Type().Implements(textMarshalerType):
		m = fv.Interface().(encoding.TextMarshaler)
	case fv.CanAddr() && reflect.PointerTo(fv.Type()).Implements(textMarshalerType):
		m = fv.Addr().Interface().(encoding.TextMarshaler)
	default:
		return "", &BindError{Field: a.path, Err: errNotMarshaler}
	}

	text, err := m.MarshalText()
	if err != nil {
		return "", &BindError{Field: a.path, Err: err}
	}
	return string(text), nil
}

func (a *fieldAccessor) getStrings(root reflect.Value) []string {
	fv, ok := a.target(root, false)
	if !ok {
		return nil
	}

	if a.mode == modeListPtr {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}

	out := make([]string, fv.Len())
	for i := range out {
		out[i] = fv.Index(i).String()
	}
	return out
}

// Vars is a map-backed record keyed by field path. Scalar captures are
// stored as one-element lists.
type Vars map[string][]string

// SetString stores a scalar capture.
func (v *Vars) SetString(field, value string) error {
	if *v == nil {
		*v = make(Vars)
	}
	(*v)[field] = []string{value}
	return nil
}

// SetStrings stores a list capture.
func (v *Vars) SetStrings(field string, values []string) error {
	if *v == nil {
		*v = make(Vars)
	}
	(*v)[field] = values
	return nil
}

// GetString returns the first value stored for field.
func (v Vars) GetString(field string) (string, bool) {
	values, ok := v[field]
	if !ok || len(values) == 0 {
		return "", ok
	}
	return values[0], true
}

// GetStrings returns every value stored for field.
func (v Vars) GetStrings(field string) ([]string, bool) {
	values, ok := v[field]
	return values, ok
}

// Get returns the first value stored for field, or "".
func (v Vars) Get(field string) string {
	s, _ := v.GetString(field)
	return s
}

// Clone returns a deep copy.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	for k, values := range v {
		out[k] = append([]string(nil), values...)
	}
	return out
}
