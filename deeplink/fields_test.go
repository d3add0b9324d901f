package deeplink

import (
	"errors"
	"net/netip"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedRecord struct {
	Identifier string   `deeplink:"id"`
	Name       *string  `deeplink:"name"`
	Tags       *[]string
	Addr       netip.Addr
	Ignored    string `deeplink:"-"`
	hidden     string
	Inner      *struct {
		Value string
	}
}

func TestResolveAccessor(t *testing.T) {
	typ := reflect.TypeFor[taggedRecord]()

	tests := []struct {
		name string
		path string
		mode fieldMode
		ok   bool
	}{
		{name: "tag", path: "id", mode: modeString, ok: true},
		{name: "pointer string", path: "name", mode: modeStringPtr, ok: true},
		{name: "case insensitive name", path: "TAGS", mode: modeListPtr, ok: true},
		{name: "text unmarshaler", path: "addr", mode: modeText, ok: true},
		{name: "nested pointer struct", path: "inner.value", mode: modeString, ok: true},
		{name: "ignored by tag", path: "ignored", ok: false},
		{name: "unexported", path: "hidden", ok: false},
		{name: "missing", path: "nope", ok: false},
		{name: "struct is not bindable", path: "inner", ok: false},
		{name: "path through scalar", path: "id.value", ok: false},
		{name: "empty path", path: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, ok := resolveAccessor(typ, tt.path)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.mode, acc.mode)
				assert.Equal(t, tt.path, acc.path)
			}
		})
	}
}

func TestLookupAccessorCache(t *testing.T) {
	typ := reflect.TypeFor[taggedRecord]()

	first, ok := lookupAccessor(typ, "id")
	require.True(t, ok)

	second, ok := lookupAccessor(typ, "id")
	require.True(t, ok)

	assert.Same(t, first, second)

	_, ok = lookupAccessor(typ, "nope")
	assert.False(t, ok)
}

func TestReflectBinding(t *testing.T) {
	tpl := MustParse[taggedRecord]("/r/{id}/{name}/{tags:,}/{addr}/{inner.value}")

	var v taggedRecord
	require.NoError(t, tpl.MatchString("/r/1/bob/a,b/10.0.0.1/deep", &v))

	assert.Equal(t, "1", v.Identifier)
	require.NotNil(t, v.Name)
	assert.Equal(t, "bob", *v.Name)
	require.NotNil(t, v.Tags)
	assert.Equal(t, []string{"a", "b"}, *v.Tags)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), v.Addr)
	require.NotNil(t, v.Inner)
	assert.Equal(t, "deep", v.Inner.Value)

	s, err := tpl.Encode(v)
	require.NoError(t, err)
	assert.Equal(t, "/r/1/bob/a,b/10.0.0.1/deep", s)
}

func TestReflectBindingErrors(t *testing.T) {
	tpl := MustParse[taggedRecord]("/r/{addr}")

	var v taggedRecord
	err := tpl.MatchString("/r/not-an-ip", &v)
	require.ErrorIs(t, err, ErrBind)

	var berr *BindError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "addr", berr.Field)
	assert.Equal(t, "not-an-ip", berr.Value)
}

func TestEncodeNilFields(t *testing.T) {
	tpl := MustParse[taggedRecord]("/r/{name}/{tags:,}/{inner.value}")

	s, err := tpl.Encode(taggedRecord{})
	require.NoError(t, err)
	assert.Equal(t, "/r///", s)
}

func TestPointerRecordType(t *testing.T) {
	tpl := MustParse[*artist]("/artist/{slug}/{id}")

	var v *artist
	require.NoError(t, tpl.MatchString("/artist/metallica/1", &v))
	require.NotNil(t, v)
	assert.Equal(t, artist{ID: "1", Slug: "metallica"}, *v)
}

type strictRecord struct {
	values map[string]string
}

var errOnlyDigits = errors.New("only digits")

func (r *strictRecord) SetString(field, value string) error {
	for _, c := range value {
		if c < '0' || c > '9' {
			return errOnlyDigits
		}
	}
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[field] = value
	return nil
}

func (r *strictRecord) SetStrings(field string, values []string) error {
	for _, v := range values {
		if err := r.SetString(field, v); err != nil {
			return err
		}
	}
	return nil
}

func TestRecordBinding(t *testing.T) {
	t.Run("fields are not validated at compile time", func(t *testing.T) {
		_, err := Parse[strictRecord]("/{anything}/{at.all}")
		assert.NoError(t, err)
	})

	t.Run("setter receives captures", func(t *testing.T) {
		var v strictRecord
		require.NoError(t, MustParse[strictRecord]("/n/{id}").MatchString("/n/42", &v))
		assert.Equal(t, map[string]string{"id": "42"}, v.values)
	})

	t.Run("setter error becomes bind error", func(t *testing.T) {
		var v strictRecord
		err := MustParse[strictRecord]("/n/{id}").MatchString("/n/abc", &v)
		require.ErrorIs(t, err, ErrBind)
		assert.ErrorIs(t, err, errOnlyDigits)
	})

	t.Run("encode requires getter", func(t *testing.T) {
		_, err := MustParse[strictRecord]("/n/{id}").Encode(strictRecord{})
		assert.Error(t, err)
	})
}

func TestVars(t *testing.T) {
	t.Run("binds scalars and lists", func(t *testing.T) {
		tpl := MustParse[Vars]("/sell/{name}/{ids:,}")

		var v Vars
		require.NoError(t, tpl.MatchString("/sell/ticket/1,2", &v))
		assert.Equal(t, Vars{"name": {"ticket"}, "ids": {"1", "2"}}, v)
		assert.Equal(t, "ticket", v.Get("name"))
		assert.Equal(t, "", v.Get("missing"))
	})

	t.Run("getters", func(t *testing.T) {
		v := Vars{"a": {"1", "2"}, "empty": {}}

		s, ok := v.GetString("a")
		assert.True(t, ok)
		assert.Equal(t, "1", s)

		s, ok = v.GetString("empty")
		assert.True(t, ok)
		assert.Equal(t, "", s)

		_, ok = v.GetString("missing")
		assert.False(t, ok)

		list, ok := v.GetStrings("a")
		assert.True(t, ok)
		assert.Equal(t, []string{"1", "2"}, list)
	})

	t.Run("clone is deep", func(t *testing.T) {
		v := Vars{"a": {"1"}}
		c := v.Clone()
		c["a"][0] = "changed"
		c["b"] = []string{"new"}

		assert.Equal(t, Vars{"a": {"1"}}, v)
	})

	t.Run("clone of nil", func(t *testing.T) {
		var v Vars
		c := v.Clone()
		assert.NotNil(t, c)
		assert.Empty(t, c)
	})
}

func TestUUIDBinding(t *testing.T) {
	type order struct {
		ID    uuid.UUID
		Items []string
	}

	tpl := MustParse[order]("/order/{id}/{items:comma}")
	id := uuid.MustParse("0190a4b2-7c1e-7d3a-9f00-1234567890ab")

	t.Run("bind", func(t *testing.T) {
		var v order
		require.NoError(t, tpl.MatchString("/order/"+id.String()+"/a,b", &v))
		assert.Equal(t, order{ID: id, Items: []string{"a", "b"}}, v)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		var v order
		err := tpl.MatchString("/order/nope/a", &v)
		require.ErrorIs(t, err, ErrBind)

		var berr *BindError
		require.ErrorAs(t, err, &berr)
		assert.Equal(t, "id", berr.Field)
		assert.Equal(t, "nope", berr.Value)
	})

	t.Run("encode", func(t *testing.T) {
		out, err := tpl.Encode(order{ID: id, Items: []string{"x"}})
		require.NoError(t, err)
		assert.Equal(t, "/order/"+id.String()+"/x", out)
	})
}
