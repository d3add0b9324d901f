package deeplink

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySample(t *testing.T) {
	ctx := context.Background()

	var handled int
	newDispatcher := func() *Dispatcher {
		d := New()
		RegisterFunc(d, Literal[void]("/test/1"), void{}, claim(&handled, true))
		RegisterFunc(d, MustParse[testData]("/test/{test1}/{test2}"), testData{}, func(context.Context, *url.URL, testData) (bool, error) {
			handled++
			return true, nil
		})
		RegisterFunc(d, artistTemplate, artist{}, func(context.Context, *url.URL, artist) (bool, error) {
			handled++
			return true, nil
		})
		return d
	}

	t.Run("claimed by sample registration", func(t *testing.T) {
		handled = 0
		d := newDispatcher()

		var got artist
		err := VerifySample(ctx, d, Sample[artist]{
			Template: artistTemplate,
			URL:      mustURL(t, "https://x.com/artist/metallica/1"),
			Assert:   func(v artist) { got = v },
		})
		require.NoError(t, err)
		assert.Equal(t, artist{ID: "1", Slug: "metallica"}, got)
		assert.Equal(t, 0, handled)
	})

	t.Run("matched by description", func(t *testing.T) {
		handled = 0
		d := newDispatcher()

		var got Vars
		err := VerifySample(ctx, d, Sample[Vars]{
			Template: MustParse[Vars]("/artist/{name}/{code}"),
			URL:      mustURL(t, "https://x.com/artist/metallica/1"),
			Seed:     Vars{"seeded": {"yes"}},
			Assert:   func(v Vars) { got = v },
		})
		require.NoError(t, err)
		assert.Equal(t, Vars{"seeded": {"yes"}, "name": {"metallica"}, "code": {"1"}}, got)
	})

	t.Run("shadowed by earlier registration", func(t *testing.T) {
		handled = 0
		d := newDispatcher()

		called := false
		err := VerifySample(ctx, d, Sample[testData]{
			Template: MustParse[testData]("/test/{test1}/{test2}"),
			URL:      mustURL(t, "https://x.com/test/1/2"),
			Assert:   func(testData) { called = true },
		})
		require.ErrorIs(t, err, ErrShadowed)

		var serr *ShadowedError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "/test/{}/{}", serr.Template)
		assert.Equal(t, "/test/1", serr.ClaimedBy)
		assert.False(t, called)
		assert.Equal(t, 1, handled)
	})

	t.Run("template not registered", func(t *testing.T) {
		d := newDispatcher()
		u := mustURL(t, "https://x.com/nope")

		err := VerifySample(ctx, d, Sample[void]{
			Template: Literal[void]("/nope"),
			URL:      u,
		})

		var nm *NoMatchError
		require.ErrorAs(t, err, &nm)
		assert.Same(t, u, nm.URL)
		assert.Empty(t, nm.Errors)
	})

	t.Run("sample does not match its url", func(t *testing.T) {
		d := newDispatcher()

		err := VerifySample(ctx, d, Sample[artist]{
			Template: artistTemplate,
			URL:      mustURL(t, "https://x.com/location/a/b/c"),
		})
		assert.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("dispatcher is not modified", func(t *testing.T) {
		handled = 0
		d := newDispatcher()

		require.NoError(t, VerifySample(ctx, d, Sample[artist]{
			Template: artistTemplate,
			URL:      mustURL(t, "https://x.com/artist/a/1"),
		}))
		require.NoError(t, d.ParseString(ctx, "https://x.com/artist/a/1"))
		assert.Equal(t, 1, handled)
		assert.Equal(t, 3, d.Len())
	})

	t.Run("malformed url", func(t *testing.T) {
		d := newDispatcher()

		err := VerifySample(ctx, d, Sample[artist]{
			Template: artistTemplate,
			URL:      nil,
		})
		assert.ErrorIs(t, err, ErrMalformedURL)
	})
}
