package linkhandlers

import (
	"context"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/deeplink/deeplink"
)

var (
	uuidV4Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	uuidV7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

func TestDispatchIDMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		config        DispatchIDConfig
		incomingID    string
		wantID        string
		wantGenerated bool
	}{
		{
			name:          "generates UUID v4 by default",
			config:        DispatchIDConfig{},
			wantGenerated: true,
		},
		{
			name:          "does not trust incoming by default",
			config:        DispatchIDConfig{},
			incomingID:    "existing-id",
			wantGenerated: true,
		},
		{
			name:       "trusts incoming when configured",
			config:     DispatchIDConfig{TrustIncoming: true},
			incomingID: "existing-id",
			wantID:     "existing-id",
		},
		{
			name:          "generates when trust incoming but no id",
			config:        DispatchIDConfig{TrustIncoming: true},
			wantGenerated: true,
		},
		{
			name:   "custom generate func",
			config: DispatchIDConfig{GenerateFunc: func(*deeplink.Match) string { return "custom-id" }},
			wantID: "custom-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string

			d := newDispatcher(func(ctx context.Context, _ *url.URL, _ page) (bool, error) {
				captured = DispatchIDFromContext(ctx)
				return true, nil
			}, DispatchIDMiddleware(tt.config))

			ctx := context.Background()
			if tt.incomingID != "" {
				ctx = WithDispatchID(ctx, tt.incomingID)
			}

			require.NoError(t, d.ParseString(ctx, "https://example.com/page/1"))

			if tt.wantGenerated {
				assert.Regexp(t, uuidV4Regex, captured)
			} else {
				assert.Equal(t, tt.wantID, captured)
			}
		})
	}

	t.Run("each dispatch gets unique ID", func(t *testing.T) {
		var ids []string

		d := newDispatcher(func(ctx context.Context, _ *url.URL, _ page) (bool, error) {
			ids = append(ids, DispatchIDFromContext(ctx))
			return true, nil
		}, DispatchIDMiddleware(DispatchIDConfig{}))

		require.NoError(t, d.ParseString(context.Background(), "https://example.com/page/1"))
		require.NoError(t, d.ParseString(context.Background(), "https://example.com/page/1"))

		require.Len(t, ids, 2)
		assert.NotEmpty(t, ids[0])
		assert.NotEqual(t, ids[0], ids[1])
	})

	t.Run("generate func receives match", func(t *testing.T) {
		var capturedRelative string

		d := newDispatcher(claimAll, DispatchIDMiddleware(DispatchIDConfig{
			GenerateFunc: func(m *deeplink.Match) string {
				capturedRelative = m.Relative
				return "relative-based-id"
			},
		}))

		require.NoError(t, d.ParseString(context.Background(), "https://example.com/page/1?x=2"))
		assert.Equal(t, "/page/1?x=2", capturedRelative)
	})

	t.Run("empty id not in context", func(t *testing.T) {
		captured := "unset"

		d := newDispatcher(func(ctx context.Context, _ *url.URL, _ page) (bool, error) {
			captured = DispatchIDFromContext(ctx)
			return true, nil
		}, DispatchIDMiddleware(DispatchIDConfig{
			GenerateFunc: func(*deeplink.Match) string { return "" },
		}))

		require.NoError(t, d.ParseString(context.Background(), "https://example.com/page/1"))
		assert.Empty(t, captured)
	})
}

func TestDispatchIDFromContext(t *testing.T) {
	t.Run("returns empty for bare context", func(t *testing.T) {
		assert.Empty(t, DispatchIDFromContext(context.Background()))
	})

	t.Run("returns stored id", func(t *testing.T) {
		assert.Equal(t, "abc", DispatchIDFromContext(WithDispatchID(context.Background(), "abc")))
	})
}

func TestGenerateUUID(t *testing.T) {
	t.Run("v4 format", func(t *testing.T) {
		assert.Regexp(t, uuidV4Regex, GenerateUUIDv4(nil))
	})

	t.Run("v7 format", func(t *testing.T) {
		assert.Regexp(t, uuidV7Regex, GenerateUUIDv7(nil))
	})

	t.Run("v7 is time ordered", func(t *testing.T) {
		first := GenerateUUIDv7(nil)
		second := GenerateUUIDv7(nil)
		assert.Less(t, first, second)
	})
}
