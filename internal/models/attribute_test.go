package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"psychographic", "Behavioral", "CONTEXTUAL"} {
		cat, err := ParseCategory(raw)
		require.NoError(t, err)
		assert.True(t, cat.Valid())
	}

	_, err := ParseCategory("invalid_cat")
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestNewAttributeContainer(t *testing.T) {
	t.Run("nil payload defaults to empty object", func(t *testing.T) {
		ac, err := NewAttributeContainer(1, CategoryPsychographic, nil)
		require.NoError(t, err)
		assert.Equal(t, "{}", ac.Data)
		assert.Empty(t, ac.Payload())
	})

	t.Run("mapping payload", func(t *testing.T) {
		ac, err := NewAttributeContainer(1, CategoryBehavioral, map[string]any{"browsing_habits": []any{"news"}})
		require.NoError(t, err)
		assert.Equal(t, []any{"news"}, ac.Payload()["browsing_habits"])
	})

	t.Run("serialized JSON payload", func(t *testing.T) {
		ac, err := NewAttributeContainer(1, CategoryContextual, `{"device_type": "mobile"}`)
		require.NoError(t, err)
		assert.Equal(t, "mobile", ac.Field("device_type"))
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := NewAttributeContainer(1, Category("astrological"), nil)
		require.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("malformed JSON is rejected, not coerced", func(t *testing.T) {
		_, err := NewAttributeContainer(1, CategoryPsychographic, "{not json")
		require.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("non-object JSON is rejected", func(t *testing.T) {
		_, err := NewAttributeContainer(1, CategoryPsychographic, `[1, 2, 3]`)
		require.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("unsupported payload type", func(t *testing.T) {
		_, err := NewAttributeContainer(1, CategoryPsychographic, 42)
		require.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestPayloadFailOpenOnCorruptData(t *testing.T) {
	ac := &AttributeContainer{PersonaID: 1, Category: CategoryPsychographic, Data: "{corrupt"}
	assert.Empty(t, ac.Payload())
}

func TestSetPayloadFailClosed(t *testing.T) {
	ac, err := NewAttributeContainer(1, CategoryPsychographic, map[string]any{"lifestyle": "urban"})
	require.NoError(t, err)

	require.ErrorIs(t, ac.SetPayload("{broken"), ErrInvalidPayload)
	// stored content untouched after a rejected write
	assert.Equal(t, "urban", ac.Field("lifestyle"))
}

func TestPayloadRoundTrip(t *testing.T) {
	ac, err := NewAttributeContainer(1, CategoryBehavioral, map[string]any{
		"browsing_habits": []any{"news", "tech"},
		"device_usage":    map[string]any{"mobile": "heavy"},
	})
	require.NoError(t, err)

	before := ac.Payload()
	require.NoError(t, ac.SetPayload(ac.Payload()))
	assert.Equal(t, before, ac.Payload())
}

func TestSetField(t *testing.T) {
	ac, err := NewAttributeContainer(1, CategoryPsychographic, map[string]any{
		"interests": []any{"a"},
		"lifestyle": "X",
	})
	require.NoError(t, err)

	require.NoError(t, ac.SetField("lifestyle", "Y"))
	assert.Equal(t, "Y", ac.Field("lifestyle"))
	assert.Equal(t, []any{"a"}, ac.Field("interests"))
	assert.Nil(t, ac.Field("missing"))
}

func TestMergePreservesUntouchedKeys(t *testing.T) {
	ac, err := NewAttributeContainer(1, CategoryPsychographic, map[string]any{
		"interests": []any{"a"},
		"lifestyle": "X",
	})
	require.NoError(t, err)

	require.NoError(t, ac.Merge(map[string]any{"lifestyle": "Y"}))
	assert.Equal(t, map[string]any{
		"interests": []any{"a"},
		"lifestyle": "Y",
	}, ac.Payload())
}

func TestMergeIdempotent(t *testing.T) {
	ac, err := NewAttributeContainer(1, CategoryContextual, map[string]any{"season": "winter"})
	require.NoError(t, err)

	update := map[string]any{"device_type": "mobile"}
	require.NoError(t, ac.Merge(update))
	once := ac.Payload()
	require.NoError(t, ac.Merge(update))
	assert.Equal(t, once, ac.Payload())
}
