package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chinquiz/internal/model"
)

func TestParseSubmitScore(t *testing.T) {
	input, err := ParseSubmitScore([]byte(`{"userId":"u-1","totalTime":45300,"penalties":2,"displayName":"Alice"}`))
	require.NoError(t, err)

	assert.Equal(t, model.UserID("u-1"), input.UserID)
	require.NotNil(t, input.TotalTimeMs)
	assert.Equal(t, int64(45300), *input.TotalTimeMs)
	require.NotNil(t, input.Penalties)
	assert.Equal(t, int64(2), *input.Penalties)
	assert.Equal(t, "Alice", input.DisplayName)
}

func TestParseSubmitScoreOptionalName(t *testing.T) {
	input, err := ParseSubmitScore([]byte(`{"userId":"u-1","totalTime":0,"penalties":0,"displayName":null}`))
	require.NoError(t, err)
	assert.Empty(t, input.DisplayName)
}

func TestParseSubmitScorePassesNegativesThrough(t *testing.T) {
	input, err := ParseSubmitScore([]byte(`{"userId":"u-1","totalTime":-5,"penalties":1}`))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), *input.TotalTimeMs)
}

func TestParseSubmitScoreRejectsWrongTypes(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`[1,2,3]`,
		`{"totalTime":1,"penalties":0}`,
		`{"userId":"","totalTime":1,"penalties":0}`,
		`{"userId":42,"totalTime":1,"penalties":0}`,
		`{"userId":"u","totalTime":"45300","penalties":0}`,
		`{"userId":"u","totalTime":1,"penalties":"2"}`,
		`{"userId":"u","penalties":0}`,
		`{"userId":"u","totalTime":1}`,
		`{"userId":"u","totalTime":1.5,"penalties":0}`,
		`{"userId":"u","totalTime":true,"penalties":0}`,
		`{"userId":"u","totalTime":1,"penalties":0,"displayName":7}`,
	}
	for _, body := range bodies {
		_, err := ParseSubmitScore([]byte(body))
		assert.ErrorIs(t, err, model.ErrInvalidInput, body)
	}
}
