package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlainPrimitivesPassThrough(t *testing.T) {
	assert.Equal(t, "hello", Plain("hello"))
	assert.Equal(t, 42, Plain(42))
	assert.Equal(t, true, Plain(true))
	assert.Nil(t, Plain(nil))
}

func TestPlainTimestamps(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-01T12:30:00Z", Plain(ts))
	assert.Equal(t, "2024-05-01T12:30:00Z", Plain(&ts))

	var nilTime *time.Time
	assert.Nil(t, Plain(nilTime))
}

func TestPlainObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, id.Hex(), Plain(id))
}

func TestPlainRecursesThroughMapsAndSlices(t *testing.T) {
	id := primitive.NewObjectID()
	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	in := map[string]any{
		"id":       id,
		"created":  ts,
		"tags":     []any{"a", ts},
		"liked_by": []string{"u1", "u2"},
	}

	out, ok := Plain(in).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, id.Hex(), out["id"])
	assert.Equal(t, "2024-05-01T12:30:00Z", out["created"])
	assert.Equal(t, []any{"a", "2024-05-01T12:30:00Z"}, out["tags"])
	assert.Equal(t, []any{"u1", "u2"}, out["liked_by"])
}

func TestPlainStructGoesThroughJSONRoundTrip(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	out, ok := Plain(payload{Title: "x", Count: 3}).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x", out["title"])
	assert.Equal(t, float64(3), out["count"])
}
