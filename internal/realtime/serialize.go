package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plain converts a payload into plain data (maps, slices, strings, numbers,
// booleans) ready for the wire. Timestamps become RFC 3339 strings and object
// ids become hex strings, recursively through nested maps and slices. Anything
// else goes through a JSON round trip; values that cannot be marshalled fall
// back to their string form rather than failing the whole event.
func Plain(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for key, value := range t {
			out[key] = Plain(value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, value := range t {
			out[i] = Plain(value)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, value := range t {
			out[i] = value
		}
		return out
	default:
		return plainViaJSON(v)
	}
}

func plainViaJSON(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}
