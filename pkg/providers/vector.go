package providers

import (
	"encoding/json"
	"fmt"
)

// ToVector converts a decoded JSON array into an embedding vector.
// It accepts the shapes produced by encoding/json ([]any of float64 or
// json.Number) as well as an already typed []float64.
func ToVector(value any) ([]float64, error) {
	switch v := value.(type) {
	case []float64:
		return v, nil
	case []any:
		vector := make([]float64, len(v))
		for i, elem := range v {
			switch n := elem.(type) {
			case float64:
				vector[i] = n
			case int:
				vector[i] = float64(n)
			case json.Number:
				f, err := n.Float64()
				if err != nil {
					return nil, fmt.Errorf("embedding[%d]: %w", i, err)
				}
				vector[i] = f
			default:
				return nil, fmt.Errorf("embedding[%d] is %T, want number", i, elem)
			}
		}
		return vector, nil
	case nil:
		return nil, ErrMissingEmbedding
	default:
		return nil, fmt.Errorf("embedding is %T, want array", value)
	}
}

// RawString renders a decoded response for error reporting.
func RawString(raw map[string]any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return string(b)
}
