package rest

import (
	"encoding/json"
	"strings"
)

type Result struct {
	Status      int
	ContentType string

	Raw []byte
}

// Value returns the decoded JSON value when the response declared a
// structured content type, otherwise the raw bytes.
func (r *Result) Value() (any, error) {
	if strings.Contains(r.ContentType, "application/json") {
		var value any

		if err := json.Unmarshal(r.Raw, &value); err != nil {
			return nil, err
		}

		return value, nil
	}

	return r.Raw, nil
}

func (r *Result) Decode(v any) error {
	return json.Unmarshal(r.Raw, v)
}
