package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
)

// Args carries the per-call inputs. All fields are optional; the zero value
// issues a bare request.
type Args struct {
	// Path maps template placeholders to their substituted values.
	Path map[string]string

	// Query supports repeated keys.
	Query url.Values

	// Body is serialized as JSON unless it is already a []byte.
	Body any

	// Files switches the request to multipart form data. A structured Body
	// is ignored for encoding purposes when files are present.
	Files map[string]io.Reader

	// Header entries override the client defaults.
	Header http.Header
}

func encodeBody(args Args) (string, []byte, error) {
	if len(args.Files) > 0 {
		var buf bytes.Buffer

		w := multipart.NewWriter(&buf)

		// stable part order keeps retried requests byte-identical
		for _, name := range slices.Sorted(maps.Keys(args.Files)) {
			part, err := w.CreateFormFile(name, name)

			if err != nil {
				return "", nil, err
			}

			if _, err := io.Copy(part, args.Files[name]); err != nil {
				return "", nil, err
			}
		}

		if err := w.Close(); err != nil {
			return "", nil, err
		}

		return w.FormDataContentType(), buf.Bytes(), nil
	}

	if args.Body != nil {
		if raw, ok := args.Body.([]byte); ok {
			return "application/octet-stream", raw, nil
		}

		data, err := json.Marshal(args.Body)

		if err != nil {
			return "", nil, err
		}

		return "application/json", data, nil
	}

	return "", nil, nil
}
