package seedfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/satishbabariya/prisma-bulk/runtime/types"
)

// jsonReader streams objects from either a top-level array or a sequence of
// objects, keeping each object's key order
type jsonReader struct {
	dec     *json.Decoder
	close   func() error
	started bool
	inArray bool
	row     int
}

func newJSONReader(r io.Reader, closeFn func() error) *jsonReader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonReader{dec: dec, close: closeFn}
}

func (r *jsonReader) Next() (*types.Attributes, error) {
	if !r.started {
		r.started = true
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		switch tok {
		case json.Delim('['):
			r.inArray = true
		case json.Delim('{'):
			return r.object()
		default:
			return nil, fmt.Errorf("row 1: expected object or array, got %v", tok)
		}
	}

	if r.inArray && !r.dec.More() {
		if _, err := r.dec.Token(); err != nil {
			return nil, err
		}
		r.inArray = false
	}
	if !r.inArray && !r.dec.More() {
		return nil, io.EOF
	}

	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("row %d: expected object, got %v", r.row+1, tok)
	}
	return r.object()
}

// object reads the members of an object whose opening brace was consumed
func (r *jsonReader) object() (*types.Attributes, error) {
	r.row++
	attrs := types.NewAttributes()

	for r.dec.More() {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("row %d: expected key, got %v", r.row, tok)
		}

		var raw json.RawMessage
		if err := r.dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", r.row, key, err)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", r.row, key, err)
		}
		attrs.Set(key, v)
	}

	if _, err := r.dec.Token(); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (r *jsonReader) Close() error {
	return r.close()
}

// jsonValue converts a scalar; nested objects and arrays are kept as JSON text
func jsonValue(raw json.RawMessage) (types.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return types.Null(), nil
	}

	switch trimmed[0] {
	case 'n':
		return types.Null(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return types.Value{}, err
		}
		return types.Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return types.Value{}, err
		}
		return types.Text(s), nil
	case '{', '[':
		return types.Text(string(trimmed)), nil
	default:
		return numberValue(string(trimmed))
	}
}

func numberValue(s string) (types.Value, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return types.Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.Value{}, fmt.Errorf("invalid number %q", s)
	}
	return types.Float(f), nil
}
