package narou

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"
)

// Decompress gunzips data when gzipped is set, otherwise data is returned
// as is. The gzip level sent with the request is a hint to the server and
// plays no part here.
func Decompress(data []byte, gzipped bool) ([]byte, error) {
	if !gzipped {
		return data, nil
	}
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, newError(KindDecompression, "decompress", err)
	}
	defer reader.Close()
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, newError(KindDecompression, "decompress", err)
	}
	return out, nil
}

// Envelope is a decoded body before reconciliation: a tree of
// map[string]any, []any, string, bool, json.Number (JSON) or numeric Go
// types (YAML) and nil.
type Envelope struct {
	Root any
}

func isBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// DecodeEnvelope parses data in the given format. php, atom and jsonp fail
// with KindUnsupportedFormat without looking at data.
func DecodeEnvelope(data []byte, format OutputFormat) (Envelope, error) {
	if !format.Supported() {
		return Envelope{}, newError(
			KindUnsupportedFormat,
			"decode",
			fmt.Errorf("%s output is not supported", format),
		)
	}
	if isBlank(data) {
		return Envelope{}, nil
	}

	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		var root any
		err := decoder.Decode(&root)
		if err != nil {
			return Envelope{}, newError(KindDeserialization, "decode json", err)
		}
		err = decoder.Decode(&struct{}{})
		if err != io.EOF {
			if err == nil {
				err = fmt.Errorf("trailing data after offset %d", decoder.InputOffset())
			}
			return Envelope{}, newError(KindDeserialization, "decode json", err)
		}
		return Envelope{Root: root}, nil
	default:
		var root any
		err := yaml.Unmarshal(data, &root)
		if err != nil {
			return Envelope{}, newError(KindDeserialization, "decode yaml", err)
		}
		return Envelope{Root: normalize(root)}, nil
	}
}

// normalize turns a yaml tree into one that encoding/json can marshal.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, inner := range v {
			v[k] = normalize(inner)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case []any:
		for i, inner := range v {
			v[i] = normalize(inner)
		}
		return v
	case time.Time:
		return v.Format(time.DateTime)
	}
	return v
}

// decodeEntity converts one generic element into E. Only objects can
// become entities.
func decodeEntity[E any](element any) (E, error) {
	var entity E
	if _, ok := element.(map[string]any); !ok {
		return entity, fmt.Errorf("expected an object, got %T", element)
	}
	buf, err := json.Marshal(element)
	if err != nil {
		return entity, err
	}
	err = json.Unmarshal(buf, &entity)
	return entity, err
}
