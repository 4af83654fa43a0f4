package narou

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DecodePolicy decides what happens when a single entity fails to decode.
type DecodePolicy int

const (
	// AbortBatch fails the whole call on the first bad entity.
	AbortBatch DecodePolicy = iota
	// SkipInvalid drops bad entities and counts them in Response.Skipped.
	SkipInvalid
)

func (p DecodePolicy) String() string {
	if p == SkipInvalid {
		return "skip"
	}
	return "abort"
}

// ParseDecodePolicy accepts "abort" and "skip".
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch s {
	case "", "abort":
		return AbortBatch, nil
	case "skip":
		return SkipInvalid, nil
	}
	return AbortBatch, fmt.Errorf("unknown decode policy %q", s)
}

// Response is the typed result of a call.
type Response[E any] struct {
	// AllCount is the total number of matches reported by the server, nil
	// when the endpoint has no count record or the record was unusable.
	AllCount *uint32
	Items    []E
	// Skipped is the number of entities dropped under SkipInvalid.
	Skipped int
}

func assemble[E any](count *uint32, items []E, skipped int) Response[E] {
	if items == nil {
		items = []E{}
	}
	return Response[E]{AllCount: count, Items: items, Skipped: skipped}
}

const countKey = "allcount"

// countRecord reports whether element is the leading count pseudo-record
// and if so the count it carries. The count is nil when the value is not a
// non-negative integer that fits in uint32.
func countRecord(element any) (count *uint32, ok bool) {
	obj, isObj := element.(map[string]any)
	if !isObj {
		return nil, false
	}
	raw, has := obj[countKey]
	if !has {
		return nil, false
	}

	var n uint64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return nil, true
		}
		n = parsed
	case int:
		if v < 0 {
			return nil, true
		}
		n = uint64(v)
	case uint64:
		n = v
	default:
		return nil, true
	}
	if n > math.MaxUint32 {
		return nil, true
	}
	c := uint32(n)
	return &c, true
}

func hasKeys(obj map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}
	return true
}

// reconcile turns an envelope into a typed response following the shape
// of endpoint.
func reconcile[E any](env Envelope, endpoint Endpoint, policy DecodePolicy) (Response[E], error) {
	switch root := env.Root.(type) {
	case []any:
		var count *uint32
		elements := root
		if endpoint.CountRecord && len(elements) > 0 {
			if c, ok := countRecord(elements[0]); ok {
				count = c
				elements = elements[1:]
			}
		}

		items := make([]E, 0, len(elements))
		skipped := 0
		for i, element := range elements {
			entity, err := decodeEntity[E](element)
			if err != nil {
				if policy == SkipInvalid {
					skipped++
					continue
				}
				return Response[E]{}, newError(
					KindDeserialization,
					endpoint.Name,
					fmt.Errorf("entity %d: %w", i, err),
				)
			}
			items = append(items, entity)
		}
		return assemble(count, items, skipped), nil
	case map[string]any:
		if !hasKeys(root, endpoint.DefiningKeys) {
			return assemble[E](nil, nil, 0), nil
		}
		entity, err := decodeEntity[E](root)
		if err != nil {
			if policy == SkipInvalid {
				return assemble[E](nil, nil, 1), nil
			}
			return Response[E]{}, newError(KindDeserialization, endpoint.Name, err)
		}
		return assemble(nil, []E{entity}, 0), nil
	}
	return assemble[E](nil, nil, 0), nil
}

// Decode runs the decoding half of the pipeline on a body: decompression,
// format decoding and envelope reconciliation.
func Decode[E any](data []byte, format OutputFormat, gzipped bool, endpoint Endpoint, policy DecodePolicy) (Response[E], error) {
	if !format.Supported() {
		_, err := DecodeEnvelope(nil, format)
		return Response[E]{}, err
	}
	body, err := Decompress(data, gzipped)
	if err != nil {
		return Response[E]{}, err
	}
	env, err := DecodeEnvelope(body, format)
	if err != nil {
		return Response[E]{}, err
	}
	return reconcile[E](env, endpoint, policy)
}
