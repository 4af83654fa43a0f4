package narou

import "bytes"

// OutputFormat is the "out" parameter of a request.
type OutputFormat int

const (
	// FormatYAML is what the api answers with when "out" is absent.
	FormatYAML OutputFormat = iota
	FormatJSON
	FormatPHP
	FormatAtom
	FormatJSONP
)

// ParseOutputFormat maps a wire value to an OutputFormat, unknown values
// fall back to FormatYAML like the api itself does.
func ParseOutputFormat(s string) OutputFormat {
	switch s {
	case "json":
		return FormatJSON
	case "php":
		return FormatPHP
	case "atom":
		return FormatAtom
	case "jsonp":
		return FormatJSONP
	}
	return FormatYAML
}

func (f OutputFormat) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatPHP:
		return "php"
	case FormatAtom:
		return "atom"
	case FormatJSONP:
		return "jsonp"
	}
	return "yaml"
}

// Supported is false for the formats this client refuses to decode.
func (f OutputFormat) Supported() bool {
	return f == FormatJSON || f == FormatYAML
}

// DetectFormat guesses the format of a body read from somewhere other than
// the api: JSON if the first non-space byte opens an object or array.
func DetectFormat(data []byte) OutputFormat {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return FormatYAML
	}
	switch trimmed[0] {
	case '{', '[':
		return FormatJSON
	}
	return FormatYAML
}
