package query

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// suggestion threshold for Suggest, JaroWinkler similarity in [0, 1]
const minSimilarity = 0.7

// Selector translates the short codes of a field selector ("of" parameter,
// ex. `t-n-u`) into their long field names.
type Selector struct {
	codes map[string]string
	// declaration order, for stable suggestions
	order []string
}

// NewSelector creates a selector from (short code, long name) pairs.
func NewSelector(pairs ...[2]string) Selector {
	s := Selector{codes: make(map[string]string, len(pairs))}
	for _, pair := range pairs {
		if _, exists := s.codes[pair[0]]; !exists {
			s.order = append(s.order, pair[0])
		}
		s.codes[pair[0]] = pair[1]
	}
	return s
}

// Remap maps every short code to its long name, unknown codes are kept as is.
func (s Selector) Remap(selector string) string {
	fields := strings.Split(selector, "-")
	for i, f := range fields {
		if long, ok := s.codes[f]; ok {
			fields[i] = long
		}
	}
	return strings.Join(fields, "-")
}

func (s Selector) known(code string) bool {
	if _, ok := s.codes[code]; ok {
		return true
	}
	for _, long := range s.codes {
		if long == code {
			return true
		}
	}
	return false
}

// Unknown lists the codes of a selector that are neither a short code nor a
// long name of this selector.
func (s Selector) Unknown(selector string) []string {
	var unknown []string
	for _, f := range strings.Split(selector, "-") {
		if f == "" || s.known(f) {
			continue
		}
		unknown = append(unknown, f)
	}
	return unknown
}

// Suggest returns the short code closest to code.
func (s Selector) Suggest(code string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, short := range s.order {
		score := matchr.JaroWinkler(code, short, false)
		if longScore := matchr.JaroWinkler(code, s.codes[short], false); longScore > score {
			score = longScore
		}
		if score > bestScore {
			best, bestScore = short, score
		}
	}
	if bestScore < minSimilarity {
		return "", false
	}
	return best, true
}
