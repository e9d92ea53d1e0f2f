package imgcore

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Ramp is an ordered set of glyphs for rendering brightness. The first rune
// stands for the darkest cells, the last for the brightest.
type Ramp struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Chars string `json:"chars"`
}

// DefaultRampID names the ramp used when none is selected.
const DefaultRampID = "classic"

// fallbackRampChars is used if the default id is ever missing from the map.
const fallbackRampChars = " ._,-=+:;cba!?0123456789$W#@"

// NewRamp builds a ramp with a label derived from id.
func NewRamp(id, chars string) Ramp {
	return Ramp{ID: id, Label: RampLabel(id), Chars: chars}
}

// Runes returns the glyphs by Unicode scalar value.
func (r Ramp) Runes() []rune {
	return []rune(r.Chars)
}

// Len is the number of glyphs in the ramp.
func (r Ramp) Len() int {
	return utf8.RuneCountInString(r.Chars)
}

// RampLabel turns "dense_gradient" into "Dense Gradient".
func RampLabel(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

//go:embed resources/ascii_chars.json
var asciiCharsJSON []byte

var rampTable = sync.OnceValue(func() map[string]Ramp {
	ramps, err := parseRamps(asciiCharsJSON)
	if err != nil {
		panic(err)
	}
	return ramps
})

func parseRamps(data []byte) (map[string]Ramp, error) {
	var doc map[string]struct {
		Label string `json:"label"`
		Chars string `json:"chars"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("imgcore: invalid character ramp map: %w", err)
	}
	ramps := make(map[string]Ramp, len(doc))
	for id, v := range doc {
		r := NewRamp(id, v.Chars)
		if v.Label != "" {
			r.Label = v.Label
		}
		ramps[id] = r
	}
	return ramps, nil
}

// Ramps lists the bundled character ramps ordered by id.
func Ramps() []Ramp {
	table := rampTable()
	out := make([]Ramp, 0, len(table))
	for _, r := range table {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupRamp returns the bundled ramp with the given id.
func LookupRamp(id string) (Ramp, bool) {
	r, ok := rampTable()[id]
	return r, ok
}

// RampOrDefault returns the ramp with the given id, or the default ramp when
// id is empty or unknown.
func RampOrDefault(id string) Ramp {
	if r, ok := LookupRamp(id); ok {
		return r
	}
	if r, ok := LookupRamp(DefaultRampID); ok {
		return r
	}
	return NewRamp(DefaultRampID, fallbackRampChars)
}
