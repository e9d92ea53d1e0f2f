package imgcore

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed resources/ai_keywords.json
var aiKeywordsJSON []byte

// keywordTable is built on first use and read-only afterwards. A malformed
// dictionary is a broken build, so it panics on every call.
var keywordTable = sync.OnceValue(func() []string {
	kw, err := parseKeywords(aiKeywordsJSON)
	if err != nil {
		panic(err)
	}
	return kw
})

func parseKeywords(data []byte) ([]string, error) {
	var doc struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("imgcore: invalid keyword dictionary: %w", err)
	}
	lower := cases.Lower(language.Und)
	out := make([]string, 0, len(doc.Keywords))
	for _, k := range doc.Keywords {
		if k = lower.String(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out, nil
}

// Keywords returns a copy of the bundled AI-generation keyword table.
func Keywords() []string {
	kw := keywordTable()
	out := make([]string, len(kw))
	copy(out, kw)
	return out
}

// keywordMatcher lower-cases its inputs and reports whether any keyword
// occurs in them. It is not safe for concurrent use.
type keywordMatcher struct {
	keywords []string
	lower    cases.Caser
}

func newKeywordMatcher() *keywordMatcher {
	return &keywordMatcher{keywords: keywordTable(), lower: cases.Lower(language.Und)}
}

func (m *keywordMatcher) match(texts ...string) bool {
	for _, t := range texts {
		if t == "" {
			continue
		}
		lt := m.lower.String(t)
		for _, k := range m.keywords {
			if strings.Contains(lt, k) {
				return true
			}
		}
	}
	return false
}
