package mock

import (
	"context"
	"strings"
	"unicode"

	"github.com/Jash2606/vector-graph-retrieval-app/ai"
)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses a simple rule-based extraction.
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]ai.ExtractedEntity, error)

	callCount int
}

// NewMockEntityExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities extracts simple mock entities from text.
// Default behavior: capitalized word runs become entities (consecutive
// capitalized words are joined), all-digit 4-character words become dates.
// Good enough to drive pipeline and search tests deterministically.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) ([]ai.ExtractedEntity, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	entities := make([]ai.ExtractedEntity, 0, 4)
	seen := make(map[string]bool)

	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		name := strings.Join(run, " ")
		run = nil
		if seen[name] {
			return
		}
		seen[name] = true
		typ := "location"
		if strings.Contains(name, " ") {
			typ = "person"
		}
		entities = append(entities, ai.ExtractedEntity{Name: name, Type: typ})
	}

	for _, word := range strings.Fields(text) {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if cleaned == "" {
			flush()
			continue
		}

		if isYear(cleaned) {
			flush()
			if !seen[cleaned] {
				seen[cleaned] = true
				entities = append(entities, ai.ExtractedEntity{Name: cleaned, Type: "date"})
			}
			continue
		}

		if unicode.IsUpper([]rune(cleaned)[0]) {
			run = append(run, cleaned)
		} else {
			flush()
		}
	}
	flush()

	return entities, nil
}

// isYear reports whether s looks like a four-digit year.
func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
