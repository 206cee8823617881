package textproc

import (
	"errors"
	"strings"
	"testing"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

func TestCleanStripsHTML(t *testing.T) {
	p := NewProcessor()

	cleaned, err := p.Clean("<html><body><h1>Title</h1><p>Some   text.</p></body></html>")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if cleaned != "Title Some text." {
		t.Fatalf("Expected 'Title Some text.', got %q", cleaned)
	}
}

func TestCleanDropsScriptBodies(t *testing.T) {
	p := NewProcessor()

	cleaned, err := p.Clean("<p>keep</p><script>var x = 1;</script><p>this</p>")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if cleaned != "keep this" {
		t.Fatalf("Expected 'keep this', got %q", cleaned)
	}
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	p := NewProcessor()

	cleaned, err := p.Clean("  hello \t\n  world  ")
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if cleaned != "hello world" {
		t.Fatalf("Expected 'hello world', got %q", cleaned)
	}
}

func TestCleanRejectsEmptyInput(t *testing.T) {
	p := NewProcessor()

	if _, err := p.Clean(""); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := p.Clean("   \n\t "); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for whitespace, got %v", err)
	}
	// Markup-only input has no text content
	if _, err := p.Clean("<br/><hr/>"); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for markup-only input, got %v", err)
	}
}

func TestChunkRespectsTokenBudget(t *testing.T) {
	p := NewProcessor(WithMaxTokens(10))

	// 8 sentences of 5 words each
	var sentences []string
	for i := 0; i < 8; i++ {
		sentences = append(sentences, "one two three four five.")
	}
	chunks, err := p.Chunk(strings.Join(sentences, " "))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) != 4 {
		t.Fatalf("Expected 4 chunks of 2 sentences, got %d: %v", len(chunks), chunks)
	}
	for _, chunk := range chunks {
		if n := WordCounter(chunk); n > 10 {
			t.Fatalf("Chunk exceeds budget: %d tokens in %q", n, chunk)
		}
	}
}

func TestChunkSplitsOversizedSentenceOnWords(t *testing.T) {
	p := NewProcessor(WithMaxTokens(4))

	chunks, err := p.Chunk("alpha beta gamma delta epsilon zeta eta theta iota")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	joined := strings.Join(chunks, " ")
	if joined != "alpha beta gamma delta epsilon zeta eta theta iota" {
		t.Fatalf("Words lost or reordered: %q", joined)
	}
	for _, chunk := range chunks {
		if WordCounter(chunk) > 4 {
			t.Fatalf("Chunk exceeds budget: %q", chunk)
		}
	}
}

func TestChunkDeterministic(t *testing.T) {
	p := NewProcessor(WithMaxTokens(6))
	text := "First sentence here. Second sentence follows! Third one? Fourth closes it."

	a, err := p.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	b, err := p.Chunk(text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Non-deterministic chunk count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Non-deterministic chunk %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestChunkKeepsSentencesIntact(t *testing.T) {
	p := NewProcessor(WithMaxTokens(6))

	chunks, err := p.Chunk("One two three four. Five six seven eight.")
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "One two three four." {
		t.Fatalf("First sentence split: %q", chunks[0])
	}
	if chunks[1] != "Five six seven eight." {
		t.Fatalf("Second sentence split: %q", chunks[1])
	}
}

func TestChunkRejectsEmptyInput(t *testing.T) {
	p := NewProcessor()
	if _, err := p.Chunk(" "); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}
