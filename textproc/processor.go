package textproc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/Jash2606/vector-graph-retrieval-app/core"
)

// DefaultMaxTokens is the default chunk size budget.
const DefaultMaxTokens = 256

// TokenCounter reports how many tokens a piece of text costs against the
// chunk budget. The default counts whitespace-separated words; use
// NewTiktokenCounter for model-accurate counts.
type TokenCounter func(text string) int

// WordCounter counts whitespace-separated words.
// Deterministic and dependency-free, suitable for tests.
func WordCounter(text string) int {
	return len(strings.Fields(text))
}

// Processor cleans and chunks raw input text.
// Identical input always yields identical output, which ingestion relies on
// for idempotent re-processing.
type Processor struct {
	maxTokens int
	counter   TokenCounter
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxTokens sets the per-chunk token budget. Default is 256.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithTokenCounter sets the token counting function. Default counts words.
func WithTokenCounter(counter TokenCounter) Option {
	return func(p *Processor) {
		if counter != nil {
			p.counter = counter
		}
	}
}

// NewProcessor creates a text processor.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		maxTokens: DefaultMaxTokens,
		counter:   WordCounter,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxTokens returns the configured per-chunk budget.
func (p *Processor) MaxTokens() int {
	return p.maxTokens
}

// Clean normalizes raw input: invalid UTF-8 sequences are dropped, HTML
// markup is stripped, and whitespace is collapsed to single spaces.
// Fails with ErrInvalidInput if the input is empty or contains no text
// after cleaning.
func (p *Processor) Clean(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty input text", core.ErrInvalidInput)
	}

	sanitized := strings.ReplaceAll(strings.ToValidUTF8(raw, ""), "\x00", "")
	text := stripMarkup(sanitized)
	cleaned := strings.Join(strings.Fields(text), " ")

	if cleaned == "" {
		return "", fmt.Errorf("%w: input contains no text content", core.ErrInvalidInput)
	}
	return cleaned, nil
}

// Chunk splits cleaned text into an ordered sequence of chunks, each within
// the token budget. Splits prefer sentence boundaries; a single sentence
// longer than the budget is split on word boundaries, never mid-token.
// The final chunk may be shorter than the budget.
func (p *Processor) Chunk(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input text", core.ErrInvalidInput)
	}

	var chunks []string
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentTokens = 0
		}
	}

	for _, sentence := range splitSentences(text) {
		for _, piece := range p.splitOversized(sentence) {
			tokens := p.counter(piece)
			if currentTokens+tokens > p.maxTokens {
				flush()
			}
			current = append(current, piece)
			currentTokens += tokens
		}
	}
	flush()

	return chunks, nil
}

// splitOversized breaks a sentence that alone exceeds the budget into
// word-boundary pieces that fit. Most sentences pass through untouched.
func (p *Processor) splitOversized(sentence string) []string {
	if p.counter(sentence) <= p.maxTokens {
		return []string{sentence}
	}

	words := strings.Fields(sentence)
	var pieces []string
	var piece []string
	pieceTokens := 0

	for _, word := range words {
		tokens := p.counter(word)
		if pieceTokens+tokens > p.maxTokens && len(piece) > 0 {
			pieces = append(pieces, strings.Join(piece, " "))
			piece = nil
			pieceTokens = 0
		}
		piece = append(piece, word)
		pieceTokens += tokens
	}
	if len(piece) > 0 {
		pieces = append(pieces, strings.Join(piece, " "))
	}
	return pieces
}

// splitSentences splits text on sentence-ending punctuation followed by a
// space. The terminator stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Consume a run of terminators ("...", "?!")
		for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
			i++
		}
		if i+1 < len(runes) && runes[i+1] != ' ' {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// stripMarkup removes HTML tags, keeping only text content. Script and style
// bodies are dropped entirely. Plain text without markup passes through.
func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}
