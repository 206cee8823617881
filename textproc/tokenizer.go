package textproc

import "github.com/pkoukk/tiktoken-go"

// NewTiktokenCounter returns a TokenCounter backed by a tiktoken BPE encoding,
// for chunk budgets that match what an OpenAI-compatible embedding model
// actually sees. The encoding name is e.g. "o200k_base" or "cl100k_base".
func NewTiktokenCounter(encoding string) (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}
