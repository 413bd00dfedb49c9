package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Encoding converts text to a token stream and back. Implementations must be
// lossless: Decode(Encode(s)) == s for any input.
type Encoding interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// CL100KBase returns the reference tokenizer used for token-bounded chunking,
// the same encoding the embedding endpoint counts against.
func CL100KBase() (Encoding, error) {
	tk, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return tiktokenEncoding{tk: tk}, nil
}

type tiktokenEncoding struct {
	tk *tiktoken.Tiktoken
}

func (e tiktokenEncoding) Encode(text string) []int {
	return e.tk.Encode(text, nil, nil)
}

func (e tiktokenEncoding) Decode(tokens []int) string {
	return e.tk.Decode(tokens)
}
