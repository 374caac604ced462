package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used for models tiktoken does not know, which covers
// most models served by local inference servers.
const DefaultEncoding = "cl100k_base"

// allSpecial lets special-token text such as "<|endoftext|>" be counted
// instead of rejected.
var allSpecial = []string{"all"}

// TiktokenTokenizer counts tokens with a tiktoken BPE encoding.
type TiktokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// TiktokenFactory resolves the encoding registered for model and falls back
// to DefaultEncoding when the model is unknown.
func TiktokenFactory(model string) (Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", DefaultEncoding, err)
		}
	}
	return &TiktokenTokenizer{encoding: enc}, nil
}

// Count implements Tokenizer.
func (t *TiktokenTokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, allSpecial, nil))
}

// CharTokenizer approximates one token per four bytes, rounding up.
type CharTokenizer struct{}

// Count implements Tokenizer.
func (CharTokenizer) Count(text string) int {
	return (len(text) + 3) / 4
}
