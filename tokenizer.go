package tagxml

import (
	"iter"
	"strings"
)

// lineControl is removed from a document before it is split into tokens.
var lineControl = strings.NewReplacer("\n", "", "\t", "", "\r", "")

// Tokenizer produces the token stream of a document: the text with line
// control characters removed, split on '<' and '>', with empty fragments
// dropped. Tag tokens keep their inner text (`name type="int"`, `/name`),
// value tokens are returned verbatim.
type Tokenizer struct {
	src string
	pos int
}

// NewTokenizer prepares doc for tokenization.
func NewTokenizer(doc []byte) *Tokenizer {
	return &Tokenizer{src: lineControl.Replace(string(doc))}
}

// Next returns the next token, or false once the stream is exhausted.
func (t *Tokenizer) Next() (string, bool) {
	for t.pos < len(t.src) && isDelimiter(t.src[t.pos]) {
		t.pos++
	}
	if t.pos >= len(t.src) {
		return "", false
	}
	start := t.pos
	for t.pos < len(t.src) && !isDelimiter(t.src[t.pos]) {
		t.pos++
	}
	return t.src[start:t.pos], true
}

// Reset rewinds the tokenizer to the start of the document.
func (t *Tokenizer) Reset() {
	t.pos = 0
}

// All iterates over every token from the start of the document. It does not
// move the cursor used by Next, so it can be ranged over any number of times.
func (t *Tokenizer) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		cursor := Tokenizer{src: t.src}
		for {
			tok, ok := cursor.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Tokenize returns the whole token stream of doc.
func Tokenize(doc []byte) []string {
	var tokens []string
	for tok := range NewTokenizer(doc).All() {
		tokens = append(tokens, tok)
	}
	return tokens
}

func isDelimiter(b byte) bool {
	return b == '<' || b == '>'
}
