package guard

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// Tokenizer is a WordPiece-style encoder over a plain vocab.txt file, one
// token per line. Special tokens are resolved from the vocab; sensible
// fallback ids keep a malformed vocab from panicking at inference time.
type Tokenizer struct {
	vocab map[string]int64

	clsID int64
	sepID int64
	padID int64
	unkID int64
}

const maxWordChars = 100

// LoadTokenizer reads vocab.txt and resolves the special token ids.
func LoadTokenizer(vocabPath string) (*Tokenizer, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	var idx int64
	for scanner.Scan() {
		tok := strings.TrimRight(scanner.Text(), "\r\n")
		vocab[tok] = idx
		idx++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocab at %s is empty", vocabPath)
	}

	t := &Tokenizer{vocab: vocab}
	t.clsID = t.lookupSpecial("[CLS]", 101)
	t.sepID = t.lookupSpecial("[SEP]", 102)
	t.padID = t.lookupSpecial("[PAD]", 0)
	t.unkID = t.lookupSpecial("[UNK]", 100)
	return t, nil
}

func (t *Tokenizer) lookupSpecial(tok string, fallback int64) int64 {
	if id, ok := t.vocab[tok]; ok {
		return id
	}
	return fallback
}

// Encode produces input ids and an attention mask of exactly seqLen entries.
func (t *Tokenizer) Encode(text string, seqLen int) ([]int64, []int64) {
	ids := make([]int64, 0, seqLen)
	ids = append(ids, t.clsID)

	for _, word := range splitWords(strings.ToLower(text)) {
		for _, id := range t.wordPiece(word) {
			if len(ids) >= seqLen-1 {
				break
			}
			ids = append(ids, id)
		}
		if len(ids) >= seqLen-1 {
			break
		}
	}
	ids = append(ids, t.sepID)

	mask := make([]int64, seqLen)
	for i := range ids {
		mask[i] = 1
	}
	for len(ids) < seqLen {
		ids = append(ids, t.padID)
	}
	return ids, mask
}

// wordPiece greedily matches the longest known prefix, then continues with
// "##"-prefixed continuations. Unknown remainders collapse to [UNK].
func (t *Tokenizer) wordPiece(word string) []int64 {
	if len(word) > maxWordChars {
		return []int64{t.unkID}
	}
	var out []int64
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := len(runes)
		var matched int64 = -1
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = "##" + piece
			}
			if id, ok := t.vocab[piece]; ok {
				matched = id
				break
			}
			end--
		}
		if matched < 0 {
			return []int64{t.unkID}
		}
		out = append(out, matched)
		start = end
	}
	return out
}

// splitWords breaks text into letter/digit runs and single punctuation
// marks, the usual pre-tokenization for WordPiece vocabularies.
func splitWords(text string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			words = append(words, string(r))
		}
	}
	flush()
	return words
}
