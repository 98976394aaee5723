package llm

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens for logging, metrics, and audit records.
type TokenCounter interface {
	// Count returns the token count for the text. Counting never fails;
	// implementations fall back to an estimate when exact counting is
	// not possible.
	Count(text string) int
	// Name identifies the counting scheme.
	Name() string
}

// modelEncodings maps model name prefixes to tiktoken encodings. Longer
// prefixes come first so gpt-4o resolves before gpt-4.
var modelEncodings = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o", "o200k_base"},
	{"gpt-4", "cl100k_base"},
	{"gpt-3.5-turbo", "cl100k_base"},
}

// TiktokenCounter counts tokens with a tiktoken encoding, lazily
// initialized on first use. When the encoding cannot be loaded (offline
// environments), it degrades to EstimateCounter rather than failing.
type TiktokenCounter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	fallback EstimateCounter
}

// NewTiktokenCounter creates a counter for the given model, defaulting to
// the cl100k_base encoding for unknown models.
func NewTiktokenCounter(model string) *TiktokenCounter {
	encoding := "cl100k_base"
	for _, m := range modelEncodings {
		if strings.HasPrefix(model, m.prefix) {
			encoding = m.encoding
			break
		}
	}
	return &TiktokenCounter{encoding: encoding}
}

func (t *TiktokenCounter) init() {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			return
		}
		t.enc = enc
	})
}

// Count returns the exact token count when the encoding is available,
// otherwise an estimate.
func (t *TiktokenCounter) Count(text string) int {
	t.init()
	if t.enc == nil {
		return t.fallback.Count(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Name identifies the counting scheme.
func (t *TiktokenCounter) Name() string {
	return fmt.Sprintf("tiktoken[%s]", t.encoding)
}

// EstimateCounter approximates token counts without an encoding: CJK
// characters count as one token each, everything else as one token per
// four characters.
type EstimateCounter struct{}

// Count returns the estimated token count.
func (EstimateCounter) Count(text string) int {
	cjk := 0
	other := 0
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			cjk++
		} else {
			other++
		}
	}
	return cjk + (other+3)/4
}

// Name identifies the counting scheme.
func (EstimateCounter) Name() string {
	return "estimate"
}
