package corpus

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome produces gold tokens for text written without spaces, such as
// Japanese, using the IPA dictionary.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome creates a kagome backed tokenizer.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Kagome{t: t}, nil
}

// Tokens returns the surface forms of the line, whitespace dropped.
func (k *Kagome) Tokens(line string) ([]string, error) {
	var out []string
	for _, token := range k.t.Tokenize(line) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		out = append(out, strings.Join(strings.Fields(token.Surface), ""))
	}
	return out, nil
}
