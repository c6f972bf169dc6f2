// Package corpus loads a tokenized corpus, strips the word boundaries for
// learning and keeps them aside as the gold standard.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is returned when the corpus file does not exist.
var ErrNotFound = errors.New("corpus file not found")

// Tokenizer splits a raw line into gold tokens.
type Tokenizer interface {
	Tokens(line string) ([]string, error)
}

// Whitespace splits sentence-final "." and "?" off as tokens of their own
// and then splits on whitespace.
type Whitespace struct{}

func (Whitespace) Tokens(line string) ([]string, error) {
	line = strings.ReplaceAll(line, ".", " .")
	line = strings.ReplaceAll(line, "?", " ?")
	return strings.Fields(line), nil
}

// Corpus is the unsegmented text plus its gold segmentation.
type Corpus struct {
	// Lines holds each utterance with its tokens concatenated.
	Lines []string
	// Breaks holds, per line, the cumulative character offset at the end
	// of every gold token. The last offset equals the line length.
	Breaks [][]int
	// Gold counts the gold tokens.
	Gold map[string]int
	// RunningWords is the number of gold tokens in the corpus.
	RunningWords int
}

// Options control how a corpus is read.
type Options struct {
	// Tokenizer defaults to Whitespace.
	Tokenizer Tokenizer
	// MaxLines stops reading after this many kept lines. 0 reads everything.
	MaxLines int
}

// Load reads the corpus at path.
func Load(path string, opts Options) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	return Read(f, opts)
}

// Read reads one utterance per line. Lines with fewer than two tokens are
// dropped and contribute nothing to the gold standard.
func Read(r io.Reader, opts Options) (*Corpus, error) {
	tok := opts.Tokenizer
	if tok == nil {
		tok = Whitespace{}
	}
	c := &Corpus{Gold: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	for scanner.Scan() {
		if opts.MaxLines > 0 && len(c.Lines) >= opts.MaxLines {
			break
		}
		tokens, err := tok.Tokens(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("tokenize line %d: %w", len(c.Lines)+1, err)
		}
		if len(tokens) <= 1 {
			continue
		}
		c.add(tokens)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return c, nil
}

func (c *Corpus) add(tokens []string) {
	var line strings.Builder
	breaks := make([]int, 0, len(tokens))
	offset := 0
	for _, w := range tokens {
		c.Gold[w]++
		c.RunningWords++
		line.WriteString(w)
		offset += utf8.RuneCountInString(w)
		breaks = append(breaks, offset)
	}
	c.Lines = append(c.Lines, line.String())
	c.Breaks = append(c.Breaks, breaks)
}

// Len returns the number of kept lines.
func (c *Corpus) Len() int { return len(c.Lines) }
