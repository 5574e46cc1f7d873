// Listing content corpus: a flat, line-indexed list of titles.
// The index is the listing's identity; descriptions, locations and photo
// folders are resolved externally by the same ordinal position.

package listing

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidIndex means a listing index fell outside the corpus bounds.
var ErrInvalidIndex = errors.New("listing index out of corpus bounds")

// Corpus is the ordered, read-only set of listing titles for one run.
// Indices are stable for the lifetime of the process.
type Corpus struct {
	titles []string
}

// LoadCorpus reads the titles file. A missing file is a configuration
// error, not an empty corpus.
func LoadCorpus(path string) (*Corpus, error) {
	lines, err := LoadLines(path)
	if err != nil {
		return nil, fmt.Errorf("could not load titles corpus: %w", err)
	}
	return NewCorpus(lines), nil
}

// NewCorpus wraps an in-memory title list (handy for tests).
func NewCorpus(titles []string) *Corpus {
	return &Corpus{titles: append([]string(nil), titles...)}
}

// LoadLines reads a line-indexed content file, keeping blank interior
// lines so indices stay aligned across titles/descriptions/locations.
func LoadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (c *Corpus) Len() int {
	return len(c.titles)
}

// Title resolves an index to its title, or ErrInvalidIndex.
func (c *Corpus) Title(index int) (string, error) {
	if index < 0 || index >= len(c.titles) {
		return "", fmt.Errorf("%w: %d (corpus size %d)", ErrInvalidIndex, index, len(c.titles))
	}
	return c.titles[index], nil
}

// Titles returns a copy of the full corpus in index order.
func (c *Corpus) Titles() []string {
	return append([]string(nil), c.titles...)
}

var titleNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTitle folds case and strips diacritics so that a ledger line
// written under a different encoding still matches its corpus title.
func NormalizeTitle(s string) string {
	result, _, _ := transform.String(titleNormalizer, s)
	return strings.ToLower(strings.TrimSpace(result))
}
