// internal/words/words.go
//
// Word bank for the Unscramble game.
//
// Responsibilities:
//   - Hold an immutable catalog of playable words, each with a scramble
//     computed once when the catalog is built.
//   - Pick a random entry whose answer is not in an exclusion set.
//   - Shuffle a word into a uniformly random permutation of its letters.
//
// Word lists:
//   - The default catalog comes from the embedded assets/vocabulary.txt.
//   - WORDS_FILE (passed to Init) replaces it with one word per line.
//
// Constraints:
//   • Words are lowercase a–z; anything else is dropped while loading.
//   • Duplicates keep their first occurrence.
//   • The default catalog is built once (sync.Once).

package words

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/scramble/assets"
)

var (
	// ErrExhaustedCatalog is returned when every catalog entry is excluded.
	ErrExhaustedCatalog = errors.New("words: catalog exhausted")

	// ErrEmptyCatalog is returned when a catalog would contain no words.
	ErrEmptyCatalog = errors.New("words: catalog is empty")
)

// Entry is one playable word: the scrambled form shown to the player and the
// canonical lowercase answer.
type Entry struct {
	Display string
	Answer  string
}

// Source is the randomness a Catalog draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// globalSource uses the concurrency-safe top-level math/rand/v2 functions.
type globalSource struct{}

func (globalSource) IntN(n int) int                     { return rand.IntN(n) }
func (globalSource) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Catalog is a fixed, read-only set of entries.
type Catalog struct {
	entries []Entry

	mu  sync.Mutex // guards src
	src Source
}

// NewCatalog normalizes list and scrambles every word once.
// A nil src uses the process-wide random generator.
func NewCatalog(list []string, src Source) (*Catalog, error) {
	if src == nil {
		src = globalSource{}
	}
	c := &Catalog{src: src}
	seen := make(map[string]struct{}, len(list))
	for _, raw := range list {
		w := strings.TrimSpace(strings.ToLower(raw))
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		c.entries = append(c.entries, Entry{Display: Shuffle(w, src), Answer: w})
	}
	if len(c.entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the catalog in load order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Answers returns the canonical answers in load order.
func (c *Catalog) Answers() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Answer
	}
	return out
}

// PickRandom returns a uniformly random entry whose answer is not in exclude.
func (c *Catalog) PickRandom(exclude map[string]struct{}) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Pick(c.entries, exclude, c.src)
}

// Pick chooses uniformly among the entries whose answer is not in exclude.
// It returns ErrExhaustedCatalog when nothing is left.
func Pick(entries []Entry, exclude map[string]struct{}, src Source) (Entry, error) {
	avail := make([]int, 0, len(entries))
	for i, e := range entries {
		if _, skip := exclude[e.Answer]; !skip {
			avail = append(avail, i)
		}
	}
	if len(avail) == 0 {
		return Entry{}, fmt.Errorf("%w: all %d entries excluded", ErrExhaustedCatalog, len(entries))
	}
	return entries[avail[src.IntN(len(avail))]], nil
}

// Shuffle returns a random permutation of the letters of word (Fisher–Yates).
func Shuffle(word string, src Source) string {
	r := []rune(word)
	src.Shuffle(len(r), func(i, j int) { r[i], r[j] = r[j], r[i] })
	return string(r)
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// --- process-wide default catalog ---

var (
	initOnce   sync.Once
	defaultCat *Catalog
	initialErr error
)

// Init builds the default catalog exactly once.
// An empty path uses the embedded vocabulary.
func Init(path string) error {
	initOnce.Do(func() {
		var list []string
		var err error
		if path != "" {
			list, err = readWordFile(path)
		} else {
			list, err = assets.Vocabulary()
		}
		if err != nil {
			initialErr = fmt.Errorf("words: load vocabulary: %w", err)
			return
		}
		defaultCat, initialErr = NewCatalog(list, nil)
	})
	return initialErr
}

// Default returns the process-wide catalog, loading the embedded vocabulary
// if Init has not run yet.
func Default() (*Catalog, error) {
	if err := Init(""); err != nil {
		return nil, err
	}
	return defaultCat, nil
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}
