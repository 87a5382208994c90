// internal/words/words.go
//
// Fallback word list management.
//
// Responsibilities:
//   - Load the fallback list from WORDS_FILE or the embedded default.
//   - Supply deterministic (seeded) and fixed fallback words.
//
// Initialization runs once (sync.Once). Words are lowercase, letters only.
package words

import (
	"bufio"
	"errors"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/robalobadob/wordheat/assets"
)

// DefaultWord is returned when no better fallback is available.
const DefaultWord = "apple"

var (
	initOnce   sync.Once
	fallback   []string
	initialErr error
)

// Init loads the fallback list exactly once.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_FILE"); path != "" {
			list, err := readWordFile(path)
			if err != nil {
				initialErr = err
				return
			}
			fallback = list
		} else {
			list, err := assets.FallbackWords()
			if err != nil {
				initialErr = err
				return
			}
			fallback = clean(list)
		}
		if len(fallback) == 0 {
			initialErr = errors.New("words: fallback list is empty")
		}
	})
	return initialErr
}

// Fallback returns the loaded list, initializing it on first use.
func Fallback() []string {
	_ = Init()
	return fallback
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w, ok := cleanWord(sc.Text()); ok {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func clean(lines []string) []string {
	var out []string
	for _, line := range lines {
		if w, ok := cleanWord(line); ok {
			out = append(out, w)
		}
	}
	return out
}

// cleanWord lowercases a line and keeps it only if it is a single word of letters.
func cleanWord(line string) (string, bool) {
	w := strings.TrimSpace(strings.ToLower(line))
	if len(w) < 2 || strings.HasPrefix(w, "#") {
		return "", false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return "", false
		}
	}
	return w, true
}
