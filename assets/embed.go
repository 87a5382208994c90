// assets/embed.go
//
// Files compiled into the server binary.
//   - migrations/*.sql: schema applied by golang-migrate at startup.
//   - words.txt: fallback secret words used when the oracle is down.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed migrations/*.sql words.txt
var FS embed.FS

// MigrationsDir is the migrations path inside FS.
const MigrationsDir = "migrations"

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// FallbackWords returns the embedded fallback word list.
func FallbackWords() ([]string, error) {
	return readLines("words.txt")
}
