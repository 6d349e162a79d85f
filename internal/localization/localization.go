// Package localization loads the bot's user-facing strings from per-language
// JSON files and resolves keys with an English fallback. Guild settings pick
// the language; the discord layer never hardcodes reply text.
package localization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fallbackLang is consulted before giving up on a key.
const fallbackLang = "en"

// Localizer holds one translation table per language code.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer reads every *.json file in dir; the file name minus the
// extension becomes the language code (en.json -> "en"). Each file is a flat
// string-to-string object.
func NewLocalizer(dir string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", file.Name(), err)
		}

		var table map[string]string
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", file.Name(), err)
		}

		l.translations[strings.TrimSuffix(file.Name(), ".json")] = table
	}

	if len(l.translations) == 0 {
		return nil, fmt.Errorf("no localization files found in %s", dir)
	}

	return l, nil
}

// GetString resolves a key for the given language. Missing entries fall back
// to English, then to the key itself, so a hole in a translation file never
// blanks a reply.
func (l *Localizer) GetString(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if value, ok := l.lookup(lang, key); ok {
		return value
	}
	if lang != fallbackLang {
		if value, ok := l.lookup(fallbackLang, key); ok {
			return value
		}
	}
	return key
}

func (l *Localizer) lookup(lang, key string) (string, bool) {
	table, ok := l.translations[lang]
	if !ok {
		return "", false
	}
	value, ok := table[key]
	return value, ok
}
