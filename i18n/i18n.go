package i18n

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Bootstrap translation layer for user-facing messages (toasts, friendly
// errors). English ships built in; additional catalogs are JSON files named
// by language tag, e.g. locales/bn.json.

var builtinEN = map[string]string{
	"saved":                "Saved",
	"deleted":              "Deleted",
	"duplicate_submission": "A submission for this line and date already exists",
	"balance_exceeded":     "Total input would exceed the order quantity",
	"issue_exceeds_stock":  "Issue quantity exceeds the current balance",
	"line_inactive":        "This line is not active",
	"line_not_assigned":    "You are not assigned to this line",
	"order_closed":         "This work order is closed",
}

var (
	mu        sync.RWMutex
	catalogs  = map[string]map[string]string{"en": builtinEN}
	supported = []language.Tag{language.English}
	matcher   = language.NewMatcher(supported)
)

// LoadCatalogs reads every *.json file in dir as a message catalog. Missing
// dir is not an error; the built-in English catalog always remains.
func LoadCatalogs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read locale dir %s: %w", dir, err)
	}

	mu.Lock()
	defer mu.Unlock()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		langCode := strings.TrimSuffix(entry.Name(), ".json")
		tag, err := language.Parse(langCode)
		if err != nil {
			return fmt.Errorf("locale file %s has an invalid language tag: %w", entry.Name(), err)
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return fmt.Errorf("failed to parse locale file %s: %w", entry.Name(), err)
		}

		catalogs[langCode] = messages
		if langCode != "en" {
			supported = append(supported, tag)
		}
	}
	matcher = language.NewMatcher(supported)
	return nil
}

// Pick resolves the best supported language for an Accept-Language header.
func Pick(acceptLanguage string) string {
	mu.RLock()
	defer mu.RUnlock()
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	tag, _, _ := matcher.Match(tags...)
	base, _ := tag.Base()
	if _, ok := catalogs[base.String()]; ok {
		return base.String()
	}
	return "en"
}

// PickFromRequest is Pick over the request header.
func PickFromRequest(r *http.Request) string {
	return Pick(r.Header.Get("Accept-Language"))
}

// T translates key into lang, falling back to English, then to the key
// itself so untranslated messages stay visible rather than vanishing.
func T(lang, key string) string {
	mu.RLock()
	defer mu.RUnlock()
	if cat, ok := catalogs[lang]; ok {
		if msg, ok := cat[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs["en"][key]; ok {
		return msg
	}
	return key
}
