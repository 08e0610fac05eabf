// Package locale resolves user locale hints against the set of supported
// markets and serves the localized message catalog.
package locale

import "golang.org/x/text/language"

// DefaultLocale is used whenever a hint cannot be resolved.
const DefaultLocale = "en"

// order fixes the matcher priority; the first entry is the fallback.
var order = []string{"en", "tr", "id", "ar", "vi", "pt", "ru"}

var matcher language.Matcher

func init() {
	tags := make([]language.Tag, 0, len(order))
	for _, code := range order {
		tags = append(tags, language.MustParse(code))
	}
	matcher = language.NewMatcher(tags)
}

// Resolve maps an arbitrary locale hint (e.g. a Telegram language_code like
// "pt-BR") to a supported locale code, falling back to DefaultLocale.
func Resolve(hint string) string {
	if hint == "" {
		return DefaultLocale
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLocale
	}
	return order[idx]
}

// Supported reports whether code is one of the configured market locales.
func Supported(code string) bool {
	_, ok := catalog[code]
	return ok
}
