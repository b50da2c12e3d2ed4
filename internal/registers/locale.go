package registers

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// UndeterminedLocale keys a description column that carries no locale suffix.
const UndeterminedLocale = "und"

// NormalizeLocale canonicalizes a locale name into the lower-case,
// underscore-separated form used as description keys.
//
// POSIX encodings and modifiers are dropped and the remainder is
// canonicalized as a BCP 47 tag, so "en_US.UTF-8", "en-us" and "EN_US" all
// become "en_us", and deprecated codes are replaced ("iw" becomes "he").
// Names that do not parse as a language tag are only lower-cased.
func NormalizeLocale(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return ""
	}

	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	}
	return localeKey(tag)
}

func localeKey(tag language.Tag) string {
	return strings.ToLower(strings.ReplaceAll(tag.String(), "-", "_"))
}

func parseLocaleKey(key string) (language.Tag, bool) {
	tag, err := language.Parse(strings.ReplaceAll(key, "_", "-"))
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}

// matchLocale picks the key of desc that best serves lang.
// An exact key wins; otherwise a language matcher over the present locales
// decides, and any confident match is accepted.
func matchLocale(desc map[string]string, lang string) (string, bool) {
	want := NormalizeLocale(lang)
	if want == "" {
		return "", false
	}
	if _, ok := desc[want]; ok {
		return want, true
	}

	wantTag, ok := parseLocaleKey(want)
	if !ok {
		return "", false
	}

	keys := make([]string, 0, len(desc))
	for k := range desc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		tags    []language.Tag
		tagKeys []string
	)
	for _, k := range keys {
		if tag, ok := parseLocaleKey(k); ok {
			tags = append(tags, tag)
			tagKeys = append(tagKeys, k)
		}
	}
	if len(tags) == 0 {
		return "", false
	}

	_, idx, conf := language.NewMatcher(tags).Match(wantTag)
	if conf == language.No {
		return "", false
	}
	return tagKeys[idx], true
}
