package catalog

import (
	"golang.org/x/text/language"
)

const (
	LocaleEnglish = "en"
	LocaleHebrew  = "he"
)

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Hebrew,
})

// catalog translation language ids
var catalogLanguageIDs = map[string]int{
	"de": 1,
	"en": 2,
}

const englishLanguageID = 2

// NormalizeLocale maps any BCP 47 tag onto a supported display locale.
func NormalizeLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return LocaleEnglish
	}
	matched, _, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return LocaleEnglish
	}
	base, _ := matched.Base()
	return base.String()
}

func catalogLanguageID(locale string) (int, bool) {
	tag, err := language.Parse(locale)
	if err != nil {
		return 0, false
	}
	base, _ := tag.Base()
	id, ok := catalogLanguageIDs[base.String()]
	return id, ok
}
