package translate

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var supported = map[string]lingua.Language{
	"en": lingua.English,
	"el": lingua.Greek,
	"ru": lingua.Russian,
	"uk": lingua.Ukrainian,
	"he": lingua.Hebrew,
	"tr": lingua.Turkish,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		langs := make([]lingua.Language, 0, len(supported))
		for _, l := range supported {
			langs = append(langs, l)
		}
		detector = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build()
	})
	return detector
}

// DetectLanguage returns the lower-case ISO 639-1 code of the language text is
// written in, restricted to the languages the digest is published in.
func DetectLanguage(text string) (string, bool) {
	lang, ok := languageDetector().DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Supported reports whether lang can be verified by DetectLanguage.
func Supported(lang string) bool {
	_, ok := supported[lang]
	return ok
}
