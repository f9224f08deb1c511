package translate

import "strings"

// languageNames maps canonical locale codes to the English language name
// used when prompting translation backends. Variants fall back to the base
// language in LanguageName.
var languageNames = map[string]string{
	"ar":    "Arabic",
	"cs":    "Czech",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"es":    "Spanish",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hu":    "Hungarian",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"pt-BR": "Brazilian Portuguese",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sv":    "Swedish",
	"th":    "Thai",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"vi":    "Vietnamese",
	"zh":    "Chinese",
	"zh-CN": "Simplified Chinese",
	"zh-TW": "Traditional Chinese",
}

// LanguageName returns the English name for a locale code, falling back to
// the base language for unknown variants and to the raw code otherwise.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	if base, _, found := strings.Cut(code, "-"); found {
		if name, ok := languageNames[base]; ok {
			return name
		}
	}
	return code
}
