package bible

// Translation is a named edition of the Bible text carried on bookmarks.
type Translation string

const (
	TranslationKJV  Translation = "KJV"
	TranslationNKJV Translation = "NKJV"
	TranslationMEV  Translation = "MEV"
)

// Translations lists the versions a bookmark may carry.
var Translations = []Translation{TranslationKJV, TranslationNKJV, TranslationMEV}

// DefaultAPICode is used for versions the text service has no edition for.
const DefaultAPICode = "kjv"

// The text service only carries public-domain editions, so every version
// currently resolves to its KJV text.
var apiCodes = map[Translation]string{
	TranslationKJV:  "kjv",
	TranslationNKJV: "kjv",
	TranslationMEV:  "kjv",
}

// IsSupportedTranslation reports whether code is a known version.
func IsSupportedTranslation(code string) bool {
	_, ok := apiCodes[Translation(code)]
	return ok
}

// APICode maps a version to the translation code accepted by the text
// service. Unknown versions fall back to DefaultAPICode.
func APICode(t Translation) string {
	if code, ok := apiCodes[t]; ok {
		return code
	}
	return DefaultAPICode
}
