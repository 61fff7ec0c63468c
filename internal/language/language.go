package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code    string   // catalog language code
	display string   // human-readable name
	aliases []string // ISO codes and full word forms
}

var languages = []entry{
	{"en-us", "American English", []string{"en", "eng", "english"}},
	{"en-in", "Indian English", nil},
	{"cn", "Chinese", []string{"zh", "zho", "chi", "chinese"}},
	{"ru", "Russian", []string{"rus", "russian"}},
	{"fr", "French", []string{"fra", "fre", "french"}},
	{"de", "German", []string{"deu", "ger", "german"}},
	{"es", "Spanish", []string{"spa", "spanish"}},
	{"pt", "Portuguese", []string{"por", "portuguese"}},
	{"tr", "Turkish", []string{"tur", "turkish"}},
	{"vn", "Vietnamese", []string{"vi", "vie", "vietnamese"}},
	{"it", "Italian", []string{"ita", "italian"}},
	{"nl", "Dutch", []string{"nld", "dut", "dutch"}},
	{"ca", "Catalan", []string{"cat", "catalan"}},
	{"ar", "Arabic", []string{"ara", "arabic"}},
	{"fa", "Farsi", []string{"fas", "per", "persian", "farsi"}},
	{"ph", "Filipino", []string{"fil", "tl", "filipino", "tagalog"}},
	{"uk", "Ukrainian", []string{"ukr", "ukrainian"}},
	{"kz", "Kazakh", []string{"kk", "kaz", "kazakh"}},
	{"sv", "Swedish", []string{"swe", "swedish"}},
	{"ja", "Japanese", []string{"jpn", "japanese"}},
	{"eo", "Esperanto", []string{"epo", "esperanto"}},
	{"hi", "Hindi", []string{"hin", "hindi"}},
	{"cs", "Czech", []string{"ces", "cze", "czech"}},
	{"pl", "Polish", []string{"pol", "polish"}},
	{"uz", "Uzbek", []string{"uzb", "uzbek"}},
	{"ko", "Korean", []string{"kor", "korean"}},
	{"br", "Breton", []string{"bre", "breton"}},
	{"gu", "Gujarati", []string{"guj", "gujarati"}},
	{"tg", "Tajik", []string{"tgk", "tajik"}},
	{"te", "Telugu", []string{"tel", "telugu"}},
}

// Index maps built at init time.
var (
	byCode  map[string]*entry
	byAlias map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byAlias = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode[e.code] = e
		for _, a := range e.aliases {
			byAlias[a] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode[code]; ok {
		return e
	}
	if e, ok := byAlias[code]; ok {
		return e
	}
	return nil
}

// Normalize converts any recognized language code or word to the catalog code
// used to key models. Unrecognized input passes through lowercased so codes
// newer than this table still match the live catalog.
func Normalize(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	if e := lookup(input); e != nil {
		return e.code
	}
	return input
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or a titlecased form of the code for
// unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return cases.Title(xlang.Und).String(strings.TrimSpace(code))
}
