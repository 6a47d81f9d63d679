package detection

import (
	"github.com/go-enry/go-enry/v2"
)

// Delimiters keyed by the file kind go-enry reports for a file name.
const (
	delimiterTab   = '\t'
	delimiterComma = ','
)

// DelimiterFor picks the field delimiter for path from its file kind.
// Submissions are TSV; CSV exports are accepted for convenience.
// Anything go-enry does not recognize is read as TSV.
func DelimiterFor(path string) rune {
	lang, _ := enry.GetLanguageByExtension(path)
	switch lang {
	case "CSV":
		return delimiterComma
	default:
		return delimiterTab
	}
}
