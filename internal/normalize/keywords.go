package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// legalKeywords is the vocabulary used to recognize decision text. Portal
// pages mix navigation chrome with the judgment body; a block that mentions
// none of these terms is almost never the decision itself.
var legalKeywords = []string{
	"karar", "hüküm", "gerekçe", "mahkeme", "dava", "esas", "sonuç",
	"davacı", "davalı", "başvuran", "müdahil", "temyiz", "istinaf",
	"dosya", "duruşma", "delil", "tanık", "bilirkişi", "keşif",
	"hukuki", "kanun", "madde", "fıkra", "bent", "yönetmelik",
	"tebliğ", "icra", "infaz", "takip", "haciz",
}

var trLower = cases.Lower(language.Turkish)

// LowerTurkish lowercases with Turkish casing rules so that dotted and
// dotless i fold correctly ("KARAR" -> "karar", "İÇERİK" -> "içerik").
func LowerTurkish(s string) string {
	return trLower.String(s)
}

// ContainsLegalKeyword reports whether s mentions at least one term from the
// legal vocabulary. Matching is case-insensitive under Turkish rules.
func ContainsLegalKeyword(s string) bool {
	low := LowerTurkish(s)
	for _, kw := range legalKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}
