package promptctx

import (
	"math"

	"golang.org/x/text/language"
)

// Chars-per-token ratios. Logographic scripts pack far more meaning
// per character than Latin text, so their ratio is much coarser. These
// are approximations, not tokenizer output.
const (
	latinCharsPerToken       = 4.0
	logographicCharsPerToken = 1.7
)

var logographicBases = map[string]bool{
	"zh": true,
	"ja": true,
	"ko": true,
}

// charsPerToken picks the estimation ratio for a BCP 47 language tag.
// Unparseable or empty tags fall back to the Latin ratio.
func charsPerToken(lang string) float64 {
	if lang == "" {
		return latinCharsPerToken
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return latinCharsPerToken
	}
	base, _ := tag.Base()
	if logographicBases[base.String()] {
		return logographicCharsPerToken
	}
	return latinCharsPerToken
}

// tokens estimates the token cost of a text section.
func tokens(text string, ratio float64) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len([]rune(text))) / ratio))
}
