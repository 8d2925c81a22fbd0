package localize

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLanguage is used when no language is configured or the configured
// one cannot be parsed.
const DefaultLanguage = "en"

const maxFractionDigits = 3

// FormatNumber formats v with the decimal and grouping symbols of lang.
func FormatNumber(lang string, v float64) string {
	return NewPrinter(lang).Sprint(number.Decimal(v, number.MaxFractionDigits(maxFractionDigits)))
}

// NewPrinter returns an x/text message printer for lang.
func NewPrinter(lang string) *message.Printer {
	return message.NewPrinter(Tag(lang))
}

// Tag parses lang into a language tag, falling back to DefaultLanguage.
func Tag(lang string) language.Tag {
	if lang == "" {
		return language.MustParse(DefaultLanguage)
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.MustParse(DefaultLanguage)
	}
	return tag
}
