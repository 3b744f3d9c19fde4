package bank

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"VereinsKasse/api/constants"
)

// separatorPattern classifies the decimal/thousands separator layout of
// an amount token. Bank exports mix German ("1.234,56"), plain comma
// ("45,50") and English ("1,234.56") conventions; classifying first and
// normalizing per class avoids the order-dependent replacement bugs of
// chained string rewrites.
type separatorPattern int

const (
	patternPlain separatorPattern = iota // no comma, dot (if any) is the decimal point
	patternGermanGrouped                 // dot-grouped thousands, comma decimals: 1.234,56
	patternCommaDecimal                  // comma decimals, no dot: 45,50
	patternCommaThousands                // comma follows a dot and only groups digits: 12.34,5
	patternCommaAmbiguous                // any remaining comma is the decimal separator
)

var (
	germanGroupedRe   = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d{1,2})?$`)
	currencySymbolsRe = regexp.MustCompile(`[€$£]`)
)

func classifyAmount(v string) separatorPattern {
	hasComma := strings.Contains(v, ",")
	hasDot := strings.Contains(v, ".")
	switch {
	case germanGroupedRe.MatchString(v):
		return patternGermanGrouped
	case hasComma && !hasDot:
		return patternCommaDecimal
	case hasComma && hasDot && strings.Index(v, ",") > strings.Index(v, "."):
		return patternCommaThousands
	case hasComma:
		return patternCommaAmbiguous
	default:
		return patternPlain
	}
}

// ParseAmount turns a locale-ambiguous amount cell into an exact
// decimal. Currency symbols and (non-breaking) spaces are stripped
// before classification. The boolean is false when the cell holds no
// usable number.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	v := strings.TrimSpace(raw)
	v = strings.ReplaceAll(v, constants.NBSP, "")
	v = strings.ReplaceAll(v, " ", "")
	v = currencySymbolsRe.ReplaceAllString(v, "")
	if v == "" {
		return decimal.Decimal{}, false
	}

	switch classifyAmount(v) {
	case patternGermanGrouped:
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	case patternCommaDecimal:
		v = strings.ReplaceAll(v, ",", ".")
	case patternCommaThousands:
		v = strings.ReplaceAll(v, ",", "")
	case patternCommaAmbiguous:
		v = strings.ReplaceAll(v, ".", "")
		v = strings.ReplaceAll(v, ",", ".")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
