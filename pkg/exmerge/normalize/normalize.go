// Package normalize reduces raw cell values to comparable scalars.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	isoDate     = "2006-01-02"
	isoDateTime = "2006-01-02T15:04:05"
)

// Value converts a raw cell to a scalar. It never fails: unknown
// variants fall back to their string form.
func Value(raw models.RawValue) models.Scalar {
	switch raw.Kind {
	case models.RawScalar:
		return raw.Scalar
	case models.RawRichText:
		return models.String(strings.Join(raw.Runs, ""))
	case models.RawFormula:
		if raw.Result == nil {
			return models.Null()
		}
		return *raw.Result
	case models.RawDate:
		return models.String(FormatDate(raw.Time))
	default:
		if raw.Other == nil {
			return models.Null()
		}
		if b, ok := raw.Other.(bool); ok {
			return models.String(strings.ToUpper(strconv.FormatBool(b)))
		}
		return models.String(fmt.Sprint(raw.Other))
	}
}

// FromAny lifts a Go value into the raw variant.
func FromAny(v interface{}) models.RawValue {
	switch x := v.(type) {
	case nil:
		return models.RawValue{Kind: models.RawScalar}
	case models.Scalar:
		return models.RawValue{Kind: models.RawScalar, Scalar: x}
	case models.RawValue:
		return x
	case string:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.String(x)}
	case float64:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(x)}
	case float32:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(float64(x))}
	case int:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(float64(x))}
	case int64:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(float64(x))}
	case int32:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(float64(x))}
	case time.Time:
		return models.RawValue{Kind: models.RawDate, Time: x}
	default:
		return models.RawValue{Kind: models.RawOther, Other: v}
	}
}

// Scalar is shorthand for Value(FromAny(v)).
func Scalar(v interface{}) models.Scalar {
	return Value(FromAny(v))
}

// FormatDate renders a date as ISO-8601, dropping the clock for midnight values.
func FormatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(isoDate)
	}
	return t.Format(isoDateTime)
}

// ParseDate reverses FormatDate.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range []string{isoDate, isoDateTime} {
		if len(s) != len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Key returns the comparison string of a scalar. Strings are trimmed and
// numbers are printed canonically, so 1 and 1.0 compare equal.
func Key(s models.Scalar) string {
	switch s.Kind {
	case models.KindString:
		return strings.TrimSpace(s.Str)
	case models.KindNumber:
		if math.IsNaN(s.Num) || math.IsInf(s.Num, 0) {
			return strconv.FormatFloat(s.Num, 'g', -1, 64)
		}
		return decimal.NewFromFloat(s.Num).String()
	default:
		return ""
	}
}

// IsEmpty reports whether a scalar has an empty comparison string.
func IsEmpty(s models.Scalar) bool {
	return Key(s) == ""
}

// Equal compares two scalars by their comparison strings.
func Equal(a, b models.Scalar) bool {
	return Key(a) == Key(b)
}

// HeaderKey folds header text to letters and digits only. Full-width
// forms are unified by NFKC, so CJK headers keep their ideographs.
func HeaderKey(s string) string {
	s = cases.Fold().String(norm.NFKC.String(s))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsNumeric reports whether a comparison string parses as a number.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	return err == nil
}
