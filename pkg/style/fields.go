package style

import (
	"math"
	"slices"
	"strconv"
	"strings"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

// Field names one member of Settings. Values match the JSON keys.
type Field string

const (
	FieldFontFamily     Field = "fontFamily"
	FieldInstrument     Field = "instrument"
	FieldColor          Field = "color"
	FieldThickness      Field = "thickness"
	FieldLineHeight     Field = "lineHeight"
	FieldPressure       Field = "pressure"
	FieldSmudgeLevel    Field = "smudgeLevel"
	FieldPaper          Field = "paper"
	FieldWordSpacing    Field = "wordSpacing"
	FieldLetterRotation Field = "letterRotation"
	FieldVerticalShift  Field = "verticalShift"
	FieldHorizontalSkew Field = "horizontalSkew"
	FieldInkBleed       Field = "inkBleed"
)

var fields = []Field{
	FieldFontFamily,
	FieldInstrument,
	FieldColor,
	FieldThickness,
	FieldLineHeight,
	FieldPressure,
	FieldSmudgeLevel,
	FieldPaper,
	FieldWordSpacing,
	FieldLetterRotation,
	FieldVerticalShift,
	FieldHorizontalSkew,
	FieldInkBleed,
}

// goFieldNames maps a Field to the Settings struct member holding it.
var goFieldNames = map[Field]string{
	FieldFontFamily:     "FontFamily",
	FieldInstrument:     "Instrument",
	FieldColor:          "Color",
	FieldThickness:      "Thickness",
	FieldLineHeight:     "LineHeight",
	FieldPressure:       "Pressure",
	FieldSmudgeLevel:    "SmudgeLevel",
	FieldPaper:          "Paper",
	FieldWordSpacing:    "WordSpacing",
	FieldLetterRotation: "LetterRotation",
	FieldVerticalShift:  "VerticalShift",
	FieldHorizontalSkew: "HorizontalSkew",
	FieldInkBleed:       "InkBleed",
}

// Fields returns every field in declaration order.
func Fields() []Field { return slices.Clone(fields) }

// Valid reports whether f names a Settings field.
func (f Field) Valid() bool {
	_, ok := goFieldNames[f]
	return ok
}

// Numeric reports whether f holds a number.
func (f Field) Numeric() bool {
	switch f {
	case FieldFontFamily, FieldInstrument, FieldColor, FieldPaper:
		return false
	}
	return f.Valid()
}

// ParseField resolves a field name. Matching ignores case, dashes and
// underscores, so "line-height", "line_height" and "LineHeight" all resolve
// to FieldLineHeight.
func ParseField(s string) (Field, error) {
	want := foldFieldName(s)
	for _, f := range fields {
		if foldFieldName(string(f)) == want {
			return f, nil
		}
	}
	return "", errs.New(errs.ErrCodeInvalidField, "unknown field %q", s)
}

func foldFieldName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

// Get returns the value of field f in s, typed as the field is declared.
// It returns nil for an unknown field.
func Get(s Settings, f Field) any {
	switch f {
	case FieldFontFamily:
		return s.FontFamily
	case FieldInstrument:
		return s.Instrument
	case FieldColor:
		return s.Color
	case FieldThickness:
		return s.Thickness
	case FieldLineHeight:
		return s.LineHeight
	case FieldPressure:
		return s.Pressure
	case FieldSmudgeLevel:
		return s.SmudgeLevel
	case FieldPaper:
		return s.Paper
	case FieldWordSpacing:
		return s.WordSpacing
	case FieldLetterRotation:
		return s.LetterRotation
	case FieldVerticalShift:
		return s.VerticalShift
	case FieldHorizontalSkew:
		return s.HorizontalSkew
	case FieldInkBleed:
		return s.InkBleed
	}
	return nil
}

// Diff returns the fields whose values differ between a and b, in
// declaration order.
func Diff(a, b Settings) []Field {
	var out []Field
	for _, f := range fields {
		if Get(a, f) != Get(b, f) {
			out = append(out, f)
		}
	}
	return out
}

// ParseValue converts textual input (a CLI flag, a form value) into the
// typed value field f expects. Enum values are matched case-insensitively.
func ParseValue(f Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f {
	case FieldFontFamily:
		for _, ff := range fontFamilies {
			if strings.EqualFold(string(ff), raw) {
				return ff, nil
			}
		}
		return nil, errs.New(errs.ErrCodeInvalidValue, "unknown font family %q", raw)
	case FieldInstrument:
		for _, i := range instruments {
			if strings.EqualFold(string(i), raw) {
				return i, nil
			}
		}
		return nil, errs.New(errs.ErrCodeInvalidValue, "unknown instrument %q", raw)
	case FieldPaper:
		for _, p := range papers {
			if strings.EqualFold(string(p), raw) {
				return p, nil
			}
		}
		return nil, errs.New(errs.ErrCodeInvalidValue, "unknown paper %q", raw)
	case FieldColor:
		return raw, nil
	}

	if !f.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidField, "unknown field %q", f)
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errs.New(errs.ErrCodeInvalidValue, "%s must be a number, got %q", f, raw)
	}
	return n, nil
}

// toFloat converts any Go numeric type to float64 and reports whether v was
// a finite number.
func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int8:
		n = float64(x)
	case int16:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint8:
		n = float64(x)
	case uint16:
		n = float64(x)
	case uint32:
		n = float64(x)
	case uint64:
		n = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
