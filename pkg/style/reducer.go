package style

import (
	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

// Apply returns a copy of s with field f replaced by value.
//
// When f is FieldInstrument and the new instrument is pen, pencil or marker,
// the instrument's preset then overrides FontFamily, Color and Thickness.
// InstrumentCustom applies no preset and leaves those fields as they were.
//
// value must have the field's declared type: FontFamily, Instrument and Paper
// accept their named type or a plain string, Color accepts a string, and every
// numeric field accepts any Go number. A value of the wrong type or outside
// the field's domain yields an error carrying errs.ErrCodeInvalidValue (or
// errs.ErrCodeInvalidField for an unknown field), and s is returned unchanged.
// Apply never modifies s.
func Apply(s Settings, f Field, value any) (Settings, error) {
	next := s
	if err := assign(&next, f, value); err != nil {
		return s, err
	}
	if err := validateField(next, f); err != nil {
		return s, err
	}
	if f == FieldInstrument {
		next = applyPreset(next)
	}
	return next, nil
}

func applyPreset(s Settings) Settings {
	if p, ok := PresetFor(s.Instrument); ok {
		s.FontFamily = p.FontFamily
		s.Color = p.Color
		s.Thickness = p.Thickness
	}
	return s
}

func assign(s *Settings, f Field, value any) error {
	switch f {
	case FieldFontFamily:
		v, ok := asString[FontFamily](value)
		if !ok {
			return typeError(f, "a font family name", value)
		}
		s.FontFamily = v
	case FieldInstrument:
		v, ok := asString[Instrument](value)
		if !ok {
			return typeError(f, "an instrument name", value)
		}
		s.Instrument = v
	case FieldPaper:
		v, ok := asString[Paper](value)
		if !ok {
			return typeError(f, "a paper name", value)
		}
		s.Paper = v
	case FieldColor:
		v, ok := value.(string)
		if !ok {
			return typeError(f, "a color string", value)
		}
		s.Color = v
	default:
		if !f.Valid() {
			return errs.New(errs.ErrCodeInvalidField, "unknown field %q", f)
		}
		n, ok := toFloat(value)
		if !ok {
			return typeError(f, "a finite number", value)
		}
		setNumber(s, f, n)
	}
	return nil
}

func setNumber(s *Settings, f Field, n float64) {
	switch f {
	case FieldThickness:
		s.Thickness = n
	case FieldLineHeight:
		s.LineHeight = n
	case FieldPressure:
		s.Pressure = n
	case FieldSmudgeLevel:
		s.SmudgeLevel = n
	case FieldWordSpacing:
		s.WordSpacing = n
	case FieldLetterRotation:
		s.LetterRotation = n
	case FieldVerticalShift:
		s.VerticalShift = n
	case FieldHorizontalSkew:
		s.HorizontalSkew = n
	case FieldInkBleed:
		s.InkBleed = n
	}
}

// asString accepts either the named string type T or a plain string.
func asString[T ~string](v any) (T, bool) {
	switch x := v.(type) {
	case T:
		return x, true
	case string:
		return T(x), true
	}
	return "", false
}

func typeError(f Field, want string, got any) error {
	return errs.New(errs.ErrCodeInvalidValue, "%s must be %s, got %T", f, want, got)
}
