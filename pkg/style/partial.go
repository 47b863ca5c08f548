package style

import (
	"encoding/json"
	"strings"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

// Partial is any subset of Settings. A nil member is absent.
type Partial struct {
	FontFamily     *FontFamily `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	Instrument     *Instrument `json:"instrument,omitempty" yaml:"instrument,omitempty"`
	Color          *string     `json:"color,omitempty" yaml:"color,omitempty"`
	Thickness      *float64    `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	LineHeight     *float64    `json:"lineHeight,omitempty" yaml:"lineHeight,omitempty"`
	Pressure       *float64    `json:"pressure,omitempty" yaml:"pressure,omitempty"`
	SmudgeLevel    *float64    `json:"smudgeLevel,omitempty" yaml:"smudgeLevel,omitempty"`
	Paper          *Paper      `json:"paper,omitempty" yaml:"paper,omitempty"`
	WordSpacing    *float64    `json:"wordSpacing,omitempty" yaml:"wordSpacing,omitempty"`
	LetterRotation *float64    `json:"letterRotation,omitempty" yaml:"letterRotation,omitempty"`
	VerticalShift  *float64    `json:"verticalShift,omitempty" yaml:"verticalShift,omitempty"`
	HorizontalSkew *float64    `json:"horizontalSkew,omitempty" yaml:"horizontalSkew,omitempty"`
	InkBleed       *float64    `json:"inkBleed,omitempty" yaml:"inkBleed,omitempty"`
}

// Merge performs a shallow override-merge: every field present in p replaces
// the corresponding field of s, every absent field keeps its value from s.
// No instrument preset is applied.
func Merge(s Settings, p Partial) Settings {
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.Instrument != nil {
		s.Instrument = *p.Instrument
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.Thickness != nil {
		s.Thickness = *p.Thickness
	}
	if p.LineHeight != nil {
		s.LineHeight = *p.LineHeight
	}
	if p.Pressure != nil {
		s.Pressure = *p.Pressure
	}
	if p.SmudgeLevel != nil {
		s.SmudgeLevel = *p.SmudgeLevel
	}
	if p.Paper != nil {
		s.Paper = *p.Paper
	}
	if p.WordSpacing != nil {
		s.WordSpacing = *p.WordSpacing
	}
	if p.LetterRotation != nil {
		s.LetterRotation = *p.LetterRotation
	}
	if p.VerticalShift != nil {
		s.VerticalShift = *p.VerticalShift
	}
	if p.HorizontalSkew != nil {
		s.HorizontalSkew = *p.HorizontalSkew
	}
	if p.InkBleed != nil {
		s.InkBleed = *p.InkBleed
	}
	return s
}

// Fields returns the fields present in p, in declaration order.
func (p Partial) Fields() []Field {
	present := map[Field]bool{
		FieldFontFamily:     p.FontFamily != nil,
		FieldInstrument:     p.Instrument != nil,
		FieldColor:          p.Color != nil,
		FieldThickness:      p.Thickness != nil,
		FieldLineHeight:     p.LineHeight != nil,
		FieldPressure:       p.Pressure != nil,
		FieldSmudgeLevel:    p.SmudgeLevel != nil,
		FieldPaper:          p.Paper != nil,
		FieldWordSpacing:    p.WordSpacing != nil,
		FieldLetterRotation: p.LetterRotation != nil,
		FieldVerticalShift:  p.VerticalShift != nil,
		FieldHorizontalSkew: p.HorizontalSkew != nil,
		FieldInkBleed:       p.InkBleed != nil,
	}
	var out []Field
	for _, f := range fields {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether p carries no fields.
func (p Partial) IsEmpty() bool { return len(p.Fields()) == 0 }

// Without returns a copy of p with field f removed.
func (p Partial) Without(f Field) Partial {
	switch f {
	case FieldFontFamily:
		p.FontFamily = nil
	case FieldInstrument:
		p.Instrument = nil
	case FieldColor:
		p.Color = nil
	case FieldThickness:
		p.Thickness = nil
	case FieldLineHeight:
		p.LineHeight = nil
	case FieldPressure:
		p.Pressure = nil
	case FieldSmudgeLevel:
		p.SmudgeLevel = nil
	case FieldPaper:
		p.Paper = nil
	case FieldWordSpacing:
		p.WordSpacing = nil
	case FieldLetterRotation:
		p.LetterRotation = nil
	case FieldVerticalShift:
		p.VerticalShift = nil
	case FieldHorizontalSkew:
		p.HorizontalSkew = nil
	case FieldInkBleed:
		p.InkBleed = nil
	}
	return p
}

// Sanitize drops every present field whose value is outside its domain and
// reports which fields were dropped. Merging the result into valid Settings
// always yields a valid record.
func (p Partial) Sanitize() (Partial, []Field) {
	var dropped []Field
	probe := Merge(Default(), p)
	for _, f := range p.Fields() {
		if err := validateField(probe, f); err != nil {
			p = p.Without(f)
			dropped = append(dropped, f)
		}
	}
	return p, dropped
}

// ParsePartialJSON decodes a JSON object into a sanitized Partial.
//
// Keys are resolved with ParseField, so "font_family" and "FontFamily" are
// accepted alongside "fontFamily". When several keys name the same field the
// canonical spelling wins, then the lexically smallest alias. Unknown keys
// are ignored. A value of the
// wrong JSON type or outside its domain is dropped and reported rather than
// failing the whole document; only a document that is not a JSON object is
// an error.
func ParsePartialJSON(data []byte) (Partial, []Field, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Partial{}, nil, errs.Wrap(errs.ErrCodeInvalidValue, err, "decode partial settings")
	}

	chosen := make(map[Field]string, len(raw))
	for key := range raw {
		f, err := ParseField(key)
		if err != nil {
			continue
		}
		if prev, ok := chosen[f]; ok && !preferKey(f, key, prev) {
			continue
		}
		chosen[f] = key
	}

	var p Partial
	bad := make(map[Field]bool)
	for f, key := range chosen {
		if err := decodeInto(&p, f, raw[key]); err != nil {
			bad[f] = true
		}
	}

	clean, invalid := p.Sanitize()
	for _, f := range invalid {
		bad[f] = true
	}

	var dropped []Field
	for _, f := range fields {
		if bad[f] {
			dropped = append(dropped, f)
		}
	}
	return clean, dropped, nil
}

// preferKey reports whether key should replace prev as the source for f.
func preferKey(f Field, key, prev string) bool {
	if prev == string(f) {
		return false
	}
	return key == string(f) || key < prev
}

func decodeInto(p *Partial, f Field, msg json.RawMessage) error {
	if strings.TrimSpace(string(msg)) == "null" {
		return nil
	}
	if !f.Numeric() {
		var v string
		if err := json.Unmarshal(msg, &v); err != nil {
			return err
		}
		switch f {
		case FieldFontFamily:
			ff := FontFamily(v)
			p.FontFamily = &ff
		case FieldInstrument:
			i := Instrument(v)
			p.Instrument = &i
		case FieldColor:
			p.Color = &v
		case FieldPaper:
			pp := Paper(v)
			p.Paper = &pp
		}
		return nil
	}

	var n float64
	if err := json.Unmarshal(msg, &n); err != nil {
		return err
	}
	switch f {
	case FieldThickness:
		p.Thickness = &n
	case FieldLineHeight:
		p.LineHeight = &n
	case FieldPressure:
		p.Pressure = &n
	case FieldSmudgeLevel:
		p.SmudgeLevel = &n
	case FieldWordSpacing:
		p.WordSpacing = &n
	case FieldLetterRotation:
		p.LetterRotation = &n
	case FieldVerticalShift:
		p.VerticalShift = &n
	case FieldHorizontalSkew:
		p.HorizontalSkew = &n
	case FieldInkBleed:
		p.InkBleed = &n
	}
	return nil
}
