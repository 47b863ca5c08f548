package style

import (
	"slices"
	"testing"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func TestMerge(t *testing.T) {
	base := Default()

	got := Merge(base, Partial{Color: ptr("#ff0000"), Pressure: ptr(80.0)})
	want := base
	want.Color = "#ff0000"
	want.Pressure = 80
	if got != want {
		t.Errorf("Merge() = %+v, want %+v", got, want)
	}

	if Merge(base, Partial{}) != base {
		t.Error("Merge(empty) should be identity")
	}
}

func TestMergeDoesNotApplyPreset(t *testing.T) {
	base := Default()
	got := Merge(base, Partial{Instrument: ptr(InstrumentMarker)})

	if got.Instrument != InstrumentMarker {
		t.Errorf("Instrument = %s, want marker", got.Instrument)
	}
	if got.FontFamily != base.FontFamily || got.Color != base.Color || got.Thickness != base.Thickness {
		t.Errorf("Merge() applied a preset: %+v", got)
	}
}

func TestPartialFields(t *testing.T) {
	p := Partial{InkBleed: ptr(5.0), FontFamily: ptr(FontKalam), Paper: ptr(PaperGrid)}

	want := []Field{FieldFontFamily, FieldPaper, FieldInkBleed}
	if got := p.Fields(); !slices.Equal(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
	if p.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty partial")
	}
	if !(Partial{}).IsEmpty() {
		t.Error("IsEmpty() = false for empty partial")
	}

	without := p.Without(FieldPaper)
	if without.Paper != nil {
		t.Error("Without(paper) kept paper")
	}
	if p.Paper == nil {
		t.Error("Without() modified receiver")
	}
}

func TestPartialSanitize(t *testing.T) {
	p := Partial{
		Color:      ptr("#00aa00"),
		Thickness:  ptr(2000.0),
		FontFamily: ptr(FontFamily("Wingdings")),
		Pressure:   ptr(30.0),
	}

	clean, dropped := p.Sanitize()

	wantDropped := []Field{FieldFontFamily, FieldThickness}
	if !slices.Equal(dropped, wantDropped) {
		t.Errorf("dropped = %v, want %v", dropped, wantDropped)
	}
	if clean.Thickness != nil || clean.FontFamily != nil {
		t.Error("invalid fields kept")
	}
	if clean.Color == nil || *clean.Color != "#00aa00" || clean.Pressure == nil || *clean.Pressure != 30 {
		t.Errorf("valid fields lost: %+v", clean)
	}
	if err := Merge(Default(), clean).Validate(); err != nil {
		t.Errorf("merged sanitized partial invalid: %v", err)
	}
}

func TestParsePartialJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantFields  []Field
		wantDropped []Field
	}{
		{
			name:       "analyzer result",
			input:      `{"color":"#ff0000","pressure":80}`,
			wantFields: []Field{FieldColor, FieldPressure},
		},
		{
			name:       "empty object",
			input:      `{}`,
			wantFields: nil,
		},
		{
			name:       "alternate key spellings",
			input:      `{"font_family":"Kalam","Line-Height":3}`,
			wantFields: []Field{FieldFontFamily, FieldLineHeight},
		},
		{
			name:       "unknown keys ignored",
			input:      `{"mood":"happy","paper":"grid"}`,
			wantFields: []Field{FieldPaper},
		},
		{
			name:       "null is absent",
			input:      `{"color":null,"inkBleed":12}`,
			wantFields: []Field{FieldInkBleed},
		},
		{
			name:        "wrong types dropped",
			input:       `{"thickness":"bold","color":7,"pressure":20}`,
			wantFields:  []Field{FieldPressure},
			wantDropped: []Field{FieldColor, FieldThickness},
		},
		{
			name:        "out of range dropped",
			input:       `{"smudgeLevel":9,"instrument":"quill","wordSpacing":1}`,
			wantFields:  []Field{FieldWordSpacing},
			wantDropped: []Field{FieldInstrument, FieldSmudgeLevel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, dropped, err := ParsePartialJSON([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParsePartialJSON() error: %v", err)
			}
			if got := p.Fields(); !slices.Equal(got, tt.wantFields) {
				t.Errorf("fields = %v, want %v", got, tt.wantFields)
			}
			if !slices.Equal(dropped, tt.wantDropped) {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
		})
	}
}

func TestParsePartialJSONRejectsNonObject(t *testing.T) {
	for _, input := range []string{`[1,2]`, `"pen"`, `not json`, ``} {
		_, _, err := ParsePartialJSON([]byte(input))
		if err == nil {
			t.Errorf("ParsePartialJSON(%q) should fail", input)
			continue
		}
		if !errs.Is(err, errs.ErrCodeInvalidValue) {
			t.Errorf("ParsePartialJSON(%q) code = %v", input, errs.GetCode(err))
		}
	}
}

func TestParsePartialJSONAliasPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FontFamily
	}{
		{"canonical after alias", `{"font_family":"Caveat","fontFamily":"Kalam"}`, FontKalam},
		{"canonical before alias", `{"fontFamily":"Kalam","font_family":"Caveat"}`, FontKalam},
		{"aliases only", `{"font_family":"Caveat","FontFamily":"Kalam"}`, FontKalam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Map iteration order varies between runs of the loop.
			for i := 0; i < 20; i++ {
				p, dropped, err := ParsePartialJSON([]byte(tt.input))
				if err != nil {
					t.Fatal(err)
				}
				if p.FontFamily == nil || *p.FontFamily != tt.want {
					t.Fatalf("FontFamily = %v, want %s", p.FontFamily, tt.want)
				}
				if len(dropped) != 0 {
					t.Fatalf("dropped = %v", dropped)
				}
			}
		})
	}
}

func TestParsePartialJSONInvalidAliasIgnoredWhenCanonicalPresent(t *testing.T) {
	p, dropped, err := ParsePartialJSON([]byte(`{"pressure":40,"Pressure":"heavy"}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Pressure == nil || *p.Pressure != 40 {
		t.Errorf("Pressure = %v, want 40", p.Pressure)
	}
	if len(dropped) != 0 {
		t.Errorf("dropped = %v", dropped)
	}
}

// Scenario: a successful analysis merges only the inferred fields.
func TestParsePartialJSONMergeKeepsOtherFields(t *testing.T) {
	base, err := Apply(Default(), FieldPaper, PaperParchment)
	if err != nil {
		t.Fatal(err)
	}

	p, _, err := ParsePartialJSON([]byte(`{"color":"#ff0000","pressure":80}`))
	if err != nil {
		t.Fatal(err)
	}
	got := Merge(base, p)

	if got.Color != "#ff0000" || got.Pressure != 80 {
		t.Errorf("merged values wrong: %+v", got)
	}
	if changed := Diff(base, got); !slices.Equal(changed, []Field{FieldColor, FieldPressure}) {
		t.Errorf("Diff() = %v", changed)
	}
}
