package style

import "slices"

// FontFamily names a handwriting typeface.
type FontFamily string

// Supported typefaces. FontCustom marks a face that was not chosen from the
// built-in set (for example one inferred by the style analyzer).
const (
	FontKalam           FontFamily = "Kalam"
	FontCaveat          FontFamily = "Caveat"
	FontDancingScript   FontFamily = "Dancing Script"
	FontPermanentMarker FontFamily = "Permanent Marker"
	FontIndieFlower     FontFamily = "Indie Flower"
	FontRockSalt        FontFamily = "Rock Salt"
	FontGochiHand       FontFamily = "Gochi Hand"
	FontCustom          FontFamily = "Custom"
)

var fontFamilies = []FontFamily{
	FontKalam,
	FontCaveat,
	FontDancingScript,
	FontPermanentMarker,
	FontIndieFlower,
	FontRockSalt,
	FontGochiHand,
	FontCustom,
}

// FontFamilies returns every supported typeface in display order.
func FontFamilies() []FontFamily { return slices.Clone(fontFamilies) }

// Valid reports whether f is one of the supported typefaces.
func (f FontFamily) Valid() bool { return slices.Contains(fontFamilies, f) }

// Instrument is the writing tool being imitated.
type Instrument string

const (
	InstrumentPen    Instrument = "pen"
	InstrumentPencil Instrument = "pencil"
	InstrumentMarker Instrument = "marker"
	InstrumentCustom Instrument = "custom"
)

var instruments = []Instrument{InstrumentPen, InstrumentPencil, InstrumentMarker, InstrumentCustom}

// Instruments returns every instrument in display order.
func Instruments() []Instrument { return slices.Clone(instruments) }

// Valid reports whether i is a known instrument.
func (i Instrument) Valid() bool { return slices.Contains(instruments, i) }

// Paper is the background the text is written on.
type Paper string

const (
	PaperPlain     Paper = "plain"
	PaperLined     Paper = "lined"
	PaperGrid      Paper = "grid"
	PaperParchment Paper = "parchment"
)

var papers = []Paper{PaperPlain, PaperLined, PaperGrid, PaperParchment}

// Papers returns every paper type in display order.
func Papers() []Paper { return slices.Clone(papers) }

// Valid reports whether p is a known paper type.
func (p Paper) Valid() bool { return slices.Contains(papers, p) }

// Settings is the complete visual configuration of rendered text.
// All fields are always present; values are replaced, never patched in place.
//
// Thickness is a font weight. LineHeight and WordSpacing are in rem,
// LetterRotation and HorizontalSkew in degrees, VerticalShift in pixels.
// Pressure and InkBleed are intensities from 0 to 100, SmudgeLevel from 0 to 5.
type Settings struct {
	FontFamily     FontFamily `json:"fontFamily" yaml:"fontFamily" toml:"fontFamily" validate:"fontfamily"`
	Instrument     Instrument `json:"instrument" yaml:"instrument" toml:"instrument" validate:"instrument"`
	Color          string     `json:"color" yaml:"color" toml:"color" validate:"required,csscolor"`
	Thickness      float64    `json:"thickness" yaml:"thickness" toml:"thickness" validate:"gte=100,lte=900"`
	LineHeight     float64    `json:"lineHeight" yaml:"lineHeight" toml:"lineHeight" validate:"gt=0"`
	Pressure       float64    `json:"pressure" yaml:"pressure" toml:"pressure" validate:"gte=0,lte=100"`
	SmudgeLevel    float64    `json:"smudgeLevel" yaml:"smudgeLevel" toml:"smudgeLevel" validate:"gte=0,lte=5"`
	Paper          Paper      `json:"paper" yaml:"paper" toml:"paper" validate:"paper"`
	WordSpacing    float64    `json:"wordSpacing" yaml:"wordSpacing" toml:"wordSpacing" validate:"gte=0"`
	LetterRotation float64    `json:"letterRotation" yaml:"letterRotation" toml:"letterRotation" validate:"gte=-45,lte=45"`
	VerticalShift  float64    `json:"verticalShift" yaml:"verticalShift" toml:"verticalShift" validate:"gte=-50,lte=50"`
	HorizontalSkew float64    `json:"horizontalSkew" yaml:"horizontalSkew" toml:"horizontalSkew" validate:"gte=-45,lte=45"`
	InkBleed       float64    `json:"inkBleed" yaml:"inkBleed" toml:"inkBleed" validate:"gte=0,lte=100"`
}

// Preset is the (font family, color, thickness) triple an instrument forces.
type Preset struct {
	FontFamily FontFamily `json:"fontFamily" yaml:"fontFamily"`
	Color      string     `json:"color" yaml:"color"`
	Thickness  float64    `json:"thickness" yaml:"thickness"`
}

var presets = map[Instrument]Preset{
	InstrumentPen:    {FontFamily: FontCaveat, Color: "#1a3a6b", Thickness: 500},
	InstrumentPencil: {FontFamily: FontKalam, Color: "#4a4a4a", Thickness: 300},
	InstrumentMarker: {FontFamily: FontPermanentMarker, Color: "#111111", Thickness: 700},
}

// PresetFor returns the preset forced by instrument i.
// InstrumentCustom and unknown instruments have no preset.
func PresetFor(i Instrument) (Preset, bool) {
	p, ok := presets[i]
	return p, ok
}

// Presets returns a copy of the instrument preset table.
func Presets() map[Instrument]Preset {
	out := make(map[Instrument]Preset, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

// DefaultText is the sample body text a new session starts with.
const DefaultText = "This is a sample of the generated handwriting. You can type your own text, upload a PDF, or use AI to generate content. Adjust the settings on the left to customize the appearance."

// Default returns the settings a new session starts with: the pen preset on
// lined paper with mild jitter.
func Default() Settings {
	pen := presets[InstrumentPen]
	return Settings{
		FontFamily:     pen.FontFamily,
		Instrument:     InstrumentPen,
		Color:          pen.Color,
		Thickness:      pen.Thickness,
		LineHeight:     2.5,
		Pressure:       50,
		SmudgeLevel:    0,
		Paper:          PaperLined,
		WordSpacing:    0.5,
		LetterRotation: 2,
		VerticalShift:  2,
		HorizontalSkew: 4,
		InkBleed:       10,
	}
}
