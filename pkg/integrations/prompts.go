package integrations

import (
	"fmt"
	"strings"

	"github.com/Deva-here/ScribbleForge/pkg/style"
)

// GenerationInstruction frames a user prompt so the model answers with
// plain body text suitable for a handwritten page.
const GenerationInstruction = "Write the text the user asks for. Reply with the body text only: " +
	"no title, no markdown, no commentary. Keep it under 200 words unless asked otherwise."

// GenerationPrompt combines the instruction with the user's request.
func GenerationPrompt(prompt string) string {
	return GenerationInstruction + "\n\nRequest: " + prompt
}

// AnalysisPrompt asks a vision model to describe a handwriting sample in
// terms of the settings fields, as a single JSON object.
func AnalysisPrompt() string {
	fonts := make([]string, 0, len(style.FontFamilies()))
	for _, f := range style.FontFamilies() {
		fonts = append(fonts, fmt.Sprintf("%q", f))
	}
	papers := make([]string, 0, len(style.Papers()))
	for _, p := range style.Papers() {
		papers = append(papers, fmt.Sprintf("%q", p))
	}

	var b strings.Builder
	b.WriteString("Analyze the handwriting in this image and describe its style as a JSON object. ")
	b.WriteString("Include only the keys you can infer with confidence:\n")
	fmt.Fprintf(&b, "- fontFamily: the closest of %s\n", strings.Join(fonts, ", "))
	b.WriteString("- color: the ink color as a hex string like \"#1a3a6b\"\n")
	b.WriteString("- thickness: stroke weight from 100 (hairline) to 900 (very heavy)\n")
	b.WriteString("- lineHeight: line spacing in rem, for example 2.5\n")
	b.WriteString("- pressure: pressure variation from 0 to 100\n")
	b.WriteString("- smudgeLevel: smudging from 0 to 5\n")
	fmt.Fprintf(&b, "- paper: one of %s\n", strings.Join(papers, ", "))
	b.WriteString("- wordSpacing: space between words in rem, 0 or more\n")
	b.WriteString("- letterRotation: typical letter tilt in degrees, -45 to 45\n")
	b.WriteString("- verticalShift: baseline wobble in pixels, -50 to 50\n")
	b.WriteString("- horizontalSkew: slant in degrees, -45 to 45\n")
	b.WriteString("- inkBleed: ink bleed from 0 to 100\n")
	b.WriteString("Reply with the JSON object only.")
	return b.String()
}
