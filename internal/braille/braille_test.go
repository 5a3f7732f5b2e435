package braille

import (
	"strings"
	"testing"
)

func TestGeneral(t *testing.T) {
	cases := map[string]string{
		"ab":    "⠁⠃",
		"a b":   "⠁⠀⠃",
		"Ab":    "⠠⠁⠃",
		"7":     "⠼⠛",
		"12":    "⠼⠁⠼⠃",
		"hi!":   "⠓⠊⠖",
		"(x)":   "⠐⠣⠭⠐⠜",
		"a\nb":  "⠁⠀\n⠃",
		"a~b":   "⠁⠀⠃",
		"":      "",
		"x = 3": "⠭⠀⠶⠀⠼⠉",
	}
	for in, want := range cases {
		if got := General(in); got != want {
			t.Fatalf("General(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGeneralDigitsStartWithNumericIndicator(t *testing.T) {
	for _, d := range "0123456789" {
		got := General(string(d))
		if !strings.HasPrefix(got, NumericIndicator) || len([]rune(got)) != 2 {
			t.Fatalf("General(%q) = %q, want numeric indicator + cell", string(d), got)
		}
	}
}

func TestNemethFunctionsAndGreek(t *testing.T) {
	want := "⠎⠊⠝" + "⠐⠣" + "⠨⠹" + "⠐⠜"
	for _, in := range []string{"sin(theta)", "SIN(Theta)", "Sin(THETA)"} {
		if got := Nemeth(in); got != want {
			t.Fatalf("Nemeth(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNemethLongestFunctionMatch(t *testing.T) {
	if got := Nemeth("sinh"); got != "⠎⠊⠝⠓" {
		t.Fatalf("sinh: %q", got)
	}
	if got := Nemeth("arcsin"); got != "⠁⠗⠉⠎⠊⠝" {
		t.Fatalf("arcsin: %q", got)
	}
	if got := Nemeth("sqrt(x)"); got != "⠜⠐⠣⠭⠐⠜" {
		t.Fatalf("sqrt: %q", got)
	}
}

func TestNemethSymbols(t *testing.T) {
	cases := map[string]string{
		"x^2":  "⠭⠘⠼⠃",
		"a≤b":  "⠁⠐⠅⠱⠃",
		"Δx":   "⠠⠨⠙⠭",
		"Θ":    CapitalIndicator + "⠨⠹",
		"F":    "⠠⠋",
		"pi":   "⠨⠏",
		"pin":  "⠏⠊⠝",
		"50%":  "⠼⠑⠼⠚⠨⠴",
		"a@b":  "⠁⠀⠃",
		"[1]":  "⠈⠣⠼⠁⠈⠜",
		"v_0":  "⠧⠰⠼⠚",
		"∞":    "⠠⠿",
		"3×4":  "⠼⠉⠡⠼⠙",
		"8÷2":  "⠼⠓⠌⠼⠃",
		"x>=y": "⠭⠨⠂⠶⠽",
	}
	for in, want := range cases {
		if got := Nemeth(in); got != want {
			t.Fatalf("Nemeth(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanLatex(t *testing.T) {
	cases := map[string]string{
		`\frac{a}{b}`:        "(a/b)",
		`\sqrt{x+1}`:         "sqrt(x+1)",
		`a \times b`:         "a * b",
		`a \cdot b`:          "a * b",
		`a \div b`:           "a / b",
		`\sin \theta`:        "sin theta",
		`90^\circ`:           "90 degrees",
		`90^{\circ}`:         "90 degrees",
		`A = \pi r^{2}`:      "A = pi r^2",
		`  \alpha + \beta  `: "alpha + beta",
	}
	for in, want := range cases {
		if got := CleanLatex(in); got != want {
			t.Fatalf("CleanLatex(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertMixedThreeSegments(t *testing.T) {
	res := ConvertMixed(`Area is $A = \pi r^2$ for circles`)
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(res.Segments), res.Segments)
	}
	wantTypes := []SegmentType{SegmentText, SegmentMath, SegmentText}
	for i, seg := range res.Segments {
		if seg.Type != wantTypes[i] {
			t.Fatalf("segment %d: type %s, want %s", i, seg.Type, wantTypes[i])
		}
	}
	if res.Segments[0].Original != "Area is" || res.Segments[2].Original != "for circles" {
		t.Fatalf("text segments out of order: %+v", res.Segments)
	}
	math := res.Segments[1]
	if math.Original != `$A = \pi r^2$` {
		t.Fatalf("math original: %q", math.Original)
	}
	if !strings.HasPrefix(math.Braille, NemethOpen) || !strings.HasSuffix(math.Braille, NemethClose) {
		t.Fatalf("math braille not delimited: %q", math.Braille)
	}
	wantMath := NemethOpen + "⠠⠁⠀⠶⠀⠨⠏⠀⠗⠘⠼⠃" + NemethClose
	if math.Braille != wantMath {
		t.Fatalf("math braille: %q want %q", math.Braille, wantMath)
	}
	wantFull := res.Segments[0].Braille + Cell + math.Braille + Cell + res.Segments[2].Braille
	if res.FullBraille != wantFull {
		t.Fatalf("full braille: %q want %q", res.FullBraille, wantFull)
	}
	if res.EnglishOnly != "Area is for circles" {
		t.Fatalf("english only: %q", res.EnglishOnly)
	}
	if len(res.MathOnly) != 1 || res.MathOnly[0] != `$A = \pi r^2$ = A = pi r^2` {
		t.Fatalf("math only: %q", res.MathOnly)
	}
}

func TestConvertMixedDelimiters(t *testing.T) {
	res := ConvertMixed(`Use \(x+1\) and \[y\] then $$z$$.`)
	var types []SegmentType
	for _, s := range res.Segments {
		types = append(types, s.Type)
	}
	want := []SegmentType{SegmentText, SegmentMath, SegmentText, SegmentMath, SegmentText, SegmentMath}
	if len(types) < len(want) {
		t.Fatalf("segments: %+v", res.Segments)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("segment %d: %s want %s (%+v)", i, types[i], want[i], res.Segments)
		}
	}
}

func TestConvertMixedPlainAndEmpty(t *testing.T) {
	res := ConvertMixed("  just words  ")
	if len(res.Segments) != 1 || res.Segments[0].Type != SegmentText || res.Segments[0].Original != "just words" {
		t.Fatalf("plain: %+v", res.Segments)
	}
	empty := ConvertMixed("")
	if len(empty.Segments) != 1 || empty.Segments[0].Type != SegmentText || empty.FullBraille != "" {
		t.Fatalf("empty: %+v", empty)
	}
}

func TestSplitKeepsOverlappingMatches(t *testing.T) {
	// "$$x$$" is matched by both the display and the inline pattern; both are kept.
	segs := split("$$x$$")
	mathCount := 0
	for _, s := range segs {
		if s.typ == SegmentMath {
			mathCount++
		}
	}
	if mathCount != 2 {
		t.Fatalf("expected both overlapping matches, got %+v", segs)
	}
}

func TestValidateSegments(t *testing.T) {
	good := ConvertMixed("$x + 1$")
	if v := ValidateSegments(good.Segments); !v.OK || len(v.Warnings) != 0 {
		t.Fatalf("good: %+v", v)
	}

	bad := []Segment{
		{Type: SegmentText, Braille: "⠁"},
		{Type: SegmentMath, Braille: "⠭⠬⠼⠁⠶⠽⠽"},
		{Type: SegmentMath, Braille: NemethOpen + NemethClose},
	}
	v := ValidateSegments(bad)
	if v.OK {
		t.Fatalf("expected warnings")
	}
	want := []string{WarnMissingDelimiters, WarnShortMath}
	if len(v.Warnings) != len(want) {
		t.Fatalf("warnings: %v", v.Warnings)
	}
	for i := range want {
		if v.Warnings[i] != want[i] {
			t.Fatalf("warning %d: %q want %q", i, v.Warnings[i], want[i])
		}
	}
}

func TestBackTranslate(t *testing.T) {
	if got := BackTranslate(General("abc 12.")); got != "abc 12." {
		t.Fatalf("BackTranslate: %q", got)
	}
	if got := BackTranslate("⠁⠿x"); got != "a?x" {
		t.Fatalf("BackTranslate unknown: %q", got)
	}
	if !InBrailleBlock("⠁") || InBrailleBlock("abc") {
		t.Fatalf("InBrailleBlock")
	}
}

func TestFormatBRF(t *testing.T) {
	word := strings.Repeat("⠁", 15)
	text := strings.Join([]string{word, word, word, word}, Cell)
	out := FormatBRF(text, LineWidth)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), lines)
	}
	for _, l := range lines {
		if LineCells(l) > LineWidth {
			t.Fatalf("line too wide (%d): %q", LineCells(l), l)
		}
	}
	if lines[0] != word+Cell+word {
		t.Fatalf("first line: %q", lines[0])
	}

	long := strings.Repeat("⠃", 95)
	out = FormatBRF(long, 40)
	lines = strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 || LineCells(lines[0]) != 40 || LineCells(lines[2]) != 15 {
		t.Fatalf("hard split: %d lines", len(lines))
	}

	if got := FormatBRF("⠁"+Cell+"\n⠃", 40); got != "⠁\n⠃\n" {
		t.Fatalf("paragraphs: %q", got)
	}
}
