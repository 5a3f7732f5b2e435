package braille

const (
	// Cell is the blank braille cell, used as the space and the unknown-character placeholder.
	Cell = "⠀"
	// CapitalIndicator precedes an uppercase letter that has no encoding of its own.
	CapitalIndicator = "⠠"
	NumericIndicator = "⠼"

	NemethOpen  = "⠸⠩"
	NemethClose = "⠸⠱"
)

var generalTable = map[rune]string{
	'a': "⠁", 'b': "⠃", 'c': "⠉", 'd': "⠙", 'e': "⠑",
	'f': "⠋", 'g': "⠛", 'h': "⠓", 'i': "⠊", 'j': "⠚",
	'k': "⠅", 'l': "⠇", 'm': "⠍", 'n': "⠝", 'o': "⠕",
	'p': "⠏", 'q': "⠟", 'r': "⠗", 's': "⠎", 't': "⠞",
	'u': "⠥", 'v': "⠧", 'w': "⠺", 'x': "⠭", 'y': "⠽",
	'z': "⠵", ' ': Cell,
	'0': NumericIndicator + "⠚", '1': NumericIndicator + "⠁", '2': NumericIndicator + "⠃",
	'3': NumericIndicator + "⠉", '4': NumericIndicator + "⠙", '5': NumericIndicator + "⠑",
	'6': NumericIndicator + "⠋", '7': NumericIndicator + "⠛", '8': NumericIndicator + "⠓",
	'9': NumericIndicator + "⠊",
	'.': "⠲", ',': "⠂", '?': "⠦", '!': "⠖", ':': "⠒",
	';': "⠆", '-': "⠤", '+': "⠬", '=': "⠶", '/': "⠌",
	'*': "⠡", '(': "⠐⠣", ')': "⠐⠜", '\n': Cell + "\n",
}

// nemethTable layers math symbols and Greek letters over generalTable.
var nemethTable = func() map[rune]string {
	m := make(map[rune]string, len(generalTable)+48)
	for k, v := range generalTable {
		m[k] = v
	}
	for k, v := range map[rune]string{
		'×': "⠡", '÷': "⠌",
		'[': "⠈⠣", ']': "⠈⠜",
		'<': "⠐⠅", '>': "⠨⠂", '≤': "⠐⠅⠱", '≥': "⠨⠂⠱",
		'²': "⠘⠆", '³': "⠘⠒", '√': "⠜",
		'^': "⠘", '_': "⠰",
		'%': "⠨⠴", '∞': "⠠⠿", 'π': "⠨⠏",

		'α': "⠨⠁", 'β': "⠨⠃", 'γ': "⠨⠛", 'δ': "⠨⠙", 'ε': "⠨⠑",
		'θ': "⠨⠹", 'λ': "⠨⠇", 'μ': "⠨⠍", 'ν': "⠨⠝", 'ρ': "⠨⠗",
		'σ': "⠨⠎", 'τ': "⠨⠞", 'φ': "⠨⠋", 'ω': "⠨⠺",

		'Δ': "⠠⠨⠙", 'Σ': "⠠⠨⠎", 'Ω': "⠠⠨⠺",
	} {
		m[k] = v
	}
	return m
}()

// nemethFunctions are matched case-insensitively, longest name first.
var nemethFunctions = map[string]string{
	"sin":    "⠎⠊⠝",
	"cos":    "⠉⠕⠎",
	"tan":    "⠞⠁⠝",
	"cot":    "⠉⠕⠞",
	"sec":    "⠎⠑⠉",
	"csc":    "⠉⠎⠉",
	"log":    "⠇⠕⠛",
	"ln":     "⠇⠝",
	"exp":    "⠑⠭⠏",
	"sqrt":   "⠜",
	"arcsin": "⠁⠗⠉⠎⠊⠝",
	"arccos": "⠁⠗⠉⠉⠕⠎",
	"arctan": "⠁⠗⠉⠞⠁⠝",
	"sinh":   "⠎⠊⠝⠓",
	"cosh":   "⠉⠕⠎⠓",
	"tanh":   "⠞⠁⠝⠓",
	"lim":    "⠇⠊⠍",
	"max":    "⠍⠁⠭",
	"min":    "⠍⠊⠝",
}

var greekNames = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ",
	"epsilon": "ε", "theta": "θ", "lambda": "λ", "mu": "μ",
	"nu": "ν", "rho": "ρ", "sigma": "σ", "tau": "τ",
	"phi": "φ", "omega": "ω", "pi": "π",
}
