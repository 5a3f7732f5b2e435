package textextract

import "testing"

func TestExtractArticle(t *testing.T) {
	payload := `{
		"meta": {"title": "  Fractions  "},
		"content": {
			"introduction": "A fraction is part of a whole.",
			"coreConcepts": [
				{"conceptTitle": "Halves", "explanation": "Two equal parts.", "example": "1/2 of a pizza", "diagramDescription": "A circle cut in two"},
				"skip me",
				{"conceptTitle": "", "explanation": "Only explanation."}
			],
			"summary": ["Fractions name parts.", ""],
			"quickCheckQuestions": [{"question": "What is 1/2 + 1/2?", "answer": "1"}]
		}
	}`
	want := "Fractions\n" +
		"A fraction is part of a whole.\n" +
		"Halves\n" +
		"Two equal parts.\n" +
		"Example: 1/2 of a pizza\n" +
		"Diagram: A circle cut in two\n" +
		"Only explanation.\n" +
		"Summary:\n" +
		"Fractions name parts.\n" +
		"Quick check questions:\n" +
		"Question: What is 1/2 + 1/2?\n" +
		"Answer: 1"
	if got := Extract([]byte(payload)); got != want {
		t.Fatalf("Extract:\n%s\nwant:\n%s", got, want)
	}
}

func TestExtractPractice(t *testing.T) {
	payload := `{
		"meta": {"title": "Quiz"},
		"practice": {"questions": [
			{"question": "2 + 2?", "options": [3, 4, "five"], "correctAnswer": 4, "explanation": "Add them."},
			{"question": "Pick a letter", "options": [], "correctAnswer": "b"}
		]}
	}`
	want := "Quiz\nQuestions:\n2 + 2?\nOptions: 3, 4, five\nAnswer: 4\nExplanation: Add them.\nPick a letter\nAnswer: b"
	if got := Extract([]byte(payload)); got != want {
		t.Fatalf("Extract:\n%q\nwant:\n%q", got, want)
	}
}

func TestExtractNonObject(t *testing.T) {
	cases := map[string]string{
		`"plain string"`: "plain string",
		`null`:           "",
		`not json`:       "not json",
		`{}`:             "",
		`42`:             "42",
	}
	for in, want := range cases {
		if got := Extract([]byte(in)); got != want {
			t.Fatalf("Extract(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractAll(t *testing.T) {
	got := ExtractAll([][]byte{[]byte(`{"meta":{"title":"A"}}`), []byte(`{"meta":{"title":"B"}}`)})
	if got != "A\n\nB" {
		t.Fatalf("ExtractAll: %q", got)
	}
}
