package generation

import "fmt"

// Placeholders returns n deterministic stand-in questions numbered from
// first.
func Placeholders(subject string, first, n int) []Question {
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Question{
			Question:      fmt.Sprintf("Sample question %d for %s?", first+i, subject),
			Options:       []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectAnswer: "Option A",
		})
	}
	return out
}

// FallbackSeed stands in for chapter text the CMS could not supply.
func FallbackSeed(req Request) string {
	return fmt.Sprintf("Generate %d questions for Class %d %s Chapter %d", req.Count, req.ClassLevel, req.Subject, req.Chapter)
}
