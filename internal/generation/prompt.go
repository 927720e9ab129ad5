package generation

import (
	"fmt"
	"strings"
)

// MaxContentRunes bounds how much chapter text goes into a prompt.
const MaxContentRunes = 3000

const systemPrompt = "You write school exam questions. Reply with a JSON array only, no prose and no markdown."

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following textbook chapter content, generate %d multiple choice questions.\n\n", req.Count)
	fmt.Fprintf(&b, "Class %d, subject %s, chapter %d.\n\n", req.ClassLevel, req.Subject, req.Chapter)
	b.WriteString("CONTENT:\n")
	b.WriteString(truncateRunes(req.Content, MaxContentRunes))
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("- One-line objective questions\n")
	b.WriteString("- 4 options for each question (1 correct + 3 plausible wrong ones)\n")
	fmt.Fprintf(&b, "- Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "- Language: %s\n", req.Language)
	b.WriteString("- Questions must be based on the content\n")
	fmt.Fprintf(&b, "- Return exactly %d questions\n\n", req.Count)
	b.WriteString(`Return ONLY valid JSON in this shape:
[
  {"question": "One-line question text?", "options": ["A", "B", "C", "D"], "correct_answer": "text of the correct option"}
]`)
	return b.String()
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
