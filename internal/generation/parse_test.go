package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestionsFromFencedOutput(t *testing.T) {
	text := "Here you go:\n```json\n[\n" +
		`{"question":"Unit of force?","options":["Newton","Joule","Watt","Pascal"],"correct_answer":"Newton"},` +
		`{"question":"Unit of power?","options":["Newton","Joule","Watt","Pascal"],"correct_answer":"c"}` +
		"\n]\n```"
	qs, err := parseQuestions(text)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Newton", qs[0].CorrectAnswer)
	assert.Equal(t, "Watt", qs[1].CorrectAnswer)
}

func TestParseQuestionsDropsMalformedItems(t *testing.T) {
	text := `[
	 {"question":"", "options":["a","b","c","d"], "correct_answer":"a"},
	 {"question":"three options", "options":["a","b","c"], "correct_answer":"a"},
	 {"question":"dup options", "options":["a","a","c","d"], "correct_answer":"a"},
	 {"question":"answer not an option", "options":["a","b","c","d"], "correct_answer":"e"},
	 {"question":" ok ", "options":[" a","b ","c","d"], "correct_answer":"b"}
	]`
	qs, err := parseQuestions(text)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "ok", qs[0].Question)
	assert.Equal(t, []string{"a", "b", "c", "d"}, qs[0].Options)
}

func TestParseQuestionsErrors(t *testing.T) {
	_, err := parseQuestions("I cannot help with that.")
	assert.ErrorIs(t, err, errNoJSONArray)

	_, err = parseQuestions(`[{"question": 1}]`)
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "गति", truncateRunes("गति और बल", 3))
	assert.Equal(t, "", truncateRunes("abc", 0))
}

func TestBuildPromptBoundsContent(t *testing.T) {
	p := buildPrompt(Request{Count: 5, Subject: "physics", Chapter: 1, ClassLevel: 9,
		Difficulty: "hard", Language: "hindi", Content: strings.Repeat("x", 5000) + "TAIL"})
	assert.NotContains(t, p, "TAIL")
	assert.Contains(t, p, strings.Repeat("x", MaxContentRunes))
	assert.NotContains(t, p, strings.Repeat("x", MaxContentRunes+1))
	assert.Contains(t, p, "Difficulty: hard")
	assert.Contains(t, p, "Language: hindi")
	assert.Contains(t, p, "exactly 5 questions")
}

func TestPlaceholdersAndSeed(t *testing.T) {
	qs := Placeholders("physics", 3, 2)
	require.Len(t, qs, 2)
	assert.Equal(t, "Sample question 3 for physics?", qs[0].Question)
	assert.Equal(t, "Sample question 4 for physics?", qs[1].Question)
	assert.Equal(t, []string{"Option A", "Option B", "Option C", "Option D"}, qs[1].Options)
	assert.Equal(t, "Option A", qs[1].CorrectAnswer)

	assert.Equal(t, "Generate 5 questions for Class 10 maths Chapter 2",
		FallbackSeed(Request{Count: 5, ClassLevel: 10, Subject: "maths", Chapter: 2}))
}

func TestResultOK(t *testing.T) {
	assert.False(t, Failure("x").OK())
	assert.False(t, Success(nil).OK())
	assert.True(t, Success(Placeholders("x", 1, 1)).OK())
}
