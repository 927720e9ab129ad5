package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fourQuestions() []OriginalQuestion {
	opts := []string{"A", "B", "C", "D"}
	return []OriginalQuestion{
		{ID: "q1", Question: "one", Options: opts, CorrectAnswer: "A"},
		{ID: "q2", Question: "two", Options: opts, CorrectAnswer: "B"},
		{ID: "q3", Question: "three", Options: opts, CorrectAnswer: "C"},
		{ID: "q4", Question: "four", Options: opts, CorrectAnswer: "D"},
	}
}

func TestScoreThreeOfFour(t *testing.T) {
	res := Score(fourQuestions(), []Answer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "q2", SelectedAnswer: "B"},
		{QuestionID: "q3", SelectedAnswer: "C"},
		{QuestionID: "q4", SelectedAnswer: "A"},
	})
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 1, res.Wrong)
	assert.Equal(t, 75.0, res.Percentage)
	assert.False(t, res.Responses[3].IsCorrect)
	assert.Equal(t, "D", res.Responses[3].CorrectAnswer)
}

func TestScoreSkipsUnknownIDs(t *testing.T) {
	res := Score(fourQuestions(), []Answer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "nope", SelectedAnswer: "A"},
	})
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.Len(t, res.Responses, 1)
	assert.Equal(t, 100.0, res.Percentage)
}

func TestScoreIgnoresBlankIDs(t *testing.T) {
	originals := append(fourQuestions(), OriginalQuestion{Question: "no id", Options: []string{"A"}, CorrectAnswer: "A"})
	res := Score(originals, []Answer{
		{QuestionID: "q1", SelectedAnswer: "A"},
		{QuestionID: "", SelectedAnswer: "A"},
	})
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.Len(t, res.Responses, 1)
}

func TestScoreIsExactMatch(t *testing.T) {
	res := Score(fourQuestions(), []Answer{
		{QuestionID: "q1", SelectedAnswer: "a"},
		{QuestionID: "q2", SelectedAnswer: " B"},
	})
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 2, res.Wrong)
}

func TestScoreEmpty(t *testing.T) {
	res := Score(nil, nil)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0.0, res.Percentage)

	res = Score(fourQuestions(), []Answer{{QuestionID: "x", SelectedAnswer: "A"}})
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0.0, res.Percentage)
}

func TestScoreDeterministic(t *testing.T) {
	answers := []Answer{{QuestionID: "q2", SelectedAnswer: "B"}, {QuestionID: "q1", SelectedAnswer: "C"}}
	assert.Equal(t, Score(fourQuestions(), answers), Score(fourQuestions(), answers))
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))

	st := Summarize([]Attempt{{ScorePercentage: 75}, {ScorePercentage: 100}, {ScorePercentage: 33.333333}})
	assert.Equal(t, 3, st.Attempts)
	assert.Equal(t, 69.44, st.Average)
	assert.Equal(t, 100.0, st.Best)
	assert.Equal(t, 33.33, st.Worst)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, round2(200.0/3))
	assert.Equal(t, 0.0, round2(0))
}
