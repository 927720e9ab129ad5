package quiz

import "math"

// Score grades answers against originals. Answers whose question id is
// blank or not among originals are skipped and count toward nothing. Correctness is exact
// string equality; no case or whitespace folding.
func Score(originals []OriginalQuestion, answers []Answer) Result {
	byID := make(map[string]OriginalQuestion, len(originals))
	for _, q := range originals {
		if q.ID == "" {
			continue
		}
		byID[q.ID] = q
	}

	res := Result{Responses: []Response{}}
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok || a.QuestionID == "" {
			continue
		}
		correct := a.SelectedAnswer == q.CorrectAnswer
		res.Responses = append(res.Responses, Response{
			Position:       len(res.Responses),
			QuestionID:     q.ID,
			QuestionText:   q.Question,
			Options:        q.Options,
			SelectedAnswer: a.SelectedAnswer,
			CorrectAnswer:  q.CorrectAnswer,
			IsCorrect:      correct,
		})
		res.Total++
		if correct {
			res.Correct++
		}
	}
	res.Wrong = res.Total - res.Correct
	res.Percentage = percentage(res.Correct, res.Total)
	return res
}

// Summarize computes average/best/worst over attempts; zeros when empty.
func Summarize(attempts []Attempt) Stats {
	if len(attempts) == 0 {
		return Stats{}
	}
	st := Stats{Attempts: len(attempts), Best: attempts[0].ScorePercentage, Worst: attempts[0].ScorePercentage}
	sum := 0.0
	for _, a := range attempts {
		sum += a.ScorePercentage
		st.Best = math.Max(st.Best, a.ScorePercentage)
		st.Worst = math.Min(st.Worst, a.ScorePercentage)
	}
	st.Average = round2(sum / float64(len(attempts)))
	st.Best = round2(st.Best)
	st.Worst = round2(st.Worst)
	return st
}

func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(correct) / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
