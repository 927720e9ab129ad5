package quiz

import "time"

// OriginalQuestion is the answer key a submission is scored against.
type OriginalQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
}

// Response is one scored answer, in submission order.
type Response struct {
	Position       int      `json:"position"`
	QuestionID     string   `json:"question_id"`
	QuestionText   string   `json:"question_text"`
	Options        []string `json:"options"`
	SelectedAnswer string   `json:"selected_answer"`
	CorrectAnswer  string   `json:"correct_answer"`
	IsCorrect      bool     `json:"is_correct"`
}

type Result struct {
	Total      int        `json:"total_questions"`
	Correct    int        `json:"correct_answers"`
	Wrong      int        `json:"wrong_answers"`
	Percentage float64    `json:"score_percentage"`
	Responses  []Response `json:"responses"`
}

type Submission struct {
	UserID     string
	ClassLevel int
	Subject    string
	Chapter    int
	Questions  []OriginalQuestion // empty: resolve from the user's history
	Answers    []Answer
	TimeTaken  int // seconds
}

type Attempt struct {
	ID              string    `json:"quiz_id"`
	UserID          string    `json:"-"`
	ClassLevel      int       `json:"class_level"`
	Subject         string    `json:"subject"`
	Chapter         int       `json:"chapter"`
	TotalQuestions  int       `json:"total_questions"`
	CorrectAnswers  int       `json:"correct_answers"`
	WrongAnswers    int       `json:"wrong_answers"`
	ScorePercentage float64   `json:"score_percentage"`
	TimeTaken       int       `json:"time_taken"`
	AttemptedAt     time.Time `json:"attempted_at"`
}

type Detail struct {
	Attempt
	Responses []Response `json:"responses"`
}

type Stats struct {
	Attempts int     `json:"total_quizzes"`
	Average  float64 `json:"average_score"`
	Best     float64 `json:"best_score"`
	Worst    float64 `json:"worst_score"`
}
