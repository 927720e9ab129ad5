package question

import "time"

// Question is one persisted multiple-choice item. Options keep the order
// the generator produced.
type Question struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	ClassLevel    int       `json:"class_level"`
	Subject       string    `json:"subject"`
	Chapter       int       `json:"chapter"`
	Text          string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	Difficulty    string    `json:"difficulty"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
}
