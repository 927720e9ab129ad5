// Package generation turns chapter content into multiple-choice questions.
package generation

import "context"

const ReasonUnavailable = "generator unavailable"

type Request struct {
	ClassLevel int
	Subject    string
	Chapter    int
	Count      int
	Difficulty string
	Language   string
	Content    string
}

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Result is either a list of usable questions or a reason why there are
// none. It never carries both.
type Result struct {
	Questions []Question
	Reason    string
}

func Success(qs []Question) Result { return Result{Questions: qs} }

func Failure(reason string) Result { return Result{Reason: reason} }

func (r Result) OK() bool { return r.Reason == "" && len(r.Questions) > 0 }

type Generator interface {
	Generate(ctx context.Context, req Request) Result
	Available() bool
}
