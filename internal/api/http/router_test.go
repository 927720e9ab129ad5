package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	api "github.com/5minanswer/questionai/internal/api/http"
	authmw "github.com/5minanswer/questionai/internal/auth/middleware"
	"github.com/5minanswer/questionai/internal/catalog"
	"github.com/5minanswer/questionai/internal/db/dbtest"
	"github.com/5minanswer/questionai/internal/generation"
	"github.com/5minanswer/questionai/internal/metrics"
	"github.com/5minanswer/questionai/internal/question"
	"github.com/5minanswer/questionai/internal/quiz"
	"github.com/5minanswer/questionai/internal/usage"
	"github.com/5minanswer/questionai/internal/user"
)

const adminEmail = "admin@example.com"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	dbh := dbtest.Open(t)
	users := user.NewStore(dbh).WithCost(bcrypt.MinCost)
	ledger := usage.NewLedger(dbh, usage.DefaultCap, time.UTC)
	questions := question.NewSQLStore(dbh)
	cat := catalog.Default()
	m := metrics.New()
	gen := generation.NewService(generation.Deps{
		DB: dbh, Ledger: ledger, Questions: questions, Catalog: cat, Metrics: m,
		Generator: generation.NewChatClient(generation.ClientConfig{}, nil),
	})
	h := api.NewRouter(api.Deps{
		DB: dbh, Auth: authmw.NewAuthService("test-secret", time.Hour),
		Users: users, Ledger: ledger, Generator: gen, Questions: questions, Quiz: quiz.NewEngine(dbh, questions),
		Catalog: cat, Metrics: m, AdminEmail: adminEmail, HistoryLimit: 20, Version: "test",
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rdr)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func signup(t *testing.T, base, email string) *client {
	t.Helper()
	c := &client{t: t, base: base}
	code, _ := c.do("POST", "/register", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusCreated, code)
	code, body := c.do("POST", "/login", map[string]string{"email": email, "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	c.token = body["access_token"].(string)
	return c
}

func TestPublicEndpoints(t *testing.T) {
	srv := newServer(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do("GET", "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "not_configured", body["generator"])

	code, body = c.do("GET", "/subjects", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["subjects"], 7)

	code, _ = c.do("GET", "/readyz", nil)
	assert.Equal(t, http.StatusOK, code)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndLoginErrors(t *testing.T) {
	srv := newServer(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do("POST", "/register", map[string]string{"email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "email must be a valid email", body["error"])

	code, _ = c.do("POST", "/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)

	signup(t, srv.URL, "asha@example.com")
	code, _ = c.do("POST", "/register", map[string]string{"email": "ASHA@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = c.do("POST", "/login", map[string]string{"email": "asha@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "incorrect email or password", body["error"])
}

func TestAuthGate(t *testing.T) {
	srv := newServer(t)
	c := &client{t: t, base: srv.URL}

	code, body := c.do("GET", "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing bearer token", body["error"])

	c.token = "abc.def.ghi"
	code, body = c.do("GET", "/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid token", body["error"])

	u := signup(t, srv.URL, "ravi@example.com")
	code, body = u.do("GET", "/profile", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ravi@example.com", body["email"])
	assert.Equal(t, "student", body["role"])
}

func TestGenerateEnforcesDailyCap(t *testing.T) {
	srv := newServer(t)
	u := signup(t, srv.URL, "meera@example.com")

	gen := map[string]any{"class_level": 10, "subject": "physics", "chapter": 1, "question_count": 10}
	code, body := u.do("POST", "/generate-from-chapter", gen)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 15.0, body["remaining_quota"])
	assert.Equal(t, "fallback", body["source"])
	assert.Len(t, body["questions"], 10)

	gen["question_count"] = 16
	code, body = u.do("POST", "/generate-from-chapter", gen)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, 15.0, body["remaining"])
	assert.True(t, strings.HasPrefix(body["error"].(string), "Daily limit reached: 10/25"))

	gen["question_count"] = 30
	gen["subject"] = "maths"
	code, body = u.do("POST", "/generate-from-chapter", gen)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "You cannot generate more than 25 questions per request.", body["error"])

	gen["subject"] = "astrology"
	gen["question_count"] = 1
	code, _ = u.do("POST", "/generate-from-chapter", gen)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	gen = map[string]any{"class_level": 10, "subject": "physics", "chapter": 1}
	code, body = u.do("POST", "/generate-from-chapter", gen)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "question_count is required", body["error"])

	code, body = u.do("GET", "/question-history?limit=5", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5.0, body["count"])
	assert.Len(t, body["questions"], 5)

	code, body = u.do("GET", "/my-usage", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 10.0, body["total_used_today"])
	subjects := body["subjects"].([]any)
	require.Len(t, subjects, 1)
	assert.Equal(t, "physics", subjects[0].(map[string]any)["subject"])
}

func TestQuizFlow(t *testing.T) {
	srv := newServer(t)
	u := signup(t, srv.URL, "kabir@example.com")

	code, body := u.do("POST", "/generate-from-chapter",
		map[string]any{"class_level": 9, "subject": "maths", "chapter": 2, "question_count": 4})
	require.Equal(t, http.StatusOK, code)
	qs := body["questions"].([]any)
	require.Len(t, qs, 4)

	answers := []map[string]string{}
	for i, q := range qs {
		sel := "Option A"
		if i == 3 {
			sel = "Option C"
		}
		answers = append(answers, map[string]string{"question_id": q.(map[string]any)["id"].(string), "selected_answer": sel})
	}
	answers = append(answers, map[string]string{"question_id": "not-a-question", "selected_answer": "Option A"})

	code, body = u.do("POST", "/submit-quiz", map[string]any{
		"class_level": 9, "subject": "maths", "chapter": 2, "answers": answers, "time_taken": 60,
	})
	require.Equal(t, http.StatusOK, code)
	res := body["result"].(map[string]any)
	assert.Equal(t, 75.0, res["score_percentage"])
	assert.Equal(t, 4.0, res["total_questions"])
	assert.Equal(t, 3.0, res["correct_answers"])
	assert.Equal(t, 1.0, res["wrong_answers"])
	assert.Len(t, res["responses"], 4)
	quizID := res["quiz_id"].(string)

	code, body = u.do("GET", "/performance-history", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["attempts"], 1)
	assert.Equal(t, 75.0, body["stats"].(map[string]any)["average_score"])

	code, body = u.do("GET", "/quiz-details/"+quizID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, quizID, body["quiz_id"])

	other := signup(t, srv.URL, "zoya@example.com")
	code, body = other.do("GET", "/quiz-details/"+quizID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "quiz attempt not found", body["error"])

	code, body = other.do("GET", "/performance-history", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["attempts"])
	assert.Equal(t, 0.0, body["stats"].(map[string]any)["average_score"])
}

func TestSubmitWithInlineQuestions(t *testing.T) {
	srv := newServer(t)
	u := signup(t, srv.URL, "inline@example.com")

	code, body := u.do("POST", "/submit-quiz", map[string]any{
		"subject": "physics",
		"questions": []map[string]any{
			{"id": "q1", "question": "one", "options": []string{"a", "b", "c", "d"}, "correct_answer": "a"},
		},
		"answers": []map[string]string{{"question_id": "q1", "selected_answer": "b"}},
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["result"].(map[string]any)["score_percentage"])
}

func TestSubmitSkipsMalformedEntries(t *testing.T) {
	srv := newServer(t)
	u := signup(t, srv.URL, "malformed@example.com")

	code, body := u.do("POST", "/submit-quiz", map[string]any{
		"subject": "physics",
		"questions": []map[string]any{
			{"id": "q1", "question": "one", "options": []string{"a", "b", "c", "d"}, "correct_answer": "a"},
			{"question": "no id", "options": []string{"a", "b", "c", "d"}, "correct_answer": "a"},
		},
		"answers": []map[string]string{
			{"question_id": "q1", "selected_answer": "a"},
			{"question_id": "", "selected_answer": "a"},
		},
	})
	require.Equal(t, http.StatusOK, code)
	res := body["result"].(map[string]any)
	assert.Equal(t, 1.0, res["total_questions"])
	assert.Equal(t, 1.0, res["correct_answers"])
	assert.Equal(t, 100.0, res["score_percentage"])
	assert.Len(t, res["responses"], 1)
}

func TestChangePassword(t *testing.T) {
	srv := newServer(t)
	u := signup(t, srv.URL, "pw@example.com")

	code, _ := u.do("POST", "/users/change-password", map[string]string{"old_password": "nope-nope", "new_password": "another1"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = u.do("POST", "/users/change-password", map[string]string{"old_password": "secret123", "new_password": "another1"})
	assert.Equal(t, http.StatusNoContent, code)

	c := &client{t: t, base: srv.URL}
	code, _ = c.do("POST", "/login", map[string]string{"email": "pw@example.com", "password": "another1"})
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminUsers(t *testing.T) {
	srv := newServer(t)
	student := signup(t, srv.URL, "student@example.com")
	admin := signup(t, srv.URL, adminEmail)

	code, _ := student.do("GET", "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := admin.do("GET", "/admin/users", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["users"], 2)
}
