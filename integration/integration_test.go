package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/jhchabran/qanda"
)

func TestServer(t *testing.T) {
	c := qt.New(t)

	c.Run("GET /test", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		resp, err := http.Get(tc.url("/test"))
		c.Assert(err, qt.IsNil)
		defer resp.Body.Close()

		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		var body string
		c.Assert(json.NewDecoder(resp.Body).Decode(&body), qt.IsNil)
		c.Assert(body, qt.Equals, "Server API is working 🚀")
	})

	c.Run("unknown routes answer JSON", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		res := tc.do("GET", "/nowhere", nil)
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
		c.Assert(res.Message, qt.Equals, "Not Found")

		res = tc.do("PATCH", "/questions", nil)
		c.Assert(res.status, qt.Equals, http.StatusMethodNotAllowed)
		c.Assert(res.Message, qt.Equals, "Method Not Allowed")

		res = tc.do("GET", "/questions/1/upvote", nil)
		c.Assert(res.status, qt.Equals, http.StatusMethodNotAllowed)
	})

	c.Run("request ids", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		res := tc.do("GET", "/questions", nil)
		c.Assert(res.header.Get("X-Request-Id"), qt.Not(qt.Equals), "")

		req, err := http.NewRequest("GET", tc.url("/questions"), nil)
		c.Assert(err, qt.IsNil)
		req.Header.Set("X-Request-Id", "abc-123")
		res = tc.send(req)
		c.Assert(res.header.Get("X-Request-Id"), qt.Equals, "abc-123")
	})
}

func TestQuestions(t *testing.T) {
	c := qt.New(t)

	c.Run("create then show", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		created := tc.createQuestion("T", "D", "C")
		c.Assert(created.ID, qt.Equals, int64(1))
		c.Assert(created.Title, qt.Equals, "T")
		c.Assert(created.CreatedAt.IsZero(), qt.IsFalse)

		res := tc.do("GET", questionPath(created.ID), nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully retrieved the question")

		var fields map[string]interface{}
		res.decodeData(c, &fields)
		c.Assert(fields["title"], qt.Equals, "T")
		c.Assert(fields["description"], qt.Equals, "D")
		c.Assert(fields["category"], qt.Equals, "C")
		// the tally only comes with votes
		_, ok := fields["upvotes"]
		c.Assert(ok, qt.IsFalse)
	})

	c.Run("missing fields are rejected and nothing is created", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		for _, body := range []map[string]string{
			{"description": "D", "category": "C"},
			{"title": "T", "category": "C"},
			{"title": "T", "description": "D"},
			{},
		} {
			res := tc.do("POST", "/questions", body)
			c.Assert(res.status, qt.Equals, http.StatusBadRequest)
			c.Assert(res.Message, qt.Equals, "Bad Request: Missing or invalid request data")
		}

		res := tc.do("GET", "/questions", nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		var questions []*qanda.Question
		res.decodeData(c, &questions)
		c.Assert(questions, qt.HasLen, 0)
	})

	c.Run("bodies which are not JSON are ignored", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		req, err := http.NewRequest("POST", tc.url("/questions"), strings.NewReader(`{"title":"T","description":"D","category":"C"}`))
		c.Assert(err, qt.IsNil)
		req.Header.Set("Content-Type", "text/plain")

		res := tc.send(req)
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)
	})

	c.Run("malformed JSON", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		req, err := http.NewRequest("POST", tc.url("/questions"), strings.NewReader(`{"title":`))
		c.Assert(err, qt.IsNil)
		req.Header.Set("Content-Type", "application/json")

		res := tc.send(req)
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)
	})

	c.Run("list and filter", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		tc.createQuestion("T", "D", "C")
		tc.createQuestion("T", "D2", "other")
		tc.createQuestion("U", "D3", "C")

		res := tc.do("GET", "/questions", nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully retrieved the list of questions.")
		var all []*qanda.Question
		res.decodeData(c, &all)
		c.Assert(all, qt.HasLen, 3)

		res = tc.do("GET", "/questions?title=T&category=C", nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully retrieved the questions")
		var filtered []*qanda.Question
		res.decodeData(c, &filtered)
		c.Assert(filtered, qt.HasLen, 1)
		c.Assert(filtered[0].Description, qt.Equals, "D")

		res = tc.do("GET", "/questions?title=nope&category=C", nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		var none []*qanda.Question
		res.decodeData(c, &none)
		c.Assert(none, qt.HasLen, 0)
	})

	c.Run("filtering on a single field is rejected", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		res := tc.do("GET", "/questions?title=T", nil)
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)
		c.Assert(res.Message, qt.Equals, "Bad Request: Invalid query parameters.")

		res = tc.do("GET", "/questions?category=C", nil)
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)
	})

	c.Run("missing question", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		for _, path := range []string{"/questions/999", "/questions/abc", "/questions/0", "/questions/-1"} {
			res := tc.do("GET", path, nil)
			c.Assert(res.status, qt.Equals, http.StatusNotFound, qt.Commentf("%s", path))
			c.Assert(res.Message, qt.Equals, "Not Found: Question not found.")
			c.Assert(res.Data, qt.HasLen, 0)
		}
	})

	c.Run("update", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		q := tc.createQuestion("T", "D", "C")

		res := tc.do("PUT", questionPath(q.ID), map[string]string{"title": "T2", "description": "D2", "category": "C2"})
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully updated the question")
		var updated qanda.Question
		res.decodeData(c, &updated)
		c.Assert(updated.ID, qt.Equals, q.ID)
		c.Assert(updated.Title, qt.Equals, "T2")

		res = tc.do("GET", questionPath(q.ID), nil)
		var shown qanda.Question
		res.decodeData(c, &shown)
		c.Assert(shown.Title, qt.Equals, "T2")
		c.Assert(shown.Description, qt.Equals, "D2")
		c.Assert(shown.Category, qt.Equals, "C2")

		res = tc.do("PUT", questionPath(q.ID), map[string]string{"title": "T3"})
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)

		res = tc.do("PUT", questionPath(999), map[string]string{"title": "T", "description": "D", "category": "C"})
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
	})

	c.Run("delete removes the question and its answers", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		q := tc.createQuestion("T", "D", "C")
		other := tc.createQuestion("U", "D", "C")
		tc.createAnswer(q.ID, "first")
		tc.createAnswer(q.ID, "second")
		kept := tc.createAnswer(other.ID, "kept")

		res := tc.do("DELETE", questionPath(q.ID), nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "Question deleted successfully")

		res = tc.do("GET", questionPath(q.ID), nil)
		c.Assert(res.status, qt.Equals, http.StatusNotFound)

		answers, err := tc.store.ListAnswers(context.Background(), q.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(answers, qt.HasLen, 0)

		answers, err = tc.store.ListAnswers(context.Background(), other.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(answers, qt.HasLen, 1)
		c.Assert(answers[0].ID, qt.Equals, kept.ID)

		res = tc.do("DELETE", questionPath(q.ID), nil)
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
		c.Assert(res.Message, qt.Equals, "Not Found: Question not found.")
	})
}

func TestAnswers(t *testing.T) {
	c := qt.New(t)

	c.Run("create and list", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		q := tc.createQuestion("T", "D", "C")

		res := tc.do("GET", questionPath(q.ID, "answers"), nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		var empty []*qanda.Answer
		res.decodeData(c, &empty)
		c.Assert(empty, qt.HasLen, 0)

		a := tc.createAnswer(q.ID, "Because.")
		c.Assert(a.QuestionID, qt.Equals, q.ID)
		c.Assert(a.Content, qt.Equals, "Because.")

		res = tc.do("GET", questionPath(q.ID, "answers"), nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		var answers []*qanda.Answer
		res.decodeData(c, &answers)
		c.Assert(answers, qt.HasLen, 1)
		c.Assert(answers[0].ID, qt.Equals, a.ID)
	})

	c.Run("missing question", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		res := tc.do("GET", questionPath(42, "answers"), nil)
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
		c.Assert(res.Message, qt.Equals, "Not Found: Question not found.")

		res = tc.do("POST", questionPath(42, "answers"), map[string]string{"content": "hello"})
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
	})

	c.Run("content length", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		q := tc.createQuestion("T", "D", "C")

		res := tc.do("POST", questionPath(q.ID, "answers"), map[string]string{"content": strings.Repeat("a", 301)})
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)

		res = tc.do("POST", questionPath(q.ID, "answers"), map[string]string{"content": ""})
		c.Assert(res.status, qt.Equals, http.StatusBadRequest)

		answers, err := tc.store.ListAnswers(context.Background(), q.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(answers, qt.HasLen, 0)

		tc.createAnswer(q.ID, strings.Repeat("a", 300))
		tc.createAnswer(q.ID, strings.Repeat("é", 300))
	})
}

func TestVotes(t *testing.T) {
	c := qt.New(t)

	c.Run("upvote a fresh question", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		q := tc.createQuestion("T", "D", "C")
		c.Assert(q.ID, qt.Equals, int64(1))

		res := tc.do("POST", "/questions/1/upvote", nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully upvoted the question.")

		var voted qanda.QuestionWithTally
		res.decodeData(c, &voted)
		c.Assert(voted.ID, qt.Equals, int64(1))
		c.Assert(voted.Title, qt.Equals, "T")
		c.Assert(voted.Upvotes, qt.Equals, int64(1))
		c.Assert(voted.Downvotes, qt.Equals, int64(0))

		res = tc.do("GET", "/questions/1", nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		var shown qanda.Question
		res.decodeData(c, &shown)
		c.Assert(shown.Title, qt.Equals, "T")
		c.Assert(shown.Description, qt.Equals, "D")
		c.Assert(shown.Category, qt.Equals, "C")
	})

	c.Run("tallies count every vote", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		mixed := tc.createQuestion("T", "D", "C")
		tc.do("POST", questionPath(mixed.ID, "upvote"), nil)
		res := tc.do("POST", questionPath(mixed.ID, "downvote"), nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully downvoted the question.")
		var voted qanda.QuestionWithTally
		res.decodeData(c, &voted)
		c.Assert(voted.Tally, qt.Equals, qanda.Tally{Upvotes: 1, Downvotes: 1})

		popular := tc.createQuestion("U", "D", "C")
		for i := 0; i < 3; i++ {
			res = tc.do("POST", questionPath(popular.ID, "upvote"), nil)
			c.Assert(res.status, qt.Equals, http.StatusOK)
		}
		res.decodeData(c, &voted)
		c.Assert(voted.Tally, qt.Equals, qanda.Tally{Upvotes: 3, Downvotes: 0})
	})

	c.Run("voting on a missing question", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		res := tc.do("POST", questionPath(7, "upvote"), nil)
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
		c.Assert(res.Message, qt.Equals, "Not Found: Question not found.")

		tally, err := tc.store.QuestionTally(context.Background(), 7)
		c.Assert(err, qt.IsNil)
		c.Assert(tally, qt.Equals, qanda.Tally{})
	})

	c.Run("answers", func(c *qt.C) {
		tc := newTestContext(c)
		tc.prepareServer()

		q := tc.createQuestion("T", "D", "C")
		a := tc.createAnswer(q.ID, "Because.")

		tc.do("POST", answerPath(a.ID, "upvote"), nil)
		tc.do("POST", answerPath(a.ID, "upvote"), nil)
		res := tc.do("POST", answerPath(a.ID, "downvote"), nil)
		c.Assert(res.status, qt.Equals, http.StatusOK)
		c.Assert(res.Message, qt.Equals, "OK: Successfully downvoted the answer.")

		var voted qanda.AnswerWithTally
		res.decodeData(c, &voted)
		c.Assert(voted.ID, qt.Equals, a.ID)
		c.Assert(voted.Content, qt.Equals, "Because.")
		c.Assert(voted.Tally, qt.Equals, qanda.Tally{Upvotes: 2, Downvotes: 1})

		// question and answer tallies are independent
		tally, err := tc.store.QuestionTally(context.Background(), q.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(tally, qt.Equals, qanda.Tally{})

		res = tc.do("POST", answerPath(99, "upvote"), nil)
		c.Assert(res.status, qt.Equals, http.StatusNotFound)
		c.Assert(res.Message, qt.Equals, "Not Found: Answer not found.")
	})
}
