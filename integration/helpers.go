package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	qt "github.com/frankban/quicktest"
	"github.com/jhchabran/qanda"
	"github.com/jhchabran/qanda/sqlstore"
	"github.com/rs/zerolog"
)

const testServerHost = "localhost:4001"

// testingLogWriter is an output target for zerolog which will print on the testing logger.
type testingLogWriter struct {
	c *qt.C
}

// Write outputs on the passed bytes on the test logger
func (l *testingLogWriter) Write(p []byte) (n int, err error) {
	str := string(p[0 : len(p)-1]) // drop the final \n
	l.c.Log(str)
	return len(p), nil
}

// A struct to hold the server and its components.
// Provides a few helpers for convenience.
type testContext struct {
	c          *qt.C
	server     *qanda.Server
	testServer *httptest.Server
	store      *sqlstore.Store
}

// newTestContext creates a server instance with its component initialized for integration testing.
// Each test context gets its own in-memory database.
func newTestContext(c *qt.C) *testContext {
	tc := testContext{c: c}

	w := testingLogWriter{c}
	output := zerolog.ConsoleWriter{Out: &w, NoColor: true}
	logger := zerolog.New(output)

	tc.store = sqlstore.New(sqlstore.DriverSQLite, ":memory:")
	tc.server = qanda.NewServer(&qanda.ServerConfig{Addr: testServerHost}, logger, tc.store)
	tc.testServer = httptest.NewServer(tc.server)

	return &tc
}

// url returns an url to the test server based on the given path
func (tc *testContext) url(path string) string {
	return tc.testServer.URL + path
}

// prepareServer boots up the server and sets up its teardown for the current test
func (tc *testContext) prepareServer() {
	tc.c.Assert(tc.server.Prepare(), qt.IsNil, qt.Commentf("couldn't prepare the server"))
	tc.c.Assert(tc.store.EnsureSchema(context.Background()), qt.IsNil)

	tc.c.Cleanup(func() {
		// kill the server
		tc.testServer.Close()
		tc.store.Close()
	})
}

// questionPath returns the path of a question, followed by the given segments.
func questionPath(id int64, segments ...string) string {
	return strings.Join(append([]string{fmt.Sprintf("/questions/%d", id)}, segments...), "/")
}

// answerPath returns the path of an answer, followed by the given segments.
func answerPath(id int64, segments ...string) string {
	return strings.Join(append([]string{fmt.Sprintf("/answers/%d", id)}, segments...), "/")
}

// response is a decoded JSON response of the API.
type response struct {
	status  int
	header  http.Header
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeData decodes the data field of the response into v.
func (r *response) decodeData(c *qt.C, v interface{}) {
	c.Assert(r.Data, qt.Not(qt.HasLen), 0, qt.Commentf("response has no data"))
	c.Assert(json.Unmarshal(r.Data, v), qt.IsNil)
}

// do sends a request to the test server, encoding body as JSON if not nil.
func (tc *testContext) do(method string, path string, body interface{}) *response {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		tc.c.Assert(err, qt.IsNil)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, tc.url(path), reader)
	tc.c.Assert(err, qt.IsNil)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return tc.send(req)
}

func (tc *testContext) send(req *http.Request) *response {
	resp, err := http.DefaultClient.Do(req)
	tc.c.Assert(err, qt.IsNil)
	defer resp.Body.Close()

	res := &response{status: resp.StatusCode, header: resp.Header}
	err = json.NewDecoder(resp.Body).Decode(res)
	tc.c.Assert(err, qt.IsNil, qt.Commentf("%s %s did not answer JSON", req.Method, req.URL.Path))

	return res
}

// createQuestion creates a question through the API and returns it.
func (tc *testContext) createQuestion(title string, description string, category string) *qanda.Question {
	res := tc.do("POST", "/questions", map[string]string{
		"title":       title,
		"description": description,
		"category":    category,
	})
	tc.c.Assert(res.status, qt.Equals, http.StatusCreated)

	var question qanda.Question
	res.decodeData(tc.c, &question)
	return &question
}

// createAnswer posts an answer through the API and returns it.
func (tc *testContext) createAnswer(questionID int64, content string) *qanda.Answer {
	res := tc.do("POST", questionPath(questionID, "answers"), map[string]string{"content": content})
	tc.c.Assert(res.status, qt.Equals, http.StatusCreated)

	var answers []*qanda.Answer
	res.decodeData(tc.c, &answers)
	tc.c.Assert(answers, qt.HasLen, 1)
	return answers[0]
}
