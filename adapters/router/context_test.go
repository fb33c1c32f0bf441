package exportrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/goliatone/go-router"
)

// baseContext aliases router.Context so the embedded field does not clash
// with the Context method below.
type baseContext = router.Context

// testContext implements the part of router.Context the export handler
// touches. Any other method panics through the nil embedded interface.
type testContext struct {
	baseContext
	method        string
	path          string
	query         map[string]string
	headers       map[string]string
	ctx           context.Context
	recorder      *httptest.ResponseRecorder
	statusWritten bool
	sendCalled    bool
}

func newTestContext(method, path string, headers map[string]string, query map[string]string) *testContext {
	if headers == nil {
		headers = make(map[string]string)
	}
	if query == nil {
		query = make(map[string]string)
	}
	return &testContext{
		method:   method,
		path:     path,
		query:    query,
		headers:  headers,
		ctx:      context.Background(),
		recorder: httptest.NewRecorder(),
	}
}

func (c *testContext) Context() context.Context { return c.ctx }

func (c *testContext) Method() string { return c.method }

func (c *testContext) Path() string { return c.path }

func (c *testContext) Header(name string) string { return c.headers[name] }

func (c *testContext) Query(name string, defaultValue ...string) string {
	if val, ok := c.query[name]; ok {
		return val
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) Queries() map[string]string { return c.query }

func (c *testContext) SetHeader(key, val string) router.Context {
	c.recorder.Header().Set(key, val)
	return c
}

func (c *testContext) Status(code int) router.Context {
	c.writeHeader(code)
	return c
}

func (c *testContext) Send(body []byte) error {
	c.sendCalled = true
	c.writeHeader(http.StatusOK)
	_, err := c.recorder.Write(body)
	return err
}

func (c *testContext) JSON(code int, v any) error {
	c.recorder.Header().Set("Content-Type", "application/json")
	c.writeHeader(code)
	return json.NewEncoder(c.recorder).Encode(v)
}

// writeHeader keeps the first status, like a real response writer.
func (c *testContext) writeHeader(code int) {
	if c.statusWritten {
		return
	}
	c.statusWritten = true
	c.recorder.WriteHeader(code)
}

// testHTTPContext adds the net/http request so QueryValues reads the raw URL.
type testHTTPContext struct {
	*testContext
	req *http.Request
}

func newTestHTTPContext(method, target string, headers map[string]string) *testHTTPContext {
	req := httptest.NewRequest(method, target, nil)
	query := make(map[string]string)
	for key := range req.URL.Query() {
		query[key] = req.URL.Query().Get(key)
	}
	base := newTestContext(method, req.URL.Path, headers, query)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	base.ctx = req.Context()
	return &testHTTPContext{testContext: base, req: req}
}

func (c *testHTTPContext) Request() *http.Request { return c.req }

func (c *testHTTPContext) Response() http.ResponseWriter { return c.recorder }

var (
	_ router.Context     = (*testContext)(nil)
	_ router.HTTPContext = (*testHTTPContext)(nil)
)
