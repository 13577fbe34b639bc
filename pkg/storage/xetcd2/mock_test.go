package xetcd2

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordedRequest 记录单次请求的关键信息，便于断言。
type recordedRequest struct {
	Method string
	URL    string
	Body   string
	Header http.Header
}

// stubDoer 桩传输层：记录每次请求并按 respond 回调返回响应。
type stubDoer struct {
	mu      sync.Mutex
	reqs    []recordedRequest
	respond func(req *http.Request) (*http.Response, error)
}

func (d *stubDoer) Do(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(data)
	}

	d.mu.Lock()
	d.reqs = append(d.reqs, recordedRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Body:   body,
		Header: req.Header.Clone(),
	})
	d.mu.Unlock()

	return d.respond(req)
}

func (d *stubDoer) requests() []recordedRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]recordedRequest(nil), d.reqs...)
}

func (d *stubDoer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.reqs)
}

// jsonResponse 构造带 JSON 响应体的 *http.Response。
func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// jsonResponseWithHeaders 同 jsonResponse，并附带响应头。
func jsonResponseWithHeaders(status int, body string, headers map[string]string) *http.Response {
	resp := jsonResponse(status, body)
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

// newTestClient 以桩传输层创建客户端。
func newTestClient(t *testing.T, endpoints []string, d Doer, opts ...Option) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Endpoints = endpoints

	opts = append([]Option{WithHTTPClient(d)}, opts...)
	c, err := NewClient(cfg, opts...)
	require.NoError(t, err)
	return c
}

// kvBody 构造典型的 KV 成功响应体。
func kvBody(action, key, value string, modifiedIndex uint64) string {
	return fmt.Sprintf(
		`{"action":%q,"node":{"key":%q,"value":%q,"modifiedIndex":%d,"createdIndex":%d}}`,
		action, key, value, modifiedIndex, modifiedIndex)
}
