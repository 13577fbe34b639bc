package xetcd2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Doer 执行单个 HTTP 请求。*http.Client 天然满足该接口。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// request 一次操作的传输无关描述。
// 同一个 request 会按端点顺序展开为多个 http.Request，
// 因此自身不持有任何端点信息。
type request struct {
	method string
	// path 以 "/" 开头的绝对路径，如 "/v2/keys/foo"。
	path  string
	query url.Values
	// form 非空时编码为 application/x-www-form-urlencoded 请求体。
	form url.Values
	// jsonBody 非 nil 时序列化为 application/json 请求体。
	// 与 form 互斥，members 与 auth 接口使用。
	jsonBody any
}

// build 针对指定端点构造 http.Request，并注入 Basic 认证。
func (r *request) build(ctx context.Context, base *url.URL, username, password string) (*http.Request, error) {
	u := *base
	u.Path = strings.TrimSuffix(u.Path, "/") + r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body *bytes.Reader
	contentType := ""
	switch {
	case r.jsonBody != nil:
		data, err := json.Marshal(r.jsonBody)
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("encode request body: %w", err)}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case len(r.form) > 0:
		body = bytes.NewReader([]byte(r.form.Encode()))
		contentType = "application/x-www-form-urlencoded"
	default:
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if username != "" {
		req.SetBasicAuth(username, password)
	}
	return req, nil
}

// send 针对单个端点发出请求。
// 启用熔断时经由该端点的熔断器；传输失败原样返回（归类为传输错误）。
func (c *Client) send(ctx context.Context, base *url.URL, r *request) (*http.Response, error) {
	req, err := r.build(ctx, base, c.cfg.Username, c.cfg.Password)
	if err != nil {
		return nil, err
	}
	if c.breakers != nil {
		return c.breakers.do(base.String(), func() (*http.Response, error) {
			return c.httpClient.Do(req)
		})
	}
	return c.httpClient.Do(req)
}
