package xetcd2

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_BuildsRequest(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, kvBody("get", "/foo", "bar", 7)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.Get(context.Background(), "/foo", GetOptions{})
	require.NoError(t, err)

	assert.Equal(t, ActionGet, resp.Data.Action)
	assert.Equal(t, "/foo", resp.Data.Node.Key)
	require.NotNil(t, resp.Data.Node.Value)
	assert.Equal(t, "bar", *resp.Data.Node.Value)

	reqs := d.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)

	u, perr := url.Parse(reqs[0].URL)
	require.NoError(t, perr)
	assert.Equal(t, "/v2/keys/foo", u.Path)
	// recursive 恒定发送，sorted/wait 仅在存在时发送
	assert.Equal(t, "false", u.Query().Get("recursive"))
	assert.False(t, u.Query().Has("sorted"))
	assert.False(t, u.Query().Has("wait"))
}

func TestGet_RecursiveSortedQuorum(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"action":"get","node":{"key":"/dir","dir":true}}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Get(context.Background(), "/dir", GetOptions{
		Recursive: true,
		Sort:      Bool(true),
		Quorum:    true,
	})
	require.NoError(t, err)

	u, perr := url.Parse(d.requests()[0].URL)
	require.NoError(t, perr)
	assert.Equal(t, "true", u.Query().Get("recursive"))
	assert.Equal(t, "true", u.Query().Get("sorted"))
	assert.Equal(t, "true", u.Query().Get("quorum"))
}

func TestGet_EmptyKey(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		t.Fatal("不应触达传输层")
		return nil, nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Get(context.Background(), "", GetOptions{})
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.Zero(t, d.callCount())
}

func TestSet_FormEncoding(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusCreated, kvBody("set", "/foo", "bar", 8)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Set(context.Background(), "/foo", "bar", 60)
	require.NoError(t, err)

	reqs := d.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].Header.Get("Content-Type"))

	form, perr := url.ParseQuery(reqs[0].Body)
	require.NoError(t, perr)
	assert.Equal(t, "bar", form.Get("value"))
	assert.Equal(t, "60", form.Get("ttl"))
	assert.False(t, form.Has("prevExist"))
}

func TestSet_ZeroTTLOmitted(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, kvBody("set", "/foo", "bar", 9)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Set(context.Background(), "/foo", "bar", 0)
	require.NoError(t, err)

	form, perr := url.ParseQuery(d.requests()[0].Body)
	require.NoError(t, perr)
	assert.False(t, form.Has("ttl"))
}

func TestCreate_SendsPrevExistFalse(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusCreated, kvBody("create", "/foo", "bar", 10)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.Create(context.Background(), "/foo", "bar", 0)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, resp.Data.Action)

	form, perr := url.ParseQuery(d.requests()[0].Body)
	require.NoError(t, perr)
	assert.Equal(t, "false", form.Get("prevExist"))
}

func TestCreateInOrder_UsesPost(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusCreated,
			kvBody("create", "/queue/00000000000000000001", "job", 11)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.CreateInOrder(context.Background(), "/queue", "job", 0)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, d.requests()[0].Method)
	assert.True(t, strings.HasPrefix(resp.Data.Node.Key, "/queue/"))
}

func TestUpdate_SendsPrevExistTrue(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, kvBody("update", "/foo", "baz", 12)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Update(context.Background(), "/foo", "baz", 0)
	require.NoError(t, err)

	form, perr := url.ParseQuery(d.requests()[0].Body)
	require.NoError(t, perr)
	assert.Equal(t, "true", form.Get("prevExist"))
}

func TestCreateDir_SendsDirTrue(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusCreated, `{"action":"create","node":{"key":"/dir","dir":true}}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.CreateDir(context.Background(), "/dir", 0)
	require.NoError(t, err)
	assert.True(t, resp.Data.Node.IsDir())

	form, perr := url.ParseQuery(d.requests()[0].Body)
	require.NoError(t, perr)
	assert.Equal(t, "true", form.Get("dir"))
	assert.Equal(t, "false", form.Get("prevExist"))
}

func TestDelete_QueryEncoding(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"action":"delete","node":{"key":"/foo","modifiedIndex":13}}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.Delete(context.Background(), "/foo", true)
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, resp.Data.Action)

	reqs := d.requests()
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	u, perr := url.Parse(reqs[0].URL)
	require.NoError(t, perr)
	assert.Equal(t, "true", u.Query().Get("recursive"))
	assert.Empty(t, reqs[0].Body, "删除选项走查询参数而非请求体")
}

func TestCompareAndSwap_Conditions(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, kvBody("compareAndSwap", "/foo", "new", 14)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.CompareAndSwap(context.Background(), "/foo", "new", 0, &Conditions{
		Value:         String("old"),
		ModifiedIndex: Uint64(13),
	})
	require.NoError(t, err)
	assert.Equal(t, ActionCompareAndSwap, resp.Data.Action)

	form, perr := url.ParseQuery(d.requests()[0].Body)
	require.NoError(t, perr)
	assert.Equal(t, "old", form.Get("prevValue"))
	assert.Equal(t, "13", form.Get("prevIndex"))
	assert.Equal(t, "new", form.Get("value"))
}

func TestCompareAndSwap_EmptyConditions(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		t.Fatal("空条件不应触达传输层")
		return nil, nil
	}}
	c := newTestClient(t, []string{"http://node1:2379", "http://node2:2379"}, d)

	_, err := c.CompareAndSwap(context.Background(), "/foo", "new", 0, &Conditions{})
	assert.ErrorIs(t, err, ErrInvalidConditions)
	assert.True(t, IsInvalidConditions(err))
	assert.Zero(t, d.callCount())

	_, err = c.CompareAndSwap(context.Background(), "/foo", "new", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidConditions)
	assert.Zero(t, d.callCount())
}

func TestCompareAndDelete_EmptyConditions(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		t.Fatal("空条件不应触达传输层")
		return nil, nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.CompareAndDelete(context.Background(), "/foo", nil)
	assert.ErrorIs(t, err, ErrInvalidConditions)
	assert.Zero(t, d.callCount())
}

func TestCompareAndDelete_QueryConditions(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK,
			`{"action":"compareAndDelete","node":{"key":"/foo","modifiedIndex":15}}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.CompareAndDelete(context.Background(), "/foo", &Conditions{Value: String("old")})
	require.NoError(t, err)

	u, perr := url.Parse(d.requests()[0].URL)
	require.NoError(t, perr)
	assert.Equal(t, "old", u.Query().Get("prevValue"))
	assert.False(t, u.Query().Has("prevIndex"))
}

func TestKV_FailoverFirstSuccessWins(t *testing.T) {
	d := &stubDoer{respond: func(req *http.Request) (*http.Response, error) {
		switch req.URL.Host {
		case "node3:2379":
			return jsonResponse(http.StatusOK, kvBody("get", "/foo", "bar", 7)), nil
		default:
			return nil, errors.New("connection refused")
		}
	}}
	c := newTestClient(t, []string{
		"http://node1:2379",
		"http://node2:2379",
		"http://node3:2379",
	}, d)

	resp, err := c.Get(context.Background(), "/foo", GetOptions{})
	require.NoError(t, err)
	require.NotNil(t, resp.Data.Node.Value)
	assert.Equal(t, "bar", *resp.Data.Node.Value)

	reqs := d.requests()
	require.Len(t, reqs, 3, "前两个端点失败后才尝试第三个")
	assert.Contains(t, reqs[0].URL, "node1")
	assert.Contains(t, reqs[1].URL, "node2")
	assert.Contains(t, reqs[2].URL, "node3")
}

func TestKV_AllEndpointsFail(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	c := newTestClient(t, []string{"http://node1:2379", "http://node2:2379"}, d)

	_, err := c.Get(context.Background(), "/foo", GetOptions{})
	require.Error(t, err)

	var clusterErr *ClusterError
	require.ErrorAs(t, err, &clusterErr)
	assert.Len(t, clusterErr.Errors, 2)
	assert.Equal(t, 2, d.callCount(), "每个端点恰好尝试一次")
}

func TestKV_APIErrorThroughClusterError(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound,
			`{"errorCode":100,"message":"Key not found","cause":"/foo","index":20}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Get(context.Background(), "/foo", GetOptions{})
	require.Error(t, err)

	assert.True(t, IsKeyNotFound(err), "错误码经 ClusterError 解包后仍可判断")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeKeyNotFound, apiErr.Code)
	assert.Equal(t, "/foo", apiErr.Cause)
	assert.Equal(t, uint64(20), apiErr.Index)
}

func TestKV_TestFailedAcrossAllEndpoints(t *testing.T) {
	// 条件不匹配是集群的一致决定，所有端点都会拒绝
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusPreconditionFailed,
			`{"errorCode":101,"message":"Compare failed","cause":"[old != cur]"}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379", "http://node2:2379"}, d)

	_, err := c.CompareAndSwap(context.Background(), "/foo", "new", 0,
		&Conditions{Value: String("old")})
	require.Error(t, err)
	assert.True(t, IsTestFailed(err))

	var clusterErr *ClusterError
	require.ErrorAs(t, err, &clusterErr)
	assert.Len(t, clusterErr.Errors, 2)
	for _, endpointErr := range clusterErr.Errors {
		assert.True(t, IsTestFailed(endpointErr))
	}
}

func TestKV_DecodeError(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not-json`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Get(context.Background(), "/foo", GetOptions{})
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestKV_BasicAuthHeader(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, kvBody("get", "/foo", "bar", 7)), nil
	}}

	cfg := DefaultConfig()
	cfg.Endpoints = []string{"http://node1:2379"}
	cfg.Username = "root"
	cfg.Password = "secret"
	c, err := NewClient(cfg, WithHTTPClient(d))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/foo", GetOptions{})
	require.NoError(t, err)

	auth := d.requests()[0].Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "Basic "))
}

func TestKV_KeyWithoutLeadingSlash(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, kvBody("get", "/foo", "bar", 7)), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	_, err := c.Get(context.Background(), "foo", GetOptions{})
	require.NoError(t, err)

	u, perr := url.Parse(d.requests()[0].URL)
	require.NoError(t, perr)
	assert.Equal(t, "/v2/keys/foo", u.Path)
}

func TestKV_ClusterInfoFromHeaders(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponseWithHeaders(http.StatusOK, kvBody("get", "/foo", "bar", 7), map[string]string{
			"X-Etcd-Cluster-Id": "abcdef0123456789",
			"X-Etcd-Index":      "42",
			"X-Raft-Index":      "100",
			"X-Raft-Term":       "7",
		}), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.Get(context.Background(), "/foo", GetOptions{})
	require.NoError(t, err)

	assert.Equal(t, "abcdef0123456789", resp.Cluster.ClusterID)
	assert.Equal(t, uint64(42), resp.Cluster.EtcdIndex)
	assert.Equal(t, uint64(100), resp.Cluster.RaftIndex)
	assert.Equal(t, uint64(7), resp.Cluster.RaftTerm)
}

func TestKV_PrevNode(t *testing.T) {
	d := &stubDoer{respond: func(_ *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK,
			`{"action":"set","node":{"key":"/foo","value":"new","modifiedIndex":9},`+
				`"prevNode":{"key":"/foo","value":"old","modifiedIndex":8}}`), nil
	}}
	c := newTestClient(t, []string{"http://node1:2379"}, d)

	resp, err := c.Set(context.Background(), "/foo", "new", 0)
	require.NoError(t, err)

	require.NotNil(t, resp.Data.PrevNode)
	assert.Equal(t, "old", *resp.Data.PrevNode.Value)
}
