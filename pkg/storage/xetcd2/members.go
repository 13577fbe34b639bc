package xetcd2

import (
	"context"
	"net/http"
	"net/url"
)

// membersPrefix 成员管理 API 的路径前缀。
const membersPrefix = "/v2/members"

// Member 集群中的一个 etcd 成员。
type Member struct {
	// ID 成员的内部标识。
	ID string `json:"id"`

	// Name 成员的可读名称。
	Name string `json:"name"`

	// PeerURLs 成员对外暴露的 peer API 地址。
	PeerURLs []string `json:"peerURLs"`

	// ClientURLs 成员对外暴露的 client API 地址。
	ClientURLs []string `json:"clientURLs"`
}

// peerURLs POST /v2/members 与 PUT /v2/members/:id 的请求体。
type peerURLs struct {
	PeerURLs []string `json:"peerURLs"`
}

// memberList GET /v2/members 的响应体。
type memberList struct {
	Members []Member `json:"members"`
}

// ListMembers 列出集群全部成员。
func (c *Client) ListMembers(ctx context.Context) (*Response[[]Member], error) {
	r := &request{
		method: http.MethodGet,
		path:   membersPrefix,
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[[]Member], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		list, err := decodeJSON[memberList](resp, http.StatusOK)
		if err != nil {
			return nil, err
		}
		return &Response[[]Member]{Data: list.Data.Members, Cluster: list.Cluster}, nil
	})
}

// AddMember 向集群添加新成员。
// peerURLs 为新成员的 peer API 地址，成功时服务端返回 201。
func (c *Client) AddMember(ctx context.Context, urls []string) (*Response[struct{}], error) {
	r := &request{
		method:   http.MethodPost,
		path:     membersPrefix,
		jsonBody: peerURLs{PeerURLs: urls},
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[struct{}], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeEmpty(resp, http.StatusCreated)
	})
}

// RemoveMember 从集群移除成员。id 为成员的内部标识，成功时服务端返回 204。
func (c *Client) RemoveMember(ctx context.Context, id string) (*Response[struct{}], error) {
	r := &request{
		method: http.MethodDelete,
		path:   membersPrefix + "/" + id,
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[struct{}], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeEmpty(resp, http.StatusNoContent)
	})
}

// UpdateMember 更新成员的 peer API 地址，成功时服务端返回 204。
func (c *Client) UpdateMember(ctx context.Context, id string, urls []string) (*Response[struct{}], error) {
	r := &request{
		method:   http.MethodPut,
		path:     membersPrefix + "/" + id,
		jsonBody: peerURLs{PeerURLs: urls},
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[struct{}], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeEmpty(resp, http.StatusNoContent)
	})
}
