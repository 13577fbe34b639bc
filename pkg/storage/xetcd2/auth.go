package xetcd2

import (
	"context"
	"net/http"
	"net/url"
)

// authPrefix 认证与授权 API 的路径前缀。
const authPrefix = "/v2/auth"

// AuthChange 启用/禁用认证系统的结果。
type AuthChange int

const (
	// AuthUnchanged 认证系统已处于目标状态（服务端返回 409）。
	AuthUnchanged AuthChange = iota

	// AuthChanged 认证系统状态成功切换。
	AuthChanged
)

// authStatus GET /v2/auth/enable 的响应体。
type authStatus struct {
	Enabled bool `json:"enabled"`
}

// User 已存在的用户及其被授予的角色名。
type User struct {
	// Name 用户名。
	Name string `json:"user"`

	// Roles 被授予的角色名列表。
	Roles []string `json:"roles"`
}

// UserDetail 已存在的用户及其角色详情。
type UserDetail struct {
	// Name 用户名。
	Name string `json:"user"`

	// Roles 被授予的角色详情。
	Roles []Role `json:"roles"`
}

// userList GET /v2/auth/users 的响应体。服务端在无用户时返回 null。
type userList struct {
	Users []UserDetail `json:"users"`
}

// NewUser 创建用户的参数。
type NewUser struct {
	// Name 用户名。
	Name string `json:"user"`

	// Password 密码。
	Password string `json:"password"`

	// Roles 初始授予的角色名，可为空。
	Roles []string `json:"roles,omitempty"`
}

// UserUpdate 更新用户的参数。零值字段不出现在请求体中。
type UserUpdate struct {
	// Name 用户名。
	Name string `json:"user"`

	// Password 新密码，空字符串表示不修改。
	Password string `json:"password,omitempty"`

	// Grant 授予的角色名。
	Grant []string `json:"grant,omitempty"`

	// Revoke 撤销的角色名。
	Revoke []string `json:"revoke,omitempty"`
}

// AddRole 追加初始授予的角色名，返回自身以便链式调用。
func (u *NewUser) AddRole(role string) *NewUser {
	u.Roles = append(u.Roles, role)
	return u
}

// SetPassword 设置新密码，返回自身以便链式调用。
func (u *UserUpdate) SetPassword(password string) *UserUpdate {
	u.Password = password
	return u
}

// GrantRole 追加授予的角色名，返回自身以便链式调用。
func (u *UserUpdate) GrantRole(role string) *UserUpdate {
	u.Grant = append(u.Grant, role)
	return u
}

// RevokeRole 追加撤销的角色名，返回自身以便链式调用。
func (u *UserUpdate) RevokeRole(role string) *UserUpdate {
	u.Revoke = append(u.Revoke, role)
	return u
}

// Role 授权角色及其权限。
type Role struct {
	// Name 角色名。
	Name string `json:"role"`

	// Permissions 授予该角色的权限。
	Permissions Permissions `json:"permissions"`
}

// GrantKVReadPermission 授予键或前缀（如 "/foo/*"）的读权限，
// 返回自身以便链式调用。
func (r *Role) GrantKVReadPermission(keyOrPrefix string) *Role {
	r.Permissions.KV.Read = append(r.Permissions.KV.Read, keyOrPrefix)
	return r
}

// GrantKVWritePermission 授予键或前缀的写权限，返回自身以便链式调用。
func (r *Role) GrantKVWritePermission(keyOrPrefix string) *Role {
	r.Permissions.KV.Write = append(r.Permissions.KV.Write, keyOrPrefix)
	return r
}

// KVReadPermissions 返回允许读取的键或前缀。
func (r *Role) KVReadPermissions() []string {
	return r.Permissions.KV.Read
}

// KVWritePermissions 返回允许写入的键或前缀。
func (r *Role) KVWritePermissions() []string {
	return r.Permissions.KV.Write
}

// roleList GET /v2/auth/roles 的响应体。服务端在无角色时返回 null。
type roleList struct {
	Roles []Role `json:"roles"`
}

// RoleUpdate 更新角色的参数。零值字段不出现在请求体中。
type RoleUpdate struct {
	// Name 角色名。
	Name string `json:"role"`

	// Grant 新增的权限。
	Grant *Permissions `json:"grant,omitempty"`

	// Revoke 移除的权限。
	Revoke *Permissions `json:"revoke,omitempty"`
}

// GrantKVReadPermission 追加要授予的读权限，返回自身以便链式调用。
func (r *RoleUpdate) GrantKVReadPermission(keyOrPrefix string) *RoleUpdate {
	if r.Grant == nil {
		r.Grant = &Permissions{}
	}
	r.Grant.KV.Read = append(r.Grant.KV.Read, keyOrPrefix)
	return r
}

// GrantKVWritePermission 追加要授予的写权限，返回自身以便链式调用。
func (r *RoleUpdate) GrantKVWritePermission(keyOrPrefix string) *RoleUpdate {
	if r.Grant == nil {
		r.Grant = &Permissions{}
	}
	r.Grant.KV.Write = append(r.Grant.KV.Write, keyOrPrefix)
	return r
}

// RevokeKVReadPermission 追加要移除的读权限，返回自身以便链式调用。
func (r *RoleUpdate) RevokeKVReadPermission(keyOrPrefix string) *RoleUpdate {
	if r.Revoke == nil {
		r.Revoke = &Permissions{}
	}
	r.Revoke.KV.Read = append(r.Revoke.KV.Read, keyOrPrefix)
	return r
}

// RevokeKVWritePermission 追加要移除的写权限，返回自身以便链式调用。
func (r *RoleUpdate) RevokeKVWritePermission(keyOrPrefix string) *RoleUpdate {
	if r.Revoke == nil {
		r.Revoke = &Permissions{}
	}
	r.Revoke.KV.Write = append(r.Revoke.KV.Write, keyOrPrefix)
	return r
}

// Permissions 角色的权限集合。当前仅有 KV 存储一类资源。
type Permissions struct {
	// KV 键空间的读写权限。
	KV Permission `json:"kv"`
}

// Permission 一组资源的读写授权，值为键或前缀（如 "/foo/*"）。
type Permission struct {
	// Read 允许读取的键或前缀。
	Read []string `json:"read,omitempty"`

	// Write 允许写入的键或前缀。
	Write []string `json:"write,omitempty"`
}

// AuthStatus 查询认证系统是否启用。
func (c *Client) AuthStatus(ctx context.Context) (*Response[bool], error) {
	r := &request{
		method: http.MethodGet,
		path:   authPrefix + "/enable",
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[bool], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		status, err := decodeJSON[authStatus](resp, http.StatusOK)
		if err != nil {
			return nil, err
		}
		return &Response[bool]{Data: status.Data.Enabled, Cluster: status.Cluster}, nil
	})
}

// EnableAuth 启用认证系统。
// 已启用时服务端返回 409，视为成功并报告 AuthUnchanged。
func (c *Client) EnableAuth(ctx context.Context) (*Response[AuthChange], error) {
	return c.authToggle(ctx, http.MethodPut)
}

// DisableAuth 禁用认证系统。
// 已禁用时服务端返回 409，视为成功并报告 AuthUnchanged。
func (c *Client) DisableAuth(ctx context.Context) (*Response[AuthChange], error) {
	return c.authToggle(ctx, http.MethodDelete)
}

// authToggle 启用/禁用认证的公共路径。
// 409 在这里是成功形状，这是整个 API 中唯一把冲突视为成功的地方。
func (c *Client) authToggle(ctx context.Context, method string) (*Response[AuthChange], error) {
	r := &request{
		method: method,
		path:   authPrefix + "/enable",
	}
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[AuthChange], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		change := AuthChanged
		switch resp.StatusCode {
		case http.StatusOK:
		case http.StatusConflict:
			change = AuthUnchanged
		default:
			return nil, &UnexpectedStatusError{StatusCode: resp.StatusCode}
		}
		return &Response[AuthChange]{Data: change, Cluster: clusterInfoFrom(resp.Header)}, nil
	})
}

// CreateUser 创建用户。
func (c *Client) CreateUser(ctx context.Context, user NewUser) (*Response[User], error) {
	r := &request{
		method:   http.MethodPut,
		path:     authPrefix + "/users/" + user.Name,
		jsonBody: user,
	}
	return authDo[User](ctx, c, r, http.StatusOK, http.StatusCreated)
}

// GetUser 查询用户及其角色详情。
func (c *Client) GetUser(ctx context.Context, name string) (*Response[UserDetail], error) {
	r := &request{
		method: http.MethodGet,
		path:   authPrefix + "/users/" + name,
	}
	return authDo[UserDetail](ctx, c, r, http.StatusOK)
}

// GetUsers 列出全部用户。
func (c *Client) GetUsers(ctx context.Context) (*Response[[]UserDetail], error) {
	r := &request{
		method: http.MethodGet,
		path:   authPrefix + "/users",
	}
	resp, err := authDo[userList](ctx, c, r, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &Response[[]UserDetail]{Data: resp.Data.Users, Cluster: resp.Cluster}, nil
}

// UpdateUser 更新用户的密码或角色。
func (c *Client) UpdateUser(ctx context.Context, update UserUpdate) (*Response[User], error) {
	r := &request{
		method:   http.MethodPut,
		path:     authPrefix + "/users/" + update.Name,
		jsonBody: update,
	}
	return authDo[User](ctx, c, r, http.StatusOK)
}

// DeleteUser 删除用户。
func (c *Client) DeleteUser(ctx context.Context, name string) (*Response[struct{}], error) {
	r := &request{
		method: http.MethodDelete,
		path:   authPrefix + "/users/" + name,
	}
	return authDo[struct{}](ctx, c, r, http.StatusOK)
}

// CreateRole 创建角色。
func (c *Client) CreateRole(ctx context.Context, role Role) (*Response[Role], error) {
	r := &request{
		method:   http.MethodPut,
		path:     authPrefix + "/roles/" + role.Name,
		jsonBody: role,
	}
	return authDo[Role](ctx, c, r, http.StatusOK, http.StatusCreated)
}

// GetRole 查询角色。
func (c *Client) GetRole(ctx context.Context, name string) (*Response[Role], error) {
	r := &request{
		method: http.MethodGet,
		path:   authPrefix + "/roles/" + name,
	}
	return authDo[Role](ctx, c, r, http.StatusOK)
}

// GetRoles 列出全部角色。
func (c *Client) GetRoles(ctx context.Context) (*Response[[]Role], error) {
	r := &request{
		method: http.MethodGet,
		path:   authPrefix + "/roles",
	}
	resp, err := authDo[roleList](ctx, c, r, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &Response[[]Role]{Data: resp.Data.Roles, Cluster: resp.Cluster}, nil
}

// UpdateRole 更新角色的权限。
func (c *Client) UpdateRole(ctx context.Context, update RoleUpdate) (*Response[Role], error) {
	r := &request{
		method:   http.MethodPut,
		path:     authPrefix + "/roles/" + update.Name,
		jsonBody: update,
	}
	return authDo[Role](ctx, c, r, http.StatusOK)
}

// DeleteRole 删除角色。
func (c *Client) DeleteRole(ctx context.Context, name string) (*Response[struct{}], error) {
	r := &request{
		method: http.MethodDelete,
		path:   authPrefix + "/roles/" + name,
	}
	return authDo[struct{}](ctx, c, r, http.StatusOK)
}

// authDo 用户/角色管理接口的公共路径。
// 这组接口没有结构化错误体，非预期状态码归为 *UnexpectedStatusError。
func authDo[T any](ctx context.Context, c *Client, r *request, ok ...int) (*Response[T], error) {
	return doFirst(ctx, c, func(ctx context.Context, base *url.URL) (*Response[T], error) {
		ctx, cancel := c.reqCtx(ctx)
		defer cancel()
		resp, err := c.send(ctx, base, r)
		if err != nil {
			return nil, err
		}
		return decodeStatus[T](resp, ok...)
	})
}
