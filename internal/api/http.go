package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
)

// HTTPClient implements Client over a REST endpoint. Retry and timeout
// policy belong to the injected *http.Client; this layer only classifies
// outcomes.
type HTTPClient struct {
	baseURL string
	hc      *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, hc: hc}
}

func (c *HTTPClient) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) Prelogin(ctx context.Context, req PreloginRequest) Response[PreloginData] {
	return post[PreloginData](c, ctx, "/users/prelogin", req)
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/users/register", req)
}

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) Response[LoginData] {
	resp := post[LoginData](c, ctx, "/users/session", req)
	// A 2FA continuation rides on its own code rather than a status error.
	if resp.Kind == KindOK && resp.Data != nil && len(resp.Data.Methods) > 0 && resp.Data.AccessToken == "" {
		resp.Kind = KindOnPremise2FA
	}
	return resp
}

func (c *HTTPClient) ChangePassword(ctx context.Context, req ChangePasswordRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/users/password", req)
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) Response[RefreshData] {
	return post[RefreshData](c, ctx, "/users/session/refresh", map[string]string{"refresh_token": refreshToken})
}

func (c *HTTPClient) Revoke(ctx context.Context) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/users/session/revoke", struct{}{})
}

func (c *HTTPClient) Sync(ctx context.Context) Response[SyncData] {
	return get[SyncData](c, ctx, "/sync")
}

func (c *HTTPClient) PublicKey(ctx context.Context, email string) Response[PublicKeyData] {
	return get[PublicKeyData](c, ctx, "/users/public_key?email="+url.QueryEscape(email))
}

func (c *HTTPClient) GroupMembers(ctx context.Context, groupID string) Response[GroupMembersData] {
	return get[GroupMembersData](c, ctx, "/groups/"+url.PathEscape(groupID)+"/members")
}

func (c *HTTPClient) ShareFolder(ctx context.Context, req ShareFolderRequest) Response[ShareFolderData] {
	return post[ShareFolderData](c, ctx, "/sharing/folders", req)
}

func (c *HTTPClient) UpdateShareMembers(ctx context.Context, req ShareMemberRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/sharing/members", req)
}

func (c *HTTPClient) StopShare(ctx context.Context, req StopShareRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/sharing/stop", req)
}

func (c *HTTPClient) RemoveShareItem(ctx context.Context, req RemoveShareItemRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/sharing/items/remove", req)
}

func (c *HTTPClient) Takeover(ctx context.Context, contactID string) Response[TakeoverData] {
	return post[TakeoverData](c, ctx, "/emergency_access/"+url.PathEscape(contactID)+"/takeover", struct{}{})
}

func (c *HTTPClient) TakeoverPassword(ctx context.Context, contactID string, req TakeoverPasswordRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/emergency_access/"+url.PathEscape(contactID)+"/password", req)
}

func (c *HTTPClient) ResetLockerPassword(ctx context.Context, contactID string, req ResetPasswordRequest) Response[EmptyData] {
	return post[EmptyData](c, ctx, "/emergency_access/"+url.PathEscape(contactID)+"/id_password", req)
}

func post[T any](c *HTTPClient, ctx context.Context, path string, body any) Response[T] {
	payload, err := json.Marshal(body)
	if err != nil {
		return fail[T](KindBadData, err)
	}
	return do[T](c, ctx, http.MethodPost, path, payload)
}

func get[T any](c *HTTPClient, ctx context.Context, path string) Response[T] {
	return do[T](c, ctx, http.MethodGet, path, nil)
}

func do[T any](c *HTTPClient, ctx context.Context, method, path string, payload []byte) Response[T] {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fail[T](KindBadData, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.hc.Do(req)
	if err != nil {
		return fail[T](classifyTransport(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail[T](classifyTransport(err), err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var data T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &data); err != nil {
				return fail[T](KindBadData, err)
			}
		}
		return ok(&data)
	}

	var se ServerError
	_ = json.Unmarshal(raw, &se)
	return classifyStatus[T](resp.StatusCode, se)
}

const maxBodyBytes = 8 << 20

func classifyTransport(err error) Kind {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return KindCannotConn
	}
	return KindNetworkError
}

func classifyStatus[T any](status int, se ServerError) Response[T] {
	err := fmt.Errorf("api: status %d code %s: %s", status, se.Code, se.Message)
	switch se.Code {
	case "1008":
		r := fail[T](KindRateLimited, err)
		r.WaitSeconds = se.Wait
		return r
	case "1009":
		return fail[T](KindEnterpriseLock, err)
	case "1010":
		return fail[T](KindEnterpriseSystemLock, err)
	}
	switch {
	case status == http.StatusUnauthorized:
		return fail[T](KindUnauthorized, err)
	case status == http.StatusForbidden:
		return fail[T](KindForbidden, err)
	case status == http.StatusNotFound:
		return fail[T](KindNotFound, err)
	case status >= 500:
		return fail[T](KindServer, err)
	default:
		return fail[T](KindBadData, err)
	}
}
