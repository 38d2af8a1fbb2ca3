package xpropagate_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/omeyang/xreqctx/pkg/context/xpropagate"
	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/util/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironFromHTTPHeader(t *testing.T) {
	h := http.Header{}
	h.Set("X-User-Id", "u1")
	h.Set("X-Tenant", "legacy")
	h.Add("X-Roles", "admin")
	h.Add("X-Roles", "member")
	h.Set(xpropagate.HeaderRequestID, "req-upstream")
	h["X-Empty"] = nil

	env := xpropagate.EnvironFromHTTPHeader(h, false)
	assert.Equal(t, "u1", env["HTTP_X_USER_ID"])
	assert.Equal(t, "legacy", env["HTTP_X_TENANT"])
	assert.Equal(t, "admin,member", env["HTTP_X_ROLES"], "多个值以逗号连接")
	assert.NotContains(t, env, "HTTP_X_EMPTY")
	assert.NotContains(t, env, xreqctx.EnvRequestID, "默认不信任上游请求 ID")

	env = xpropagate.EnvironFromHTTPHeader(h, true)
	assert.Equal(t, "req-upstream", env[xreqctx.EnvRequestID])

	assert.Empty(t, xpropagate.EnvironFromHTTPHeader(nil, true))
}

func TestEnvironFromHTTPHeader_UnderscoreNamesDropped(t *testing.T) {
	h := http.Header{}
	h.Set("X-User-Id", "real")
	h["X_user_id"] = []string{"spoof"}
	h["X_Roles"] = []string{"admin"}
	h["X_auth_token"] = []string{"stolen"}

	for range 200 {
		env := xpropagate.EnvironFromHTTPHeader(h, false)
		require.Equal(t, "real", env["HTTP_X_USER_ID"])
		require.NotContains(t, env, "HTTP_X_ROLES")
		require.NotContains(t, env, "HTTP_X_AUTH_TOKEN")
	}

	rec, rc := serve(t, xpropagate.HTTPMiddleware(), func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header = h
		return req
	}())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, rc)
	assert.Equal(t, "real", rc.User())
	assert.Empty(t, rc.Roles())
	assert.Empty(t, rc.AuthToken())
}

func TestEnvironFromHTTPHeader_CaseVariantsMergedInOrder(t *testing.T) {
	h := http.Header{
		"X-Roles": {"admin"},
		"x-roles": {"member"},
	}
	for range 50 {
		env := xpropagate.EnvironFromHTTPHeader(h, false)
		require.Equal(t, "admin,member", env["HTTP_X_ROLES"])
	}
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *xreqctx.RequestContext) {
	t.Helper()
	var got *xreqctx.RequestContext
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = xreqctx.Current(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got
}

func TestHTTPMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/servers", nil)
	req.Header.Set("X-User-Id", "u1")
	req.Header.Set("X-Project-Id", "p1")
	req.Header.Set("X-Tenant", "legacy")
	req.Header.Set("X-Roles", "admin, member")
	req.Header.Set("X-Is-Admin-Project", "False")
	req.Header.Set(xpropagate.HeaderRequestID, "req-upstream")

	rec, rc := serve(t, xpropagate.HTTPMiddleware(), req)
	require.NotNil(t, rc)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", rc.User())
	assert.Equal(t, "p1", rc.Tenant())
	assert.Equal(t, []string{"admin", "member"}, rc.Roles())
	assert.False(t, rc.IsAdminProject())

	assert.NotEqual(t, "req-upstream", rc.RequestID())
	assert.True(t, xid.IsRequestID(rc.RequestID()))
	assert.Equal(t, rc.RequestID(), rec.Header().Get(xpropagate.HeaderRequestID))
}

func TestHTTPMiddleware_TrustRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(xpropagate.HeaderRequestID, "req-upstream")

	rec, rc := serve(t, xpropagate.HTTPMiddleware(xpropagate.WithTrustRequestID(), nil), req)
	require.NotNil(t, rc)
	assert.Equal(t, "req-upstream", rc.RequestID())
	assert.Equal(t, "req-upstream", rec.Header().Get(xpropagate.HeaderRequestID))
}

func TestHTTPMiddleware_ScopePerRequest(t *testing.T) {
	mw := xpropagate.HTTPMiddleware()

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.Header.Set("X-User-Id", "a")
	_, a := serve(t, mw, first)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	_, b := serve(t, mw, second)

	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotSame(t, a, b)
	assert.Equal(t, "a", a.User())
	assert.Empty(t, b.User(), "不同请求互不可见")
	assert.Nil(t, xreqctx.Current(first.Context()), "外层 ctx 不受影响")
}

func TestInjectToRequest(t *testing.T) {
	ctx, err := xreqctx.WithScope(context.Background())
	require.NoError(t, err)
	xreqctx.New(ctx,
		xreqctx.WithAuthToken("tok"),
		xreqctx.WithUser("u1"),
		xreqctx.WithTenant("p1"),
		xreqctx.WithRoles("admin", "member"),
		xreqctx.WithIsAdminProject(false),
		xreqctx.WithRequestID("req-1"),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(xpropagate.HeaderUserDomainID, "stale")
	xpropagate.InjectToRequest(ctx, req, xpropagate.WithForwardToken())

	assert.Equal(t, "tok", req.Header.Get(xpropagate.HeaderAuthToken))
	assert.Equal(t, "u1", req.Header.Get(xpropagate.HeaderUserID))
	assert.Equal(t, "p1", req.Header.Get(xpropagate.HeaderProjectID))
	assert.Equal(t, "admin,member", req.Header.Get(xpropagate.HeaderRoles))
	assert.Equal(t, "false", req.Header.Get(xpropagate.HeaderIsAdminProject))
	assert.Equal(t, "req-1", req.Header.Get(xpropagate.HeaderRequestID))
	assert.Empty(t, req.Header.Values(xpropagate.HeaderUserDomainID), "缺失字段删除旧值")

	// 没有当前上下文时清空全部字段
	xpropagate.InjectToRequest(context.Background(), req, xpropagate.WithForwardToken())
	assert.Empty(t, req.Header.Get(xpropagate.HeaderAuthToken))
	assert.Empty(t, req.Header.Get(xpropagate.HeaderUserID))
	assert.Empty(t, req.Header.Get(xpropagate.HeaderRequestID))

	assert.NotPanics(t, func() {
		xpropagate.InjectToRequest(ctx, nil)
		xpropagate.InjectToRequest(ctx, &http.Request{})
	})
}

func TestInjectToRequest_TokenNotForwardedByDefault(t *testing.T) {
	ctx, err := xreqctx.WithScope(context.Background())
	require.NoError(t, err)
	xreqctx.New(ctx, xreqctx.WithAuthToken("tok"), xreqctx.WithUser("u1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	xpropagate.InjectToRequest(ctx, req)
	assert.Empty(t, req.Header.Values(xpropagate.HeaderAuthToken))
	assert.Equal(t, "u1", req.Header.Get(xpropagate.HeaderUserID))

	// 调用方自行设置的 token 保持不变
	req.Header.Set(xpropagate.HeaderAuthToken, "service-token")
	xpropagate.InjectToRequest(ctx, req)
	assert.Equal(t, "service-token", req.Header.Get(xpropagate.HeaderAuthToken))
}

func TestTransport_ForwardToken(t *testing.T) {
	tokens := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		tokens <- r.Header.Get(xpropagate.HeaderAuthToken)
	}))
	defer srv.Close()

	ctx, err := xreqctx.WithScope(context.Background())
	require.NoError(t, err)
	xreqctx.New(ctx, xreqctx.WithAuthToken("tok"))

	for _, tc := range []struct {
		name string
		opts []xpropagate.Option
		want string
	}{
		{"默认不转发", nil, ""},
		{"显式转发", []xpropagate.Option{xpropagate.WithForwardToken()}, "tok"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			client := &http.Client{Transport: xpropagate.Transport(nil, tc.opts...)}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
			require.NoError(t, err)
			resp, err := client.Do(req)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
			assert.Equal(t, tc.want, <-tokens)
		})
	}
}

func TestRoundTrip_HTTP(t *testing.T) {
	received := make(chan *xreqctx.RequestContext, 1)
	srv := httptest.NewServer(xpropagate.HTTPMiddleware(xpropagate.WithTrustRequestID())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received <- xreqctx.Current(r.Context())
		})))
	defer srv.Close()

	ctx, err := xreqctx.WithScope(context.Background())
	require.NoError(t, err)
	up := xreqctx.New(ctx,
		xreqctx.WithUser("u1"),
		xreqctx.WithTenant("p1"),
		xreqctx.WithUserName("alice"),
		xreqctx.WithRoles("reader"),
		xreqctx.WithIsAdminProject(false),
	)

	client := &http.Client{Transport: xpropagate.Transport(nil)}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Empty(t, req.Header.Get(xpropagate.HeaderUserID), "Transport 不修改调用方的请求")
	downstream := <-received
	require.NotNil(t, downstream)
	assert.Equal(t, up.RequestID(), downstream.RequestID())
	assert.Equal(t, up.ToPolicyValues(), downstream.ToPolicyValues())
	assert.Equal(t, "alice", downstream.UserName())
	assert.Equal(t, up.RequestID(), resp.Header.Get(xpropagate.HeaderRequestID))
}
