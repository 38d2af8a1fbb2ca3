package xreqctx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/omeyang/xreqctx/pkg/context/xreqctx"
	"github.com/omeyang/xreqctx/pkg/util/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// 构造默认值测试
// =============================================================================

func TestNew_Defaults(t *testing.T) {
	rc := xreqctx.New(context.Background())

	assert.Empty(t, rc.AuthToken())
	assert.Empty(t, rc.User())
	assert.Empty(t, rc.Tenant())
	assert.Empty(t, rc.Domain())
	assert.Empty(t, rc.UserDomain())
	assert.Empty(t, rc.ProjectDomain())
	assert.Empty(t, rc.ResourceUUID())
	assert.False(t, rc.IsAdmin())
	assert.False(t, rc.ReadOnly())
	assert.False(t, rc.ShowDeleted())
	assert.True(t, rc.IsAdminProject(), "is_admin_project 默认 true")

	require.NotNil(t, rc.Roles(), "roles 永远非 nil")
	assert.Empty(t, rc.Roles())
}

func TestNew_AllFields(t *testing.T) {
	rc := xreqctx.New(context.Background(),
		xreqctx.WithAuthToken("tok"),
		xreqctx.WithUser("u1"),
		xreqctx.WithUserName("alice"),
		xreqctx.WithTenant("p1"),
		xreqctx.WithProjectName("demo"),
		xreqctx.WithDomain("d1"),
		xreqctx.WithDomainName("Default"),
		xreqctx.WithUserDomain("ud1"),
		xreqctx.WithUserDomainName("users"),
		xreqctx.WithProjectDomain("pd1"),
		xreqctx.WithProjectDomainName("projects"),
		xreqctx.WithIsAdmin(true),
		xreqctx.WithReadOnly(true),
		xreqctx.WithShowDeleted(true),
		xreqctx.WithRequestID("req-fixed"),
		xreqctx.WithResourceUUID("res-1"),
		xreqctx.WithRoles("admin", "member"),
		xreqctx.WithIsAdminProject(false),
	)

	assert.Equal(t, "tok", rc.AuthToken())
	assert.Equal(t, "u1", rc.User())
	assert.Equal(t, "alice", rc.UserName())
	assert.Equal(t, "p1", rc.Tenant())
	assert.Equal(t, "p1", rc.ProjectID())
	assert.Equal(t, "demo", rc.ProjectName())
	assert.Equal(t, "d1", rc.Domain())
	assert.Equal(t, "Default", rc.DomainName())
	assert.Equal(t, "ud1", rc.UserDomain())
	assert.Equal(t, "users", rc.UserDomainName())
	assert.Equal(t, "pd1", rc.ProjectDomain())
	assert.Equal(t, "projects", rc.ProjectDomainName())
	assert.True(t, rc.IsAdmin())
	assert.True(t, rc.ReadOnly())
	assert.True(t, rc.ShowDeleted())
	assert.Equal(t, "req-fixed", rc.RequestID())
	assert.Equal(t, "res-1", rc.ResourceUUID())
	assert.Equal(t, []string{"admin", "member"}, rc.Roles())
	assert.False(t, rc.IsAdminProject())
}

func TestNew_ProjectIDAlias(t *testing.T) {
	rc := xreqctx.New(context.Background(), xreqctx.WithProjectID("p2"))
	assert.Equal(t, "p2", rc.Tenant())
	assert.Equal(t, "p2", rc.ProjectID())
}

func TestNew_NilOptionIgnored(t *testing.T) {
	rc := xreqctx.New(context.Background(), nil, xreqctx.WithUser("u1"), nil)
	assert.Equal(t, "u1", rc.User())
}

// =============================================================================
// request_id 生成测试
// =============================================================================

func TestNew_RequestIDGenerated(t *testing.T) {
	t.Run("未设置时自动生成", func(t *testing.T) {
		rc := xreqctx.New(context.Background())
		assert.True(t, strings.HasPrefix(rc.RequestID(), xid.RequestIDPrefix))
		assert.True(t, xid.IsRequestID(rc.RequestID()))
	})

	t.Run("空字符串视为未设置", func(t *testing.T) {
		rc := xreqctx.New(context.Background(), xreqctx.WithRequestID(""))
		assert.True(t, xid.IsRequestID(rc.RequestID()))
	})

	t.Run("两次构造ID不同", func(t *testing.T) {
		a := xreqctx.New(context.Background())
		b := xreqctx.New(context.Background())
		assert.NotEqual(t, a.RequestID(), b.RequestID())
	})

	t.Run("显式设置原样保留", func(t *testing.T) {
		rc := xreqctx.New(context.Background(), xreqctx.WithRequestID("upstream-id"))
		assert.Equal(t, "upstream-id", rc.RequestID())
	})
}

// =============================================================================
// 不可变性测试
// =============================================================================

func TestRoles_Immutable(t *testing.T) {
	input := []string{"admin", "member"}
	rc := xreqctx.New(context.Background(), xreqctx.WithRoles(input...))

	input[0] = "mutated"
	assert.Equal(t, []string{"admin", "member"}, rc.Roles(), "构造时应复制入参")

	got := rc.Roles()
	got[1] = "mutated"
	assert.Equal(t, []string{"admin", "member"}, rc.Roles(), "Roles() 应返回副本")
}

func TestHasRole(t *testing.T) {
	rc := xreqctx.New(context.Background(), xreqctx.WithRoles("admin", "reader"))
	assert.True(t, rc.HasRole("admin"))
	assert.False(t, rc.HasRole("Admin"))
	assert.False(t, rc.HasRole("writer"))
}

func TestWithRoles_Nil(t *testing.T) {
	rc := xreqctx.New(context.Background(), xreqctx.WithRoles())
	require.NotNil(t, rc.Roles())
	assert.Empty(t, rc.Roles())
}

// =============================================================================
// Derive 测试
// =============================================================================

func TestDerive(t *testing.T) {
	base := xreqctx.New(context.Background(),
		xreqctx.WithUser("u1"),
		xreqctx.WithTenant("p1"),
		xreqctx.WithRoles("member"),
	)

	t.Run("叠加修改并沿用request_id", func(t *testing.T) {
		derived := base.Derive(context.Background(), xreqctx.WithReadOnly(true), xreqctx.WithRoles("member", "ops"))

		assert.Equal(t, "u1", derived.User())
		assert.Equal(t, "p1", derived.Tenant())
		assert.True(t, derived.ReadOnly())
		assert.Equal(t, []string{"member", "ops"}, derived.Roles())
		assert.Equal(t, base.RequestID(), derived.RequestID())

		assert.False(t, base.ReadOnly(), "原实例不变")
		assert.Equal(t, []string{"member"}, base.Roles())
	})

	t.Run("可覆盖request_id", func(t *testing.T) {
		derived := base.Derive(context.Background(), xreqctx.WithRequestID("req-new"))
		assert.Equal(t, "req-new", derived.RequestID())
	})

	t.Run("nil接收者等同New", func(t *testing.T) {
		var rc *xreqctx.RequestContext
		derived := rc.Derive(context.Background(), xreqctx.WithUser("u2"))
		assert.Equal(t, "u2", derived.User())
		assert.True(t, derived.IsAdminProject())
		assert.True(t, xid.IsRequestID(derived.RequestID()))
	})

	t.Run("按规则发布到作用域", func(t *testing.T) {
		ctx, err := xreqctx.WithScope(context.Background())
		require.NoError(t, err)

		derived := base.Derive(ctx)
		assert.Same(t, derived, xreqctx.Current(ctx))

		again := base.Derive(ctx, xreqctx.WithOverwrite(false))
		assert.Same(t, derived, xreqctx.Current(ctx))
		assert.NotSame(t, again, xreqctx.Current(ctx))
	})
}
