package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/access"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestSessionSignInRoundTrip(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, access.Anonymous, sess.Identity())

	require.NoError(t, sess.SignIn(access.Session{UserID: "u1", Role: access.RoleFaculty, Authenticated: true}))
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, access.Session{UserID: "u1", Role: access.RoleFaculty, Authenticated: true}, loaded.Identity())

	loaded.SignOut()
	assert.Equal(t, access.Anonymous, loaded.Identity())
}

func TestSessionSignInRejectsInvalidIdentity(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, sess.SignIn(access.Session{UserID: "u1", Role: access.RoleAdmin, Authenticated: true}))

	err = sess.SignIn(access.Session{UserID: "u2", Role: access.Role("bogus"), Authenticated: true})
	require.ErrorIs(t, err, access.ErrInvalidRole)
	err = sess.SignIn(access.Session{Role: access.RoleStudent, Authenticated: true})
	require.ErrorIs(t, err, access.ErrInvalidIdentity)

	assert.Equal(t, access.Session{UserID: "u1", Role: access.RoleAdmin, Authenticated: true}, sess.Identity())
}

func TestSessionStaleRoleIsAnonymous(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	require.NoError(t, mr.Set("session:stale", `{"values":{},"user_id":"u9","role":"registrar"}`))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "stale"})
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "u9", sess.User())
	assert.Equal(t, access.Anonymous, sess.Identity())
}

func TestSessionDestroyClearsCookie(t *testing.T) {
	sm, mr := newTestSessionManager(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))
	assert.True(t, mr.Exists("session:"+sess.ID))

	sm.Destroy(sess)
	rec := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rec, req, sess))
	assert.False(t, mr.Exists("session:"+sess.ID))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	csrf := NewCSRFManager("csrfsecret")

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	require.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "nope"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	_, err = csrf.EnsureToken(context.Background(), nil)
	require.ErrorIs(t, err, ErrSessionMissing)
}

func TestFlashSurvivesRedirect(t *testing.T) {
	sm, _ := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Welcome back"})
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, sess))

	load := func() *Session {
		next := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		next.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
		loaded, err := sm.Load(ctx, next)
		require.NoError(t, err)
		return loaded
	}

	first := load()
	flash := first.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Welcome back", flash.Message)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), req, first))

	assert.Nil(t, load().PopFlash())
}
