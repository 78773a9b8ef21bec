package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/gocrud/internal/errs"
	"github.com/deppfellow/gocrud/internal/lib/job"
	"github.com/deppfellow/gocrud/internal/model"
	"github.com/deppfellow/gocrud/internal/query"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc    *AuthService
	users  users
	resets *resetStore
	queue  *fakeQueue
	sealer *EmailSealer
}

func newAuth(t *testing.T) *authFixture {
	t.Helper()
	store := newUserResources()
	queue := &fakeQueue{}
	resets := newResetStore()
	sealer := NewEmailSealer(testSecret)
	tokens, _ := newTokens(newMemCache())

	resources := NewResourceService("users", store, query.NewCompiler(query.DialectPostgres), UserHooks(queue, nopLogger()), nil)
	svc := NewAuthService(AuthDeps{
		Users:     users{store},
		Resets:    resets,
		Resources: resources,
		Tokens:    tokens,
		Sealer:    sealer,
		Jobs:      queue,
		Config:    AuthConfig{ResetTokenExpiry: time.Hour, ResetCallbackURL: "https://app.local/reset"},
		Logger:    nopLogger(),
	})
	return &authFixture{svc: svc, users: users{store}, resets: resets, queue: queue, sealer: sealer}
}

func TestAuth_RegisterLoginLogout(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, "a@b.c", "password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.Password)
	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, job.TaskWelcome, f.queue.tasks[0].Type())

	res, err := f.svc.Login(ctx, "a@b.c", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, model.TokenTypeBearer, res.Token.Type)

	id, err := f.svc.tokens.Verify(ctx, res.Token.Token)
	require.NoError(t, err)

	me, err := f.svc.CurrentUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", me.Email)

	require.NoError(t, f.svc.Logout(ctx, id))
	_, err = f.svc.tokens.Verify(ctx, res.Token.Token)
	assertUnauthorized(t, err)
}

func TestAuth_LoginFailures(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.c", "password123")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "a@b.c", "wrong-password")
	assertUnauthorized(t, err)

	_, err = f.svc.Login(ctx, "nobody@b.c", "password123")
	assertUnauthorized(t, err)
}

func recoveryLink(t *testing.T, q *fakeQueue) string {
	t.Helper()
	require.NotEmpty(t, q.tasks)
	task := q.tasks[len(q.tasks)-1]
	require.Equal(t, job.TaskPasswordRecovery, task.Type())

	var p job.PasswordRecoveryPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	return p.Link
}

func TestAuth_ForgotAndReset(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.c", "password123")
	require.NoError(t, err)

	require.NoError(t, f.svc.Forgot(ctx, "a@b.c", "https://front.local/recover/"))
	link := recoveryLink(t, f.queue)

	rest, ok := strings.CutPrefix(link, "https://front.local/recover/")
	require.True(t, ok, link)
	token, sealed, ok := strings.Cut(rest, "/")
	require.True(t, ok)
	assert.Len(t, token, 2*resetTokenBytes)

	email, err := f.sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", email)

	user, err := f.svc.Reset(ctx, token, sealed, "brand-new-password")
	require.NoError(t, err)
	assert.True(t, user.CheckPassword("brand-new-password"))

	_, err = f.svc.Login(ctx, "a@b.c", "brand-new-password")
	require.NoError(t, err)

	_, err = f.svc.Reset(ctx, token, sealed, "again-password")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestAuth_ForgotReplacesPreviousReset(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.c", "password123")
	require.NoError(t, err)

	require.NoError(t, f.svc.Forgot(ctx, "a@b.c", ""))
	first := recoveryLink(t, f.queue)
	assert.True(t, strings.HasPrefix(first, "https://app.local/reset/"))

	require.NoError(t, f.svc.Forgot(ctx, "a@b.c", ""))
	assert.Len(t, f.resets.rows, 1)
}

func TestAuth_ForgotUnknownEmail(t *testing.T) {
	f := newAuth(t)
	err := f.svc.Forgot(context.Background(), "nobody@b.c", "")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Empty(t, f.queue.tasks)
}

func TestAuth_ForgotWithoutCallback(t *testing.T) {
	f := newAuth(t)
	f.svc.cfg.ResetCallbackURL = ""

	err := f.svc.Forgot(context.Background(), "a@b.c", "")
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestAuth_ResetRejects(t *testing.T) {
	f := newAuth(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.c", "password123")
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "x@y.z", "password123")
	require.NoError(t, err)

	t.Run("sealed email mismatch", func(t *testing.T) {
		reset, err := f.resets.Replace(ctx, "a@b.c", "tok-1")
		require.NoError(t, err)
		other, err := f.sealer.Seal("x@y.z")
		require.NoError(t, err)

		_, err = f.svc.Reset(ctx, reset.Token, other, "brand-new-password")
		assertUnauthorized(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		reset, err := f.resets.Replace(ctx, "a@b.c", "tok-2")
		require.NoError(t, err)
		reset.CreatedAt = time.Now().Add(-2 * time.Hour)

		_, err = f.svc.Reset(ctx, "tok-2", "", "brand-new-password")
		assertUnauthorized(t, err)
		assert.NotContains(t, f.resets.rows, "tok-2")
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.svc.Reset(ctx, "nope", "", "brand-new-password")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}
