package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsession "staybeyond/internal/app/session"
	domainauth "staybeyond/internal/domain/auth"
	domainuser "staybeyond/internal/domain/user"
	"staybeyond/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }
func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

type seqTokens struct{ n int }

func (g *seqTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("token-%d", g.n), nil
}

func newService(t *testing.T) (*Service, *[]appsession.Change) {
	t.Helper()
	changes := &[]appsession.Change{}
	svc := &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  plainHasher{},
		Tokens:     &seqTokens{},
		SessionTTL: time.Hour,
		OnChange:   func(ch appsession.Change) { *changes = append(*changes, ch) },
	}
	return svc, changes
}

func TestRegisterIssuesSession(t *testing.T) {
	svc, changes := newService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterParams{
		Email:    " Priya@Example.com ",
		Name:     "Priya",
		Password: "wanderlust",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", res.User.Email, "email normalized")
	assert.NotEmpty(t, res.Token)

	resolved, err := svc.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.User.ID)

	require.Len(t, *changes, 1)
	assert.Equal(t, appsession.SignedIn, (*changes)[0].Event)
	assert.Equal(t, string(res.User.ID), (*changes)[0].User.ID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Email: "A@B.com", Name: "B", Password: "longenough"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Email:    "a@b.com",
		Name:     "A",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLogin(t *testing.T) {
	svc, changes := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "longenough"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Len(t, *changes, 2)

	_, err = svc.Login(ctx, LoginParams{Email: "a@b.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginParams{Email: "nobody@b.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown user indistinguishable from bad password")
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, changes := newService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token))

	_, err = svc.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	last := (*changes)[len(*changes)-1]
	assert.Equal(t, appsession.SignedOut, last.Event)
}

func TestResolveTokenExpiredSessionRemoved(t *testing.T) {
	svc, _ := newService(t)
	svc.SessionTTL = time.Nanosecond
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	// A second resolve hits the deleted session, not just the expiry check.
	_, err = svc.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}
