package identity

import (
	"context"
	"testing"
	"time"

	"feedback-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

type stubUsers struct {
	byEmail map[string]*models.User
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.byEmail[email], nil
}

func (s *stubUsers) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) Create(ctx context.Context, user *models.User) error {
	user.ID = bson.NewObjectID()
	s.byEmail[user.Email] = user
	return nil
}

func newTestService(t *testing.T) (*Service, *models.User) {
	t.Helper()
	svc := NewService(&stubUsers{byEmail: map[string]*models.User{}}, "test-secret")
	user, err := svc.CreateUser(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	return svc, user
}

func TestSignIn_IssuesParsableSession(t *testing.T) {
	svc, user := newTestService(t)

	session, err := svc.SignIn(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), session.UserID)
	require.Equal(t, "user@example.com", session.Email)
	require.NotEmpty(t, session.Token)

	// The issued token must round-trip through CurrentUser.
	current, err := svc.CurrentUser(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, session.UserID, current.UserID)
	require.Equal(t, session.Email, current.Email)
}

func TestSignIn_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SignIn(context.Background(), "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SignIn(context.Background(), "user@example.com", "guessing")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUser_RejectsForeignSignature(t *testing.T) {
	svc, _ := newTestService(t)

	// A token minted under a different secret must not validate.
	other := NewService(&stubUsers{byEmail: map[string]*models.User{}}, "other-secret")
	_, err := other.CreateUser(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	session, err := other.SignIn(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser_RejectsExpiredToken(t *testing.T) {
	svc, user := newTestService(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	tokenString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUser_RejectsTokenWithoutUserID(t *testing.T) {
	svc, _ := newTestService(t)

	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), tokenString)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveDisplayIdentity(t *testing.T) {
	svc, user := newTestService(t)
	ctx := context.Background()

	email, err := svc.ResolveDisplayIdentity(ctx, user.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "user@example.com", email)

	_, err = svc.ResolveDisplayIdentity(ctx, bson.NewObjectID().Hex())
	require.ErrorIs(t, err, ErrUnknownOwner)

	_, err = svc.ResolveDisplayIdentity(ctx, "not-an-object-id")
	require.ErrorIs(t, err, ErrUnknownOwner)
}

func TestCreateUser_HashesPassword(t *testing.T) {
	_, user := newTestService(t)

	require.NotEqual(t, "hunter22", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
}
