package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	testhelpers "github.com/polkiloo/prowriters/internal/test"
)

func newStrategyStub() testhelpers.StrategyStub {
	return testhelpers.StrategyStub{
		IssueFn: func(p pkgAuth.Principal) (string, error) {
			return fmt.Sprintf("token-%d-%s", p.UserID, p.Role), nil
		},
		ParseFn: func(token string) (pkgAuth.Principal, error) {
			var id int64
			var role string
			if _, err := fmt.Sscanf(strings.ReplaceAll(token, "-", " "), "token %d %s", &id, &role); err != nil {
				return pkgAuth.Principal{}, pkgAuth.ErrInvalidToken
			}
			return pkgAuth.Principal{UserID: id, Role: model.Role(role)}, nil
		},
	}
}

func newAuthUseCase(repo *testhelpers.UserRepositoryStub, queue *testhelpers.QueueStub) *AuthUseCase {
	return NewAuthUseCase(repo, testhelpers.HasherStub{}, newStrategyStub(), queue, discardLogger())
}

func registration(email, password string) model.Registration {
	return model.Registration{Email: email, Password: password, FirstName: "Alice", LastName: "Smith"}
}

func TestAuthUseCaseRegisterSuccess(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	queue := &testhelpers.QueueStub{}
	uc := newAuthUseCase(repo, queue)

	ctx := context.Background()
	user, token, err := uc.Register(ctx, registration("  Alice@Example.com ", "correct-horse"))
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected user to have ID assigned")
	}
	if user.Role != model.RoleCustomer {
		t.Fatalf("expected customer role, got %q", user.Role)
	}
	if token != "token-1-customer" {
		t.Fatalf("unexpected token %q", token)
	}
	stored, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("expected user in repository: %v", err)
	}
	if stored.PasswordHash != "hash:correct-horse" {
		t.Fatalf("password hash not stored: %v", stored.PasswordHash)
	}

	items := queue.Items()
	if len(items) != 1 || items[0].Kind != model.NotificationWelcome {
		t.Fatalf("expected welcome notification, got %+v", items)
	}
	if items[0].Recipient != "alice@example.com" || items[0].Name != "Alice Smith" {
		t.Fatalf("unexpected welcome notification %+v", items[0])
	}
}

func TestAuthUseCaseRegisterValidation(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewUserRepositoryStub(), &testhelpers.QueueStub{})

	cases := []struct {
		name string
		in   model.Registration
	}{
		{"empty email", registration("", "correct-horse")},
		{"bad email", registration("not-an-email", "correct-horse")},
		{"display name email", registration("Alice <alice@example.com>", "correct-horse")},
		{"short password", registration("alice@example.com", "short")},
		{"numeric password", registration("alice@example.com", "12345678")},
		{"password contains email", registration("alice@example.com", "alice-2024!")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := uc.Register(context.Background(), tc.in); !errors.Is(err, domainErrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAuthUseCaseRegisterDuplicate(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	queue := &testhelpers.QueueStub{}
	uc := newAuthUseCase(repo, queue)

	ctx := context.Background()
	email := strings.ToLower(testhelpers.RandomASCIIString(6, 12)) + "@example.com"
	if _, _, err := uc.Register(ctx, registration(email, "correct-horse")); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	if _, _, err := uc.Register(ctx, registration(email, "correct-horse")); err != domainErrors.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if got := len(queue.Items()); got != 1 {
		t.Fatalf("expected one welcome notification, got %d", got)
	}
}

func TestAuthUseCaseRegisterSurvivesFullQueue(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewUserRepositoryStub(), &testhelpers.QueueStub{Reject: true})
	if _, _, err := uc.Register(context.Background(), registration("alice@example.com", "correct-horse")); err != nil {
		t.Fatalf("registration must not depend on email delivery: %v", err)
	}
}

func TestAuthUseCaseRegisterHashError(t *testing.T) {
	uc := NewAuthUseCase(testhelpers.NewUserRepositoryStub(), testhelpers.HasherStub{
		HashFn: func(string) (string, error) { return "", errors.New("hash") },
	}, newStrategyStub(), &testhelpers.QueueStub{}, discardLogger())
	if _, _, err := uc.Register(context.Background(), registration("alice@example.com", "correct-horse")); err == nil {
		t.Fatal("expected hash error")
	}
}

func TestAuthUseCaseAuthenticate(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAuthUseCase(repo, &testhelpers.QueueStub{})

	ctx := context.Background()
	if _, _, err := uc.Register(ctx, registration("carol@example.com", "s3cret-pass")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := uc.Authenticate(ctx, "carol@example.com", "bad"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, "nobody@example.com", "s3cret-pass"); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
	if _, _, err := uc.Authenticate(ctx, "", ""); err != domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for empty input, got %v", err)
	}

	_, token, err := uc.Authenticate(ctx, " CAROL@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}

	p, err := uc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if p.UserID != 1 || p.Role != model.RoleCustomer {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestAuthUseCaseAuthenticateRepositoryError(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	repo.Err = errors.New("db down")
	uc := newAuthUseCase(repo, &testhelpers.QueueStub{})

	if _, _, err := uc.Authenticate(context.Background(), "a@b.c", "x"); err == nil || err == domainErrors.ErrInvalidCredentials {
		t.Fatalf("expected repository error, got %v", err)
	}
}

func TestAuthUseCaseParseTokenEmpty(t *testing.T) {
	uc := newAuthUseCase(testhelpers.NewUserRepositoryStub(), &testhelpers.QueueStub{})
	if _, err := uc.ParseToken(""); err != pkgAuth.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthUseCaseGrantRole(t *testing.T) {
	repo := testhelpers.NewUserRepositoryStub()
	uc := newAuthUseCase(repo, &testhelpers.QueueStub{})
	ctx := context.Background()

	if _, _, err := uc.Register(ctx, registration("dana@example.com", "correct-horse")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := uc.GrantRole(ctx, "Dana@example.com", model.RoleSupport); err != nil {
		t.Fatalf("grant role failed: %v", err)
	}
	usr, _ := repo.GetByEmail(ctx, "dana@example.com")
	if usr.Role != model.RoleSupport {
		t.Fatalf("expected support role, got %q", usr.Role)
	}

	if err := uc.GrantRole(ctx, "dana@example.com", "root"); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := uc.GrantRole(ctx, "ghost@example.com", model.RoleAdmin); err != domainErrors.ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	found, err := uc.GetByID(ctx, usr.ID)
	if err != nil || found.Email != "dana@example.com" {
		t.Fatalf("unexpected GetByID result %+v, %v", found, err)
	}
}
