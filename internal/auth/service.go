package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/student-rating/internal/lib/sl"
	"github.com/ayush/student-rating/internal/models"
)

// UserStore is the part of the credential store the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error)
}

// AdminSeed describes the bootstrap administrator created at startup.
type AdminSeed struct {
	FullName string
	Email    string
	Password string
}

// Service registers users and verifies logins.
type Service struct {
	users UserStore
	cost  int
	log   *slog.Logger

	// compared against for unknown emails, at the same cost as real hashes
	dummyHash []byte
}

// NewService returns an authenticator hashing with the given bcrypt cost.
// Production config enforces cost >= 12; tests pass bcrypt.MinCost.
func NewService(users UserStore, cost int, log *slog.Logger) *Service {
	return &Service{users: users, cost: cost, log: log, dummyHash: newDummyHash(cost)}
}

func newDummyHash(cost int) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		h, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
	}
	return h
}

// Register creates a student account and returns its principal.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.Principal, error) {
	const op = "auth.Service.Register"

	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPasswordMismatch)
	}
	u, err := s.createUser(ctx, models.NewUser{
		FullName: req.FullName,
		Phone:    req.Phone,
		Group:    req.Group,
		Email:    req.Email,
		Role:     models.RoleStudent,
	}, req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("user_id", u.ID))
	return models.PrincipalFromUser(u), nil
}

// ProvisionStudent creates a student account on behalf of an administrator.
func (s *Service) ProvisionStudent(ctx context.Context, req models.AddStudentRequest) (*models.User, error) {
	const op = "auth.Service.ProvisionStudent"

	u, err := s.createUser(ctx, models.NewUser{
		FullName: req.FullName,
		Phone:    req.Phone,
		Group:    req.Group,
		Email:    req.Email,
		Role:     models.RoleStudent,
	}, req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("student provisioned", slog.Int64("user_id", u.ID))
	return u, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, seed AdminSeed) error {
	const op = "auth.Service.EnsureAdmin"

	if seed.Email == "" {
		return nil
	}
	_, err := s.users.GetUserByEmail(ctx, seed.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.createUser(ctx, models.NewUser{
		FullName: seed.FullName,
		Email:    seed.Email,
		Role:     models.RoleAdmin,
	}, seed.Password)
	if errors.Is(err, models.ErrEmailTaken) {
		// another instance seeded it first
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("bootstrap admin created", slog.Int64("user_id", u.ID))
	return nil
}

func (s *Service) createUser(ctx context.Context, nu models.NewUser, password string) (*models.User, error) {
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}
	nu.Email = strings.TrimSpace(nu.Email)
	nu.PasswordHash = hash

	u, err := s.users.CreateUser(ctx, nu)
	if errors.Is(err, models.ErrDuplicateEmail) {
		return nil, models.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies an email/password pair. Unknown emails and wrong passwords
// fail identically; a disabled account is only reported once the password matched.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Principal, error) {
	const op = "auth.Service.Login"

	creds, err := s.users.GetCredentialsByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Warn("stored hash unusable", slog.Int64("user_id", creds.ID), sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if !creds.Active {
		return nil, fmt.Errorf("%s: %w", op, models.ErrAccountDisabled)
	}

	return models.PrincipalFromUser(&creds.User), nil
}
