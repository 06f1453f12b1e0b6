package users

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/syncboard/syncboard/internal/models"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
)

const (
	bcryptCost = 12
	otpTTL     = 10 * time.Minute
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Register creates a new account with a bcrypt-hashed password and a random
// avatar color. Email is normalized to lower case.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		AvatarColor:  models.RandomAvatarColor(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies email+password and returns the user on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

// Resolve maps user ids to their public projections. Unknown ids are dropped.
func (s *Service) Resolve(ctx context.Context, ids []string) (map[string]models.PublicUser, error) {
	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.PublicUser, len(found))
	for _, u := range found {
		out[u.ID] = u.Public()
	}
	return out, nil
}

// CreateResetOTP generates a 6-digit one-time code valid for 10 minutes,
// stores it on the account and returns the user plus the code for mailing.
func (s *Service) CreateResetOTP(ctx context.Context, email string) (*models.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrNotFound
	}
	otp, err := generateOTP()
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.SetResetOTP(ctx, u.ID, otp, time.Now().UTC().Add(otpTTL)); err != nil {
		return nil, "", err
	}
	return u, otp, nil
}

// VerifyResetOTP checks that the code matches the account and has not expired.
func (s *Service) VerifyResetOTP(ctx context.Context, email, otp string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil || u.ResetOTP == "" || u.ResetOTP != otp {
		return nil, ErrInvalidOTP
	}
	if !u.ResetOTPExpires.After(time.Now().UTC()) {
		return nil, ErrInvalidOTP
	}
	return u, nil
}

// ResetPassword re-hashes the password and clears the OTP after a successful
// VerifyResetOTP check.
func (s *Service) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	u, err := s.VerifyResetOTP(ctx, email, otp)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, string(hash))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateOTP() (string, error) {
	// 6 digits, 100000..999999
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
