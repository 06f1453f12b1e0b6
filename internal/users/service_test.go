package users

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.Register(ctx, "Ada Lovelace", "Ada@Example.COM", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %s", u.Email)
	}
	if u.ID == "" || u.AvatarColor == "" {
		t.Fatalf("expected id and avatar color to be assigned: %+v", u)
	}
	if u.PasswordHash == "secret123" {
		t.Fatal("password stored in plain text")
	}

	// duplicate email rejected regardless of case
	if _, err := svc.Register(ctx, "Other", "ADA@example.com", "whatever1"); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// correct credentials
	got, err := svc.Authenticate(ctx, "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("unexpected user: %+v", got)
	}

	// wrong password and unknown email both map to the same error
	if _, err := svc.Authenticate(ctx, "ada@example.com", "nope"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@example.com", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResetOTPFlow(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Bob", "bob@example.com", "oldpassword")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// unknown email
	if _, _, err := svc.CreateResetOTP(ctx, "ghost@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, otp, err := svc.CreateResetOTP(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(otp) != 6 {
		t.Fatalf("expected 6-digit OTP, got %q", otp)
	}

	if _, err := svc.VerifyResetOTP(ctx, "bob@example.com", "000000"); err != ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP for wrong code, got %v", err)
	}
	if _, err := svc.VerifyResetOTP(ctx, "bob@example.com", otp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ResetPassword(ctx, "bob@example.com", otp, "newpassword"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := repo.GetByID(ctx, u.ID)
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpassword")); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
	if stored.ResetOTP != "" {
		t.Fatal("OTP not cleared after reset")
	}

	// expired code is rejected
	_, otp2, err := svc.CreateResetOTP(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.SetResetOTP(ctx, u.ID, otp2, time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.VerifyResetOTP(ctx, "bob@example.com", otp2); err != ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP for expired code, got %v", err)
	}
}
