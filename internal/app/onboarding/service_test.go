package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

type fakeAccountPort struct {
	updateErr   error
	userID      string
	username    string
	displayName string
}

func (f *fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.userID = userID
	f.username = username
	f.displayName = displayName
	return f.updateErr
}

func TestOnboardNewUser_SetsDisplayName(t *testing.T) {
	accounts := &fakeAccountPort{}
	service := NewService(accounts, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if accounts.userID != "user-1" {
		t.Fatalf("updated user = %q, want user-1", accounts.userID)
	}
	if accounts.username != "" {
		t.Fatalf("username should be left unchanged, got %q", accounts.username)
	}
	if accounts.displayName != result.DisplayName {
		t.Fatalf("display name = %q, result %q", accounts.displayName, result.DisplayName)
	}
	if !regexp.MustCompile(`^[A-Z][a-z]+[A-Z][a-z]+\d{4}$`).MatchString(result.DisplayName) {
		t.Fatalf("unexpected display name format %q", result.DisplayName)
	}
}

func TestOnboardNewUser_Deterministic(t *testing.T) {
	a, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(5))).OnboardNewUser(context.Background(), "u")
	b, _ := NewService(&fakeAccountPort{}, rand.New(rand.NewSource(5))).OnboardNewUser(context.Background(), "u")
	if a.DisplayName != b.DisplayName {
		t.Fatalf("same seed gave %q and %q", a.DisplayName, b.DisplayName)
	}
}

func TestOnboardNewUser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		service *Service
		userID  string
	}{
		{name: "update failure", service: NewService(&fakeAccountPort{updateErr: errors.New("update failed")}, nil), userID: "user-1"},
		{name: "missing user", service: NewService(&fakeAccountPort{}, nil), userID: ""},
		{name: "not configured", service: NewService(nil, nil), userID: "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.service.OnboardNewUser(context.Background(), tt.userID); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
