package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"navtools/internal/config"
)

func testService() *Service {
	return NewService(config.JWTConfig{
		Secret:              "unit-test-secret",
		AccessExpireMinutes: 30,
		RefreshExpireDays:   7,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := testService()
	signed, expiresAt, err := s.IssueAccessToken(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if until := time.Until(expiresAt); until < 29*time.Minute || until > 31*time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := s.Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Type != "" {
		t.Fatalf("access token carries type %q", claims.Type)
	}
	id, err := claims.SubjectID()
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if id != 42 {
		t.Fatalf("subject = %d, want 42", id)
	}
}

func TestRefreshTokenCarriesType(t *testing.T) {
	s := testService()
	signed, err := s.IssueRefreshToken(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := s.Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Type != "refresh" {
		t.Fatalf("type = %q, want refresh", claims.Type)
	}
}

func TestDecodeRejectsBadTokens(t *testing.T) {
	s := testService()
	good, _, err := s.IssueAccessToken(1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewService(config.JWTConfig{
		Secret:              "some-other-secret",
		AccessExpireMinutes: 30,
		RefreshExpireDays:   7,
	})
	foreign, _, _ := other.IssueAccessToken(1)

	expired := NewService(config.JWTConfig{
		Secret:              "unit-test-secret",
		AccessExpireMinutes: -1,
		RefreshExpireDays:   7,
	})
	expiredToken, _, _ := expired.IssueAccessToken(1)

	// flip a character inside the signature segment
	tampered := good[:len(good)-2] + "xx"

	cases := map[string]string{
		"garbage":         "not.a.token",
		"empty":           "",
		"wrong secret":    foreign,
		"expired":         expiredToken,
		"tampered":        tampered,
		"missing segment": strings.Join(strings.Split(good, ".")[:2], "."),
	}
	for name, tok := range cases {
		if _, err := s.Decode(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestRefreshRotatesPair(t *testing.T) {
	s := testService()
	refresh, err := s.IssueRefreshToken(9)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	access, newRefresh, expiresAt, err := s.Refresh(refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if until := time.Until(expiresAt); until < 29*time.Minute || until > 31*time.Minute {
		t.Fatalf("new access expiry %v not anchored to refresh time", expiresAt)
	}

	accessClaims, err := s.Decode(access)
	if err != nil {
		t.Fatalf("decode new access: %v", err)
	}
	if id, _ := accessClaims.SubjectID(); id != 9 {
		t.Fatalf("new access subject = %d, want 9", id)
	}
	refreshClaims, err := s.Decode(newRefresh)
	if err != nil {
		t.Fatalf("decode new refresh: %v", err)
	}
	if refreshClaims.Type != "refresh" {
		t.Fatalf("rotated refresh type = %q", refreshClaims.Type)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s := testService()
	access, _, err := s.IssueAccessToken(3)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, _, err := s.Refresh(access); !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("err = %v, want ErrWrongTokenType", err)
	}
}
