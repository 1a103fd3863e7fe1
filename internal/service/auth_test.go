package service

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := IssueToken(42, true, time.Hour)
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("не удалось разобрать токен: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("user id %d, ожидался 42", claims.UserID)
	}
	if !claims.IsAdmin {
		t.Error("потерян флаг админа")
	}
}

func TestParseTokenInvalid(t *testing.T) {
	InitJWT("test-secret")

	if _, err := ParseToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("мусор вместо токена: err = %v, ожидался ErrInvalidToken", err)
	}

	// токен с чужим секретом не проходит
	InitJWT("other-secret")
	token, err := IssueToken(1, false, time.Hour)
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}

	InitJWT("test-secret")
	if _, err := ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("чужой секрет: err = %v, ожидался ErrInvalidToken", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	InitJWT("test-secret")

	token, err := IssueToken(7, false, -time.Minute)
	if err != nil {
		t.Fatalf("не удалось выпустить токен: %v", err)
	}

	if _, err := ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("просроченный токен: err = %v, ожидался ErrInvalidToken", err)
	}
}
