package web

import (
	"net/http"
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	a := NewAuthManager("secret", time.Hour)
	tok, err := a.Mint("user-1", "9123456789")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := a.parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Phone != "9123456789" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewAuthManager("secret-a", time.Hour).Mint("u", "123456")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewAuthManager("secret-b", time.Hour).parse(tok); err == nil {
		t.Fatal("token minted with another secret accepted")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	a := NewAuthManager("secret", -time.Minute)
	tok, err := a.Mint("u", "123456")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.parse(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestFromRequest(t *testing.T) {
	a := NewAuthManager("secret", time.Hour)
	tok, _ := a.Mint("u", "123456")

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if _, err := a.FromRequest(req); err == nil {
		t.Fatal("missing header accepted")
	}
	req.Header.Set("Authorization", tok)
	if _, err := a.FromRequest(req); err == nil {
		t.Fatal("non-bearer header accepted")
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	claims, err := a.FromRequest(req)
	if err != nil || claims.Subject != "u" {
		t.Fatalf("claims = %+v err=%v", claims, err)
	}
}
