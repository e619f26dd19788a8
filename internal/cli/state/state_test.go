package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErr "leetbridge/pkg/errors"
)

func TestLoadMissingFile(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load missing state failed: %v", err)
	}
	if st.User != "" || st.Endpoint != "" {
		t.Fatalf("missing state should be zero, got %+v", st)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	want := SessionState{
		Endpoint:        "leetcode-cn",
		User:            "grace",
		ActiveSession:   "4750",
		CookieExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.User != want.User || got.Endpoint != want.Endpoint || got.ActiveSession != want.ActiveSession {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, want)
	}
	if !got.CookieExpiresAt.Equal(want.CookieExpiresAt) {
		t.Fatalf("expiry mismatch: %v vs %v", got.CookieExpiresAt, want.CookieExpiresAt)
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := Save(path, SessionState{User: "grace"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := Clear(path); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("state file should be removed")
	}
	// clearing twice is fine
	if err := Clear(path); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

func TestSignedIn(t *testing.T) {
	if (SessionState{}).SignedIn() {
		t.Fatal("empty state should not be signed in")
	}
	if !(SessionState{User: "grace"}).SignedIn() {
		t.Fatal("user without expiry should be signed in")
	}
	expired := SessionState{User: "grace", CookieExpiresAt: time.Now().Add(-time.Minute)}
	if expired.SignedIn() {
		t.Fatal("expired cookie should not count as signed in")
	}
}

func TestCookieExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	cookie, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}

	got, err := CookieExpiry(cookie)
	if err != nil {
		t.Fatalf("cookie expiry failed: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
}

func TestCookieExpiryInvalid(t *testing.T) {
	if _, err := CookieExpiry("not-a-jwt"); !appErr.Is(err, appErr.CookieInvalid) {
		t.Fatalf("expected CookieInvalid, got %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
	cookie, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := CookieExpiry(cookie); !appErr.Is(err, appErr.CookieInvalid) {
		t.Fatalf("expected CookieInvalid for missing exp, got %v", err)
	}
}
