package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErr "leetbridge/pkg/errors"
)

// SessionState stores the adapter's view of the signed-in account.
type SessionState struct {
	Endpoint        string    `json:"endpoint"`
	User            string    `json:"user,omitempty"`
	ActiveSession   string    `json:"active_session,omitempty"`
	CookieExpiresAt time.Time `json:"cookie_expires_at,omitempty"`
}

// SignedIn reports whether a user is recorded and the session cookie has
// not visibly expired.
func (s SessionState) SignedIn() bool {
	if s.User == "" {
		return false
	}
	if s.CookieExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(s.CookieExpiresAt)
}

func Load(path string) (SessionState, error) {
	var st SessionState
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, appErr.Wrap(err, appErr.StateReadFailed)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, appErr.Wrap(err, appErr.StateReadFailed)
	}
	return st, nil
}

func Save(path string, st SessionState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return appErr.Wrap(err, appErr.StateWriteFailed)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return appErr.Wrap(err, appErr.StateWriteFailed)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return appErr.Wrap(err, appErr.StateWriteFailed)
	}
	return nil
}

func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return appErr.Wrap(err, appErr.StateWriteFailed)
	}
	return nil
}

// CookieExpiry reads the expiry claim from a service session cookie. The
// cookie is a JWT; the signature is not verified, the value is used for
// display and staleness checks only.
func CookieExpiry(cookie string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(cookie, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, appErr.Wrap(err, appErr.CookieInvalid)
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, appErr.New(appErr.CookieInvalid).WithMessage("cookie has no expiry claim")
	}
	return exp.Time, nil
}
