package shared

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession indicates the request carried no resolvable session.
var ErrNoSession = errors.New("no session")

// SessionManager stores authenticated principals in Redis, keyed by an
// opaque token carried in a cookie or bearer header. Tokens are stored
// under an HMAC of the configured secret, so a Redis snapshot never
// contains a usable credential.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	secret     []byte
	ttl        time.Duration
	secure     bool
}

type sessionPayload struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		secret:     []byte(secret),
		ttl:        ttl,
		secure:     secure,
	}
}

// Resolve returns the principal for the request token, or ErrNoSession.
func (sm *SessionManager) Resolve(ctx context.Context, r *http.Request) (Principal, error) {
	token := sm.token(r)
	if token == "" {
		return Principal{}, ErrNoSession
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Principal{}, ErrNoSession
		}
		return Principal{}, err
	}
	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return Principal{}, err
	}
	role, ok := ParseRole(stored.Role)
	if !ok {
		return Principal{}, ErrNoSession
	}
	return Principal{UserID: stored.UserID, Role: role}, nil
}

// Issue creates a session for the principal and sets the cookie.
func (sm *SessionManager) Issue(ctx context.Context, w http.ResponseWriter, p Principal) (string, error) {
	token := uuid.NewString()
	data, err := json.Marshal(sessionPayload{UserID: p.UserID, Role: string(p.Role)})
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), data, sm.ttl).Err(); err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(sm.ttl),
	})
	return token, nil
}

// Revoke deletes the request's session and clears the cookie.
func (sm *SessionManager) Revoke(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token := sm.token(r)
	if token == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

func (sm *SessionManager) token(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (sm *SessionManager) redisKey(token string) string {
	mac := hmac.New(sha256.New, sm.secret)
	mac.Write([]byte(token))
	return "session:" + hex.EncodeToString(mac.Sum(nil))
}
