package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tcommerce/tcommerce-backend/api/responses"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
	"github.com/tcommerce/tcommerce-backend/pkg/logger"
)

// attemptCounter is the fixed-window counter surface the limiter needs.
type attemptCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy caps auth attempts per client IP and per submitted
// email over a fixed window.
type AuthRateLimitPolicy struct {
	scope      string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds the policy for one auth surface, e.g. "login".
// A zero window or all-zero limits disable the policy.
func NewAuthRateLimitPolicy(scope string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	scope = strings.ToLower(strings.TrimSpace(scope))
	if scope == "" {
		scope = "auth"
	}
	return AuthRateLimitPolicy{scope: scope, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) active() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// AuthRateLimit throttles an auth endpoint. Requests are counted first
// against the client IP, then against a hash of the submitted email so one
// account cannot be hammered from many addresses. The body is restored for
// the next handler.
func AuthRateLimit(policy AuthRateLimitPolicy, counters attemptCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || counters == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.ipLimit > 0 {
				if ip := remoteIP(r); ip != "" {
					blocked, count, err := overLimit(ctx, counters, "rl:ip:"+policy.scope+":"+ip, policy.window, policy.ipLimit)
					switch {
					case err != nil:
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					case blocked:
						policy.reject(ctx, logg, w, "ip", map[string]any{"ip": ip, "attempts": count})
						return
					}
				}
			}

			if policy.emailLimit > 0 {
				body, err := io.ReadAll(r.Body)
				if err != nil {
					responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))

				if hash := emailHash(body); hash != "" {
					blocked, count, err := overLimit(ctx, counters, "rl:email:"+policy.scope+":"+hash, policy.window, policy.emailLimit)
					switch {
					case err != nil:
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
						return
					case blocked:
						policy.reject(ctx, logg, w, "email", map[string]any{"email_hash": hash, "attempts": count})
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func overLimit(ctx context.Context, counters attemptCounter, key string, window time.Duration, limit int) (bool, int64, error) {
	count, err := counters.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count > int64(limit), count, nil
}

func (p AuthRateLimitPolicy) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, source string, fields map[string]any) {
	if logg != nil {
		fields["policy"] = p.scope
		fields["source"] = source
		fields["window_seconds"] = int(p.window.Seconds())
		logg.Warn(logg.WithFields(ctx, fields), "auth.throttled")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, slow down"))
}

// remoteIP prefers proxy headers over the socket address.
func remoteIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// emailHash extracts the email from a JSON auth payload and hashes it so raw
// addresses never reach the counter store or the logs.
func emailHash(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}
