package auth

import (
	"context"
	"errors"
	"strings"
)

// LoginEvent describes a login attempt as seen by hooks.
type LoginEvent struct {
	Username string
	Success  bool
	Remote   string
}

// PreLoginHook runs before credentials are checked. Returning an error
// aborts the attempt.
type PreLoginHook func(ctx context.Context, username string) error

// PostLoginHook runs after the attempt resolves, successful or not.
type PostLoginHook func(ctx context.Context, ev LoginEvent)

// Hooks is an ordered chain of login hooks. The zero value is usable.
type Hooks struct {
	pre  []PreLoginHook
	post []PostLoginHook
}

// Pre appends a pre-login hook.
func (h *Hooks) Pre(fn PreLoginHook) {
	h.pre = append(h.pre, fn)
}

// Post appends a post-login hook.
func (h *Hooks) Post(fn PostLoginHook) {
	h.post = append(h.post, fn)
}

// RunPre runs the pre-login chain in order, stopping at the first
// error.
func (h *Hooks) RunPre(ctx context.Context, username string) error {
	for _, fn := range h.pre {
		if err := fn(ctx, username); err != nil {
			return err
		}
	}
	return nil
}

// RunPost runs the post-login chain in order.
func (h *Hooks) RunPost(ctx context.Context, ev LoginEvent) {
	for _, fn := range h.post {
		fn(ctx, ev)
	}
}

// MaxUsernameLen bounds usernames submitted to the login screen.
const MaxUsernameLen = 50

// suspiciousChars covers markup and query metacharacters that no
// registered username carries.
const suspiciousChars = "<>\"'`;\\"

// ScreenLogin is a pre-login hook that rejects malformed usernames
// before any credential check runs.
func ScreenLogin(ctx context.Context, username string) error {
	if username == "" || len(username) > MaxUsernameLen {
		return errors.New("invalid username")
	}
	if strings.ContainsAny(username, suspiciousChars) {
		return errors.New("username contains invalid characters")
	}
	return nil
}
