// Package guards gates page routes on the bootstrapped session.
package guards

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/web/session"
)

const (
	// FromParam carries the originally requested location through the login flow
	FromParam = "from"
	// RetryParam counts placeholder reloads of a page whose bootstrap did not finish
	RetryParam = "bootstrap_retry"

	// MaxRefreshDelay caps the reload interval of the loading placeholder
	MaxRefreshDelay = 30 * time.Second
)

const loadingPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Loading</title></head>
<body><p>Loading&hellip;</p></body>
</html>
`

// RequireAuthenticated renders a loading placeholder while the session is
// bootstrapping, redirects to the login page when there is no user and
// otherwise serves next.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := session.FromContext(r.Context())

		if s.Bootstrapping() {
			RenderLoading(w, r)
			return
		}
		if s.User() == nil {
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles serves next when the session user holds at least one permitted
// role and redirects to the generic dashboard otherwise. A missing user holds no roles.
func RequireRoles(permitted ...rbac.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			held := session.FromContext(r.Context()).Roles()
			if !rbac.HasAnyRole(held, permitted) {
				http.Redirect(w, r, rbac.GenericDashboardPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RenderLoading writes the neutral placeholder shown while bootstrapping.
// The page reloads itself so the guard runs again, and every reload starts a
// new identity fetch. The interval doubles with each attempt recorded in
// RetryParam, from one second up to MaxRefreshDelay.
func RenderLoading(w http.ResponseWriter, r *http.Request) {
	attempt, _ := strconv.Atoi(r.URL.Query().Get(RetryParam))
	if attempt < 0 {
		attempt = 0
	}

	next := *r.URL
	q := next.Query()
	q.Set(RetryParam, strconv.Itoa(attempt+1))
	next.RawQuery = q.Encode()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", int(RefreshDelay(attempt)/time.Second), next.RequestURI()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(loadingPage))
}

// RefreshDelay returns the placeholder reload interval for a retry attempt
func RefreshDelay(attempt int) time.Duration {
	delay := time.Second
	for i := 0; i < attempt && delay < MaxRefreshDelay; i++ {
		delay *= 2
	}
	if delay > MaxRefreshDelay {
		delay = MaxRefreshDelay
	}
	return delay
}

// RedirectToLogin sends the browser to the login page, remembering where it was going
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	from := *r.URL
	q := from.Query()
	if q.Has(RetryParam) {
		q.Del(RetryParam)
		from.RawQuery = q.Encode()
	}
	http.Redirect(w, r, LoginURL(from.RequestURI()), http.StatusSeeOther)
}

// LoginURL builds the login location for a requested path
func LoginURL(from string) string {
	if from == "" || from == rbac.LoginPath {
		return rbac.LoginPath
	}
	q := url.Values{FromParam: []string{from}}
	return rbac.LoginPath + "?" + q.Encode()
}

// SafeRedirect returns from when it is a local path and fallback otherwise
func SafeRedirect(from, fallback string) string {
	if from == "" || from[0] != '/' {
		return fallback
	}
	if len(from) > 1 && (from[1] == '/' || from[1] == '\\') {
		return fallback
	}
	u, err := url.Parse(from)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	if u.Path == rbac.LoginPath {
		return fallback
	}
	return from
}
