package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/claims"
)

// Identity headers are set by the authenticating proxy in front of the
// service and are trusted as is.
const (
	UserIDHeader   = "X-User-Id"
	UserRoleHeader = "X-User-Role"
)

// Identity loads the caller identity forwarded by the proxy into the context.
func Identity() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if id := strings.TrimSpace(r.Header.Get(UserIDHeader)); id != "" {
				ctx = claims.Set(ctx, claims.Claims{
					UserID: id,
					Role:   strings.TrimSpace(r.Header.Get(UserRoleHeader)),
				})
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func Authenticate() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if _, err := claims.Get(ctx); err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Roles lets through callers holding one of roles.
func Roles(roles ...string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			if !clm.HasRole(roles...) {
				err := fmt.Errorf("user[%s] with role[%s] is not one of %v", clm.UserID, clm.Role, roles)
				return weberr.Forbidden(err)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
