package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/rate"
)

// RateLimit throttles callers by user id, or by remote address for
// anonymous requests.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			key := remoteHost(r)
			if clm, err := claims.Get(ctx); err == nil {
				key = "user:" + clm.UserID
			}

			if !lim.Allow(key) {
				return weberr.TooManyRequests(fmt.Errorf("rate limit exceeded for %s", key))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "addr:" + r.RemoteAddr
	}
	return "addr:" + host
}
