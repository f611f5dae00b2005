package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/validate"
)

func HandleCreate(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var c CourseNew
		if err := web.Decode(w, r, &c); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		id, err := svc.Create(ctx, c.Title, clm.UserID)
		if err != nil {
			return weberr.FromDomain(err)
		}

		return web.Respond(ctx, w, struct {
			ID string `json:"id"`
		}{id}, http.StatusCreated)
	}
}

func HandleUpdate(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.FromDomain(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var c CourseUp
		if err := web.Decode(w, r, &c); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := svc.Update(ctx, id, c.Title, clm.UserID, clm.IsAdmin()); err != nil {
			return weberr.FromDomain(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandlePublish(svc *Service) web.Handler {
	return handleTransition(svc.Publish)
}

func HandleUnpublish(svc *Service) web.Handler {
	return handleTransition(svc.Unpublish)
}

func HandleDelete(svc *Service) web.Handler {
	return handleTransition(svc.Delete)
}

type transition func(ctx context.Context, id string, callerID string, isAdmin bool) error

func handleTransition(fn transition) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.FromDomain(err)
		}

		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := fn(ctx, id, clm.UserID, clm.IsAdmin()); err != nil {
			return weberr.FromDomain(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleShowSummary(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.FromDomain(err)
		}

		s, ok, err := svc.Summary(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching summary of course[%s]: %w", id, err)
		}
		if !ok {
			return weberr.NotFound(fmt.Errorf("course[%s] not found", id))
		}

		return web.Respond(ctx, w, s, http.StatusOK)
	}
}

func HandleShow(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.FromDomain(err)
		}

		d, ok, err := svc.Detail(ctx, id)
		if err != nil {
			return fmt.Errorf("fetching course[%s]: %w", id, err)
		}
		if !ok {
			return weberr.NotFound(fmt.Errorf("course[%s] not found", id))
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleList(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q := r.URL.Query()

		page, err := intParam(q.Get("page"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid page: %w", err))
		}
		size, err := intParam(q.Get("pageSize"))
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("invalid page size: %w", err))
		}

		f := Filter{
			Query:    q.Get("q"),
			Status:   q.Get("status"),
			Page:     page,
			PageSize: size,
		}

		sums, err := svc.Search(ctx, f)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, sums, http.StatusOK)
	}
}

// intParam reads an optional numeric query value; empty means zero.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
