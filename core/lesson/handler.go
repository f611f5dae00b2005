package lesson

import (
	"context"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/api/weberr"
	"github.com/irsalhamdi/course-platform/validate"
)

func HandleCreate(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var l LessonNew
		if err := web.Decode(w, r, &l); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		id, err := svc.Create(ctx, l.CourseID, l.Title, l.Content)
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

		var l LessonUp
		if err := web.Decode(w, r, &l); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := svc.Update(ctx, id, l.Title, l.Content); err != nil {
			return weberr.FromDomain(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleDelete(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.FromDomain(err)
		}

		if err := svc.Delete(ctx, id); err != nil {
			return weberr.FromDomain(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func HandleReorder(svc *Service) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ro Reorder
		if err := web.Decode(w, r, &ro); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if err := validate.Check(ro); err != nil {
			return weberr.FromDomain(err)
		}
		if err := validate.CheckIDs(ro.LessonIDs); err != nil {
			return weberr.FromDomain(err)
		}

		if err := svc.Reorder(ctx, ro.CourseID, ro.LessonIDs); err != nil {
			return weberr.FromDomain(err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
