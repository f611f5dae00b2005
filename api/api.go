package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-platform/api/middleware"
	"github.com/irsalhamdi/course-platform/api/web"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/core/lesson"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/rate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Identity())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.Limiter != nil {
		a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))
	}

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	courses := course.NewService(cfg.Log, cfg.DB)
	lessons := lesson.NewService(cfg.Log, cfg.DB)

	authen := middleware.Authenticate()
	author := middleware.Roles(claims.RoleAdmin, claims.RoleInstructor)

	a.Handle(http.MethodGet, "/readiness", handleReadiness(cfg.DB))

	a.Handle(http.MethodGet, "/courses/{id}/summary", course.HandleShowSummary(courses), authen)
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(courses), authen)
	a.Handle(http.MethodGet, "/courses", course.HandleList(courses), authen)
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(courses), author)
	a.Handle(http.MethodPut, "/courses/{id}", course.HandleUpdate(courses), author)
	a.Handle(http.MethodPatch, "/courses/{id}/publish", course.HandlePublish(courses), authen)
	a.Handle(http.MethodPatch, "/courses/{id}/unpublish", course.HandleUnpublish(courses), authen)
	a.Handle(http.MethodDelete, "/courses/{id}", course.HandleDelete(courses), authen)

	a.Handle(http.MethodPost, "/lessons/reorder", lesson.HandleReorder(lessons), author)
	a.Handle(http.MethodPost, "/lessons", lesson.HandleCreate(lessons), author)
	a.Handle(http.MethodPut, "/lessons/{id}", lesson.HandleUpdate(lessons), author)
	a.Handle(http.MethodDelete, "/lessons/{id}", lesson.HandleDelete(lessons), author)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}

func handleReadiness(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		if err := database.StatusCheck(ctx, db); err != nil {
			status = "db not ready"
			code = http.StatusInternalServerError
		}

		return web.Respond(ctx, w, struct {
			Status string `json:"status"`
		}{status}, code)
	}
}
