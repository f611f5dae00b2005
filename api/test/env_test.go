package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irsalhamdi/course-platform/api"
	"github.com/irsalhamdi/course-platform/api/middleware"
	"github.com/irsalhamdi/course-platform/core/claims"
	"github.com/irsalhamdi/course-platform/database/dbtest"
	"github.com/irsalhamdi/course-platform/rate"
	"github.com/sirupsen/logrus/hooks/test"
)

type TestEnv struct {
	*httptest.Server
	Hook *test.Hook
}

type caller struct {
	ID   string
	Role string
}

var (
	anonymous  = caller{}
	admin      = caller{ID: "admin-1", Role: claims.RoleAdmin}
	instructor = caller{ID: "instructor-1", Role: claims.RoleInstructor}
	other      = caller{ID: "instructor-2", Role: claims.RoleInstructor}
	student    = caller{ID: "student-1", Role: claims.RoleUser}
)

func NewTestEnv(t *testing.T) *TestEnv {
	return newTestEnv(t, rate.NewLimiter(1000, time.Millisecond, time.Minute))
}

func newTestEnv(t *testing.T, lim *rate.Limiter) *TestEnv {
	t.Helper()

	db := dbtest.DB(t)
	log, hook := dbtest.Logger(t)
	t.Cleanup(lim.Close)

	srv := httptest.NewServer(api.APIMux(api.APIConfig{
		CorsOrigin: "*",
		Log:        log,
		DB:         db,
		Limiter:    lim,
	}))
	t.Cleanup(srv.Close)

	return &TestEnv{Server: srv, Hook: hook}
}

// do sends body as JSON on behalf of c and returns the status and raw body.
func (env *TestEnv) do(t *testing.T, c caller, method string, path string, body interface{}) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, env.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != "" {
		r.Header.Set(middleware.UserIDHeader, c.ID)
		r.Header.Set(middleware.UserRoleHeader, c.Role)
	}

	w, err := env.Client().Do(r)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	out, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	return w.StatusCode, out
}

// expect fails the test unless the request answers with status, and decodes
// the body into dst when given.
func (env *TestEnv) expect(t *testing.T, c caller, method string, path string, body interface{}, status int, dst interface{}) {
	t.Helper()

	code, out := env.do(t, c, method, path, body)
	if code != status {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, code, out)
	}
	if dst != nil {
		if err := json.Unmarshal(out, dst); err != nil {
			t.Fatalf("%s %s: decoding response: %v", method, path, err)
		}
	}
}

type created struct {
	ID string `json:"id"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (env *TestEnv) createCourse(t *testing.T, c caller, title string) string {
	t.Helper()

	var res created
	env.expect(t, c, http.MethodPost, "/courses", map[string]string{"title": title}, http.StatusCreated, &res)
	return res.ID
}

func (env *TestEnv) createLesson(t *testing.T, courseID string, title string) string {
	t.Helper()

	var res created
	body := map[string]string{"courseId": courseID, "title": title, "content": title + " content"}
	env.expect(t, instructor, http.MethodPost, "/lessons", body, http.StatusCreated, &res)
	return res.ID
}
