package test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-platform/core/course"
	"github.com/irsalhamdi/course-platform/rate"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/sirupsen/logrus"
)

func (env *TestEnv) lessonOrder(t *testing.T, courseID string) []string {
	t.Helper()

	var d course.Detail
	env.expect(t, student, http.MethodGet, "/courses/"+courseID, nil, http.StatusOK, &d)

	ids := make([]string, 0, len(d.Lessons))
	for i, l := range d.Lessons {
		if l.Order != i+1 {
			t.Fatalf("expected dense positions, lesson %s is at %d", l.ID, l.Order)
		}
		ids = append(ids, l.ID)
	}
	return ids
}

func TestLessonReorder(t *testing.T) {
	env := NewTestEnv(t)

	id := env.createCourse(t, instructor, "Reordered")
	l1 := env.createLesson(t, id, "one")
	l2 := env.createLesson(t, id, "two")
	l3 := env.createLesson(t, id, "three")

	reorder := func(ids ...string) map[string]interface{} {
		return map[string]interface{}{"courseId": id, "lessonIds": ids}
	}

	env.expect(t, instructor, http.MethodPost, "/lessons/reorder", reorder(l3, l1, l2), http.StatusNoContent, nil)
	if diff := cmp.Diff([]string{l3, l1, l2}, env.lessonOrder(t, id)); diff != "" {
		t.Fatalf("wrong order. Diff:\n%s", diff)
	}

	env.expect(t, instructor, http.MethodPost, "/lessons/reorder", reorder(l1, l1), http.StatusBadRequest, nil)
	env.expect(t, instructor, http.MethodPost, "/lessons/reorder", reorder("not-an-id"), http.StatusBadRequest, nil)

	missing := map[string]interface{}{"courseId": validate.GenerateID(), "lessonIds": []string{l1}}
	env.expect(t, instructor, http.MethodPost, "/lessons/reorder", missing, http.StatusNotFound, nil)

	// l1 would land on position 3, still held by l2.
	var e errorBody
	env.expect(t, instructor, http.MethodPost, "/lessons/reorder", reorder(l3, validate.GenerateID(), l1), http.StatusConflict, &e)
	if e.Error == "" {
		t.Fatal("expected conflict to carry a message")
	}
	if diff := cmp.Diff([]string{l3, l1, l2}, env.lessonOrder(t, id)); diff != "" {
		t.Fatalf("failed reorder changed positions. Diff:\n%s", diff)
	}
}

func TestLessonEdits(t *testing.T) {
	env := NewTestEnv(t)

	id := env.createCourse(t, instructor, "Edited")
	l := env.createLesson(t, id, "draft title")

	env.expect(t, instructor, http.MethodPut, "/lessons/"+l, map[string]string{"title": "final title"}, http.StatusNoContent, nil)

	var d course.Detail
	env.expect(t, student, http.MethodGet, "/courses/"+id, nil, http.StatusOK, &d)
	exp := []course.LessonView{{ID: l, Title: "final title", Content: "draft title content", Order: 1}}
	if diff := cmp.Diff(exp, d.Lessons); diff != "" {
		t.Fatalf("wrong lessons. Diff:\n%s", diff)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"blank title", http.MethodPut, "/lessons/" + l, map[string]string{"title": " "}, http.StatusBadRequest},
		{"unknown lesson", http.MethodPut, "/lessons/" + validate.GenerateID(), map[string]string{"title": "x"}, http.StatusNotFound},
		{"malformed id", http.MethodDelete, "/lessons/nope", nil, http.StatusBadRequest},
		{"unknown course", http.MethodPost, "/lessons", map[string]string{"courseId": validate.GenerateID(), "title": "x"}, http.StatusNotFound},
		{"malformed course", http.MethodPost, "/lessons", map[string]string{"courseId": "nope", "title": "x"}, http.StatusBadRequest},
		{"delete", http.MethodDelete, "/lessons/" + l, nil, http.StatusNoContent},
		{"delete twice", http.MethodDelete, "/lessons/" + l, nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.expect(t, instructor, tt.method, tt.path, tt.body, tt.status, nil)
		})
	}
}

func TestLessonDeleteLogsDemotion(t *testing.T) {
	env := NewTestEnv(t)

	id := env.createCourse(t, instructor, "Short lived")
	l := env.createLesson(t, id, "only")
	env.expect(t, instructor, http.MethodPatch, "/courses/"+id+"/publish", nil, http.StatusNoContent, nil)

	env.Hook.Reset()
	env.expect(t, instructor, http.MethodDelete, "/lessons/"+l, nil, http.StatusNoContent, nil)

	for _, e := range env.Hook.AllEntries() {
		if e.Message == "course returned to draft after losing its last lesson" && e.Level == logrus.InfoLevel {
			if e.Data["course_id"] != id {
				t.Fatalf("expected course_id %s, got %v", id, e.Data["course_id"])
			}
			return
		}
	}
	t.Fatal("expected the demotion to be logged")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, rate.NewLimiter(2, time.Hour, time.Minute))

	env.expect(t, student, http.MethodGet, "/courses", nil, http.StatusOK, nil)
	env.expect(t, student, http.MethodGet, "/courses", nil, http.StatusOK, nil)
	env.expect(t, student, http.MethodGet, "/courses", nil, http.StatusTooManyRequests, nil)

	// Buckets are per caller.
	env.expect(t, instructor, http.MethodGet, "/courses", nil, http.StatusOK, nil)
}
