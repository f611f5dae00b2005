package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/database/dbtest"
	"github.com/irsalhamdi/course-platform/validate"
)

func TestParseStatus(t *testing.T) {
	tests := map[string]struct {
		st Status
		ok bool
	}{
		"draft":     {Draft, true},
		"Published": {Published, true},
		" DRAFT ":   {Draft, true},
		"archived":  {"", false},
		"":          {"", false},
	}

	for in, exp := range tests {
		st, ok := ParseStatus(in)
		if st != exp.st || ok != exp.ok {
			t.Fatalf("ParseStatus(%q): expected (%q, %v), got (%q, %v)", in, exp.st, exp.ok, st, ok)
		}
	}
}

func TestNextOrder(t *testing.T) {
	tests := []struct {
		orders []int
		exp    int
	}{
		{nil, 1},
		{[]int{1}, 2},
		{[]int{1, 2, 3}, 4},
		{[]int{1, 3}, 4},
		{[]int{5, 2}, 6},
	}

	for _, tt := range tests {
		lessons := make([]Lesson, 0, len(tt.orders))
		for _, o := range tt.orders {
			lessons = append(lessons, Lesson{Order: o})
		}
		if got := NextOrder(lessons); got != tt.exp {
			t.Fatalf("NextOrder(%v): expected %d, got %d", tt.orders, tt.exp, got)
		}
	}
}

func TestStoreHidesDeletedRows(t *testing.T) {
	db := dbtest.DB(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := Course{ID: validate.GenerateID(), Title: "course", AuthorID: "a", Status: Draft, CreatedAt: now}
	if err := CreateCourse(ctx, db, c); err != nil {
		t.Fatalf("creating course: %v", err)
	}

	active := Lesson{ID: validate.GenerateID(), CourseID: c.ID, Title: "active", Order: 2, CreatedAt: now}
	gone := Lesson{ID: validate.GenerateID(), CourseID: c.ID, Title: "gone", Order: 1, IsDeleted: true, CreatedAt: now}
	for _, l := range []Lesson{active, gone} {
		if err := CreateLesson(ctx, db, l); err != nil {
			t.Fatalf("creating lesson: %v", err)
		}
	}

	if _, err := FetchLesson(ctx, db, gone.ID); !errors.Is(err, database.ErrDBNotFound) {
		t.Fatalf("expected deleted lesson to be not found, got %v", err)
	}

	n, err := CountLessons(ctx, db, c.ID)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 active lesson, got %d (%v)", n, err)
	}

	grouped, err := FetchLessonsByCourses(ctx, db, []string{c.ID, validate.GenerateID()})
	if err != nil {
		t.Fatalf("fetching lessons by courses: %v", err)
	}
	if diff := cmp.Diff(map[string][]Lesson{c.ID: {active}}, grouped); diff != "" {
		t.Fatalf("wrong grouped lessons. Diff:\n%s", diff)
	}

	c.IsDeleted = true
	if err := UpdateCourse(ctx, db, c); err != nil {
		t.Fatalf("deleting course: %v", err)
	}
	if _, err := FetchCourse(ctx, db, c.ID); !errors.Is(err, database.ErrDBNotFound) {
		t.Fatalf("expected deleted course to be not found, got %v", err)
	}

	courses, err := QueryCourses(ctx, db, CourseQuery{Limit: 10})
	if err != nil {
		t.Fatalf("querying courses: %v", err)
	}
	if len(courses) != 0 {
		t.Fatalf("expected no visible courses, got %d", len(courses))
	}
}

func TestDeletedLessonFreesItsPosition(t *testing.T) {
	db := dbtest.DB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c := Course{ID: validate.GenerateID(), Title: "course", AuthorID: "a", Status: Draft, CreatedAt: now}
	if err := CreateCourse(ctx, db, c); err != nil {
		t.Fatalf("creating course: %v", err)
	}

	first := Lesson{ID: validate.GenerateID(), CourseID: c.ID, Title: "first", Order: 1, CreatedAt: now}
	if err := CreateLesson(ctx, db, first); err != nil {
		t.Fatalf("creating lesson: %v", err)
	}

	clash := Lesson{ID: validate.GenerateID(), CourseID: c.ID, Title: "clash", Order: 1, CreatedAt: now}
	if err := CreateLesson(ctx, db, clash); !database.IsDuplicated(err) {
		t.Fatalf("expected duplicated position to be rejected, got %v", err)
	}

	first.IsDeleted = true
	if err := UpdateLesson(ctx, db, first); err != nil {
		t.Fatalf("deleting lesson: %v", err)
	}
	if err := CreateLesson(ctx, db, clash); err != nil {
		t.Fatalf("expected position of a deleted lesson to be free, got %v", err)
	}
}
