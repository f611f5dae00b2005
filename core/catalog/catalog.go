// Package catalog is the storage gateway for courses and their lessons.
//
// Every read in this package excludes soft-deleted rows, so callers never
// have to filter them out themselves. Writes go through whatever
// sqlx.ExtContext they are given; wrap them in database.Transaction to get a
// single atomic commit.
package catalog

import (
	"strings"
	"time"
)

type Status string

const (
	Draft     Status = "draft"
	Published Status = "published"
)

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case Draft:
		return Draft, true
	case Published:
		return Published, true
	}
	return "", false
}

type Course struct {
	ID        string     `json:"id" db:"course_id"`
	Title     string     `json:"title" db:"title"`
	AuthorID  string     `json:"authorId" db:"author_id"`
	Status    Status     `json:"status" db:"status"`
	IsDeleted bool       `json:"-" db:"is_deleted"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt" db:"updated_at"`
}

// Modified is the last time the course row itself changed.
func (c Course) Modified() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}

type Lesson struct {
	ID        string     `json:"id" db:"lesson_id"`
	CourseID  string     `json:"courseId" db:"course_id"`
	Title     string     `json:"title" db:"title"`
	Content   string     `json:"content" db:"content"`
	Order     int        `json:"order" db:"lesson_order"`
	IsDeleted bool       `json:"-" db:"is_deleted"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt" db:"updated_at"`
}

func (l Lesson) Modified() time.Time {
	if l.UpdatedAt != nil {
		return *l.UpdatedAt
	}
	return l.CreatedAt
}

// NextOrder is the position a new lesson takes at the end of lessons.
// Freed positions in the middle of the sequence are never reused.
func NextOrder(lessons []Lesson) int {
	next := 1
	for _, l := range lessons {
		if l.Order >= next {
			next = l.Order + 1
		}
	}
	return next
}

// CourseQuery filters and pages a course listing.
type CourseQuery struct {
	Title  string
	Status Status
	Offset int
	Limit  int
}
