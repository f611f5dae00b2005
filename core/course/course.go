package course

import (
	"time"

	"github.com/irsalhamdi/course-platform/core/catalog"
)

type CourseNew struct {
	Title string `json:"title" validate:"required"`
}

type CourseUp struct {
	Title string `json:"title" validate:"required"`
}

type Summary struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Status        catalog.Status `json:"status"`
	ActiveLessons int            `json:"totalActiveLessons"`
	LastModified  time.Time      `json:"lastModified"`
	AuthorID      string         `json:"authorId"`
}

type Detail struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Status   catalog.Status `json:"status"`
	AuthorID string         `json:"authorId"`
	Lessons  []LessonView   `json:"lessons"`
}

type LessonView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// Filter selects a page of courses. Query is matched as a literal substring
// of the title. A Status that does not name a known status is ignored and
// PageSize is capped at 100.
type Filter struct {
	Query    string
	Status   string
	Page     int
	PageSize int
}

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

func summarize(c catalog.Course, lessons []catalog.Lesson) Summary {
	last := c.Modified()
	for _, l := range lessons {
		if m := l.Modified(); m.After(last) {
			last = m
		}
	}

	return Summary{
		ID:            c.ID,
		Title:         c.Title,
		Status:        c.Status,
		ActiveLessons: len(lessons),
		LastModified:  last,
		AuthorID:      c.AuthorID,
	}
}
