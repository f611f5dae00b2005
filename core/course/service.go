package course

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/irsalhamdi/course-platform/core/catalog"
	"github.com/irsalhamdi/course-platform/core/errs"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Service enforces the course lifecycle rules. It holds no per-course state;
// every call loads what it needs and commits once.
type Service struct {
	log logrus.FieldLogger
	db  *sqlx.DB
	now func() time.Time
}

func NewService(log logrus.FieldLogger, db *sqlx.DB) *Service {
	return &Service{
		log: log.WithField("service", "course"),
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, title string, authorID string) (string, error) {
	nc := CourseNew{Title: strings.TrimSpace(title)}
	if err := validate.Check(nc); err != nil {
		return "", err
	}
	if strings.TrimSpace(authorID) == "" {
		return "", errs.Validation("author is required")
	}

	c := catalog.Course{
		ID:        validate.GenerateID(),
		Title:     nc.Title,
		AuthorID:  authorID,
		Status:    catalog.Draft,
		CreatedAt: s.now(),
	}

	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		return catalog.CreateCourse(ctx, tx, c)
	})
	if err != nil {
		return "", fmt.Errorf("creating course for author[%s]: %w", authorID, err)
	}

	s.log.WithFields(logrus.Fields{"course_id": c.ID, "author_id": authorID}).Info("course created")
	return c.ID, nil
}

func (s *Service) Update(ctx context.Context, id string, title string, callerID string, isAdmin bool) error {
	up := CourseUp{Title: strings.TrimSpace(title)}
	if err := validate.Check(up); err != nil {
		return err
	}

	err := s.mutate(ctx, id, callerID, isAdmin, func(tx sqlx.ExtContext, c *catalog.Course) error {
		c.Title = up.Title
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating course[%s]: %w", id, err)
	}
	return nil
}

func (s *Service) Publish(ctx context.Context, id string, callerID string, isAdmin bool) error {
	err := s.mutate(ctx, id, callerID, isAdmin, func(tx sqlx.ExtContext, c *catalog.Course) error {
		n, err := catalog.CountLessons(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.BusinessRule("cannot publish a course with 0 active lessons")
		}

		c.Status = catalog.Published
		return nil
	})
	if err != nil {
		return fmt.Errorf("publishing course[%s]: %w", id, err)
	}

	s.log.WithFields(logrus.Fields{"course_id": id, "caller_id": callerID}).Info("course published")
	return nil
}

// Unpublish moves the course back to draft whatever its lessons look like.
func (s *Service) Unpublish(ctx context.Context, id string, callerID string, isAdmin bool) error {
	err := s.mutate(ctx, id, callerID, isAdmin, func(tx sqlx.ExtContext, c *catalog.Course) error {
		c.Status = catalog.Draft
		return nil
	})
	if err != nil {
		return fmt.Errorf("unpublishing course[%s]: %w", id, err)
	}

	s.log.WithFields(logrus.Fields{"course_id": id, "caller_id": callerID}).Info("course unpublished")
	return nil
}

// Delete soft deletes the course. Its lessons are left untouched.
func (s *Service) Delete(ctx context.Context, id string, callerID string, isAdmin bool) error {
	err := s.mutate(ctx, id, callerID, isAdmin, func(tx sqlx.ExtContext, c *catalog.Course) error {
		c.IsDeleted = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting course[%s]: %w", id, err)
	}

	s.log.WithFields(logrus.Fields{"course_id": id, "caller_id": callerID}).Info("course deleted")
	return nil
}

// Summary reports false when the course does not exist or was deleted.
func (s *Service) Summary(ctx context.Context, id string) (Summary, bool, error) {
	c, lessons, ok, err := s.graph(ctx, id)
	if err != nil || !ok {
		return Summary{}, ok, err
	}
	return summarize(c, lessons), true, nil
}

// Detail reports false when the course does not exist or was deleted.
func (s *Service) Detail(ctx context.Context, id string) (Detail, bool, error) {
	c, lessons, ok, err := s.graph(ctx, id)
	if err != nil || !ok {
		return Detail{}, ok, err
	}

	d := Detail{
		ID:       c.ID,
		Title:    c.Title,
		Status:   c.Status,
		AuthorID: c.AuthorID,
		Lessons:  make([]LessonView, 0, len(lessons)),
	}
	for _, l := range lessons {
		d.Lessons = append(d.Lessons, LessonView{
			ID:      l.ID,
			Title:   l.Title,
			Content: l.Content,
			Order:   l.Order,
		})
	}
	return d, true, nil
}

func (s *Service) Search(ctx context.Context, f Filter) ([]Summary, error) {
	if f.Page <= 0 {
		f.Page = defaultPage
	}
	if f.PageSize <= 0 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if f.Page-1 > math.MaxInt32/f.PageSize {
		return nil, errs.Validation("page %d is out of range", f.Page)
	}

	cq := catalog.CourseQuery{
		Title:  f.Query,
		Offset: (f.Page - 1) * f.PageSize,
		Limit:  f.PageSize,
	}
	if st, ok := catalog.ParseStatus(f.Status); ok {
		cq.Status = st
	}

	courses, err := catalog.QueryCourses(ctx, s.db, cq)
	if err != nil {
		return nil, fmt.Errorf("searching courses: %w", err)
	}

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}

	lessons, err := catalog.FetchLessonsByCourses(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("searching courses: %w", err)
	}

	sums := make([]Summary, 0, len(courses))
	for _, c := range courses {
		sums = append(sums, summarize(c, lessons[c.ID]))
	}
	return sums, nil
}

// mutate loads the course, checks the caller may change it, applies fn and
// commits the result together with a fresh modification time.
func (s *Service) mutate(ctx context.Context, id string, callerID string, isAdmin bool, fn func(tx sqlx.ExtContext, c *catalog.Course) error) error {
	return database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		c, err := load(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := authorize(c, callerID, isAdmin); err != nil {
			return err
		}

		if err := fn(tx, &c); err != nil {
			return err
		}

		now := s.now()
		c.UpdatedAt = &now

		return catalog.UpdateCourse(ctx, tx, c)
	})
}

func (s *Service) graph(ctx context.Context, id string) (catalog.Course, []catalog.Lesson, bool, error) {
	c, err := catalog.FetchCourse(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return catalog.Course{}, nil, false, nil
		}
		return catalog.Course{}, nil, false, err
	}

	lessons, err := catalog.FetchLessons(ctx, s.db, id)
	if err != nil {
		return catalog.Course{}, nil, false, err
	}
	return c, lessons, true, nil
}

func load(ctx context.Context, ext sqlx.ExtContext, id string) (catalog.Course, error) {
	c, err := catalog.FetchCourse(ctx, ext, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return catalog.Course{}, errs.NotFound("course[%s] not found", id)
		}
		return catalog.Course{}, err
	}
	return c, nil
}

// authorize lets admins and the course author through.
func authorize(c catalog.Course, callerID string, isAdmin bool) error {
	if isAdmin || (callerID != "" && callerID == c.AuthorID) {
		return nil
	}
	return errs.Forbidden("caller[%s] is not allowed to modify course[%s]", callerID, c.ID)
}
