package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/irsalhamdi/course-platform/core/catalog"
	"github.com/irsalhamdi/course-platform/core/errs"
	"github.com/irsalhamdi/course-platform/database"
	"github.com/irsalhamdi/course-platform/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Service enforces the lesson rules: dense positions inside a course and the
// draft fallback of a published course that loses its last lesson.
type Service struct {
	log logrus.FieldLogger
	db  *sqlx.DB
	now func() time.Time
}

func NewService(log logrus.FieldLogger, db *sqlx.DB) *Service {
	return &Service{
		log: log.WithField("service", "lesson"),
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create appends a lesson after the last active lesson of the course. Two
// concurrent creates may pick the same position; the loser gets a conflict
// and can retry.
func (s *Service) Create(ctx context.Context, courseID string, title string, content *string) (string, error) {
	nl := LessonNew{CourseID: courseID, Title: strings.TrimSpace(title), Content: content}
	if err := validate.Check(nl); err != nil {
		return "", err
	}

	l := catalog.Lesson{
		ID:        validate.GenerateID(),
		CourseID:  courseID,
		Title:     nl.Title,
		CreatedAt: s.now(),
	}
	if content != nil {
		l.Content = *content
	}

	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		if err := courseExists(ctx, tx, courseID); err != nil {
			return err
		}

		lessons, err := catalog.FetchLessons(ctx, tx, courseID)
		if err != nil {
			return err
		}
		l.Order = catalog.NextOrder(lessons)

		return catalog.CreateLesson(ctx, tx, l)
	})
	if err != nil {
		return "", fmt.Errorf("creating lesson in course[%s]: %w", courseID, conflict(err))
	}

	s.log.WithFields(logrus.Fields{
		"lesson_id": l.ID,
		"course_id": courseID,
		"order":     l.Order,
	}).Info("lesson created")

	return l.ID, nil
}

func (s *Service) Update(ctx context.Context, id string, title string, content *string) error {
	up := LessonUp{Title: strings.TrimSpace(title), Content: content}
	if err := validate.Check(up); err != nil {
		return err
	}

	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		l, err := load(ctx, tx, id)
		if err != nil {
			return err
		}

		l.Title = up.Title
		if up.Content != nil {
			l.Content = *up.Content
		}
		now := s.now()
		l.UpdatedAt = &now

		return catalog.UpdateLesson(ctx, tx, l)
	})
	if err != nil {
		return fmt.Errorf("updating lesson[%s]: %w", id, err)
	}
	return nil
}

// Delete soft deletes the lesson and commits. A published course left
// without active lessons is then returned to draft in a second commit. The
// deletion stands even if that correction fails.
func (s *Service) Delete(ctx context.Context, id string) error {
	var courseID string

	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		l, err := load(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		l.IsDeleted = true
		l.UpdatedAt = &now
		courseID = l.CourseID

		return catalog.UpdateLesson(ctx, tx, l)
	})
	if err != nil {
		return fmt.Errorf("deleting lesson[%s]: %w", id, err)
	}

	log := s.log.WithFields(logrus.Fields{"lesson_id": id, "course_id": courseID})
	log.Info("lesson deleted")

	demoted, err := s.settleCourse(ctx, courseID)
	if err != nil {
		log.WithError(err).Error("lesson deleted but course status correction failed")
		return nil
	}
	if demoted {
		log.Info("course returned to draft after losing its last lesson")
	}
	return nil
}

// settleCourse returns a published course with no active lessons to draft.
func (s *Service) settleCourse(ctx context.Context, courseID string) (bool, error) {
	var demoted bool

	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		n, err := catalog.CountLessons(ctx, tx, courseID)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		c, err := catalog.FetchCourse(ctx, tx, courseID)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return nil
			}
			return err
		}
		if c.Status != catalog.Published {
			return nil
		}

		now := s.now()
		c.Status = catalog.Draft
		c.UpdatedAt = &now
		if err := catalog.UpdateCourse(ctx, tx, c); err != nil {
			return err
		}

		demoted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("settling status of course[%s]: %w", courseID, err)
	}
	return demoted, nil
}

// Reorder moves the listed lessons to the position of their index in ids,
// counting from 1. Ids that are not active lessons of the course are
// skipped and lessons missing from ids keep their position. A position
// already held by a lesson missing from ids is reported as a conflict.
func (s *Service) Reorder(ctx context.Context, courseID string, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return errs.Validation("lesson[%s] is listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	err := database.Transaction(ctx, s.db, func(tx sqlx.ExtContext) error {
		if err := courseExists(ctx, tx, courseID); err != nil {
			return err
		}

		lessons, err := catalog.FetchLessons(ctx, tx, courseID)
		if err != nil {
			return err
		}

		byID := make(map[string]catalog.Lesson, len(lessons))
		for _, l := range lessons {
			byID[l.ID] = l
		}

		var moved []catalog.Lesson
		for i, id := range ids {
			l, ok := byID[id]
			if !ok {
				continue
			}
			l.Order = i + 1
			moved = append(moved, l)
		}

		// Positions are unique while the transaction runs, so the moved
		// lessons first step aside onto negative positions.
		for _, l := range moved {
			parked := byID[l.ID]
			parked.Order = -parked.Order
			if err := catalog.UpdateLesson(ctx, tx, parked); err != nil {
				return err
			}
		}

		now := s.now()
		for _, l := range moved {
			l.UpdatedAt = &now
			if err := catalog.UpdateLesson(ctx, tx, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reordering lessons of course[%s]: %w", courseID, conflict(err))
	}

	s.log.WithFields(logrus.Fields{"course_id": courseID, "lessons": len(ids)}).Info("lessons reordered")
	return nil
}

func load(ctx context.Context, ext sqlx.ExtContext, id string) (catalog.Lesson, error) {
	l, err := catalog.FetchLesson(ctx, ext, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return catalog.Lesson{}, errs.NotFound("lesson[%s] not found", id)
		}
		return catalog.Lesson{}, err
	}
	return l, nil
}

func courseExists(ctx context.Context, ext sqlx.ExtContext, id string) error {
	if _, err := catalog.FetchCourse(ctx, ext, id); err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return errs.NotFound("course[%s] not found", id)
		}
		return err
	}
	return nil
}

func conflict(err error) error {
	if _, ok := errs.KindOf(err); ok {
		return err
	}
	if database.IsDuplicated(err) {
		return errs.Conflict(err, "lesson position was taken by a concurrent change, retry the request")
	}
	return err
}
