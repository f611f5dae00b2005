package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/irsalhamdi/course-platform/database"
	"github.com/jmoiron/sqlx"
)

const courseColumns = `course_id, title, author_id, status, is_deleted, created_at, updated_at`

const lessonColumns = `lesson_id, course_id, title, content, lesson_order, is_deleted, created_at, updated_at`

func CreateCourse(ctx context.Context, ext sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, title, author_id, status, is_deleted, created_at, updated_at)
	VALUES
		(:course_id, :title, :author_id, :status, :is_deleted, :created_at, :updated_at)`

	if _, err := database.NamedExec(ctx, ext, q, c); err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

// UpdateCourse persists every mutable column of c. The author is never
// written back.
func UpdateCourse(ctx context.Context, ext sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		title = :title,
		status = :status,
		is_deleted = :is_deleted,
		updated_at = :updated_at
	WHERE course_id = :course_id`

	if _, err := database.NamedExec(ctx, ext, q, c); err != nil {
		return fmt.Errorf("updating course[%s]: %w", c.ID, err)
	}
	return nil
}

func FetchCourse(ctx context.Context, ext sqlx.ExtContext, id string) (Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses WHERE course_id = ? AND is_deleted = FALSE`

	var c Course
	if err := sqlx.GetContext(ctx, ext, &c, ext.Rebind(q), id); err != nil {
		return Course{}, fmt.Errorf("selecting course[%s]: %w", id, err)
	}
	return c, nil
}

func QueryCourses(ctx context.Context, ext sqlx.ExtContext, cq CourseQuery) ([]Course, error) {
	var (
		where []string
		args  []any
	)

	where = append(where, "is_deleted = FALSE")
	if cq.Title != "" {
		where = append(where, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(cq.Title))+"%")
	}
	if cq.Status != "" {
		where = append(where, "status = ?")
		args = append(args, cq.Status)
	}
	args = append(args, cq.Limit, cq.Offset)

	q := `SELECT ` + courseColumns + ` FROM courses
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY created_at, course_id
	LIMIT ? OFFSET ?`

	courses := []Course{}
	if err := sqlx.SelectContext(ctx, ext, &courses, ext.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("selecting courses: %w", err)
	}
	return courses, nil
}

func CreateLesson(ctx context.Context, ext sqlx.ExtContext, l Lesson) error {
	const q = `
	INSERT INTO lessons
		(lesson_id, course_id, title, content, lesson_order, is_deleted, created_at, updated_at)
	VALUES
		(:lesson_id, :course_id, :title, :content, :lesson_order, :is_deleted, :created_at, :updated_at)`

	if _, err := database.NamedExec(ctx, ext, q, l); err != nil {
		return fmt.Errorf("inserting lesson: %w", err)
	}
	return nil
}

// UpdateLesson persists every mutable column of l. The owning course is
// never written back.
func UpdateLesson(ctx context.Context, ext sqlx.ExtContext, l Lesson) error {
	const q = `
	UPDATE lessons SET
		title = :title,
		content = :content,
		lesson_order = :lesson_order,
		is_deleted = :is_deleted,
		updated_at = :updated_at
	WHERE lesson_id = :lesson_id`

	if _, err := database.NamedExec(ctx, ext, q, l); err != nil {
		return fmt.Errorf("updating lesson[%s]: %w", l.ID, err)
	}
	return nil
}

func FetchLesson(ctx context.Context, ext sqlx.ExtContext, id string) (Lesson, error) {
	q := `SELECT ` + lessonColumns + ` FROM lessons WHERE lesson_id = ? AND is_deleted = FALSE`

	var l Lesson
	if err := sqlx.GetContext(ctx, ext, &l, ext.Rebind(q), id); err != nil {
		return Lesson{}, fmt.Errorf("selecting lesson[%s]: %w", id, err)
	}
	return l, nil
}

// FetchLessons returns the active lessons of a course ordered by position.
func FetchLessons(ctx context.Context, ext sqlx.ExtContext, courseID string) ([]Lesson, error) {
	q := `SELECT ` + lessonColumns + ` FROM lessons
	WHERE course_id = ? AND is_deleted = FALSE
	ORDER BY lesson_order`

	lessons := []Lesson{}
	if err := sqlx.SelectContext(ctx, ext, &lessons, ext.Rebind(q), courseID); err != nil {
		return nil, fmt.Errorf("selecting lessons of course[%s]: %w", courseID, err)
	}
	return lessons, nil
}

// FetchLessonsByCourses groups the active lessons of several courses by
// course id, each group ordered by position.
func FetchLessonsByCourses(ctx context.Context, ext sqlx.ExtContext, courseIDs []string) (map[string][]Lesson, error) {
	grouped := make(map[string][]Lesson, len(courseIDs))
	if len(courseIDs) == 0 {
		return grouped, nil
	}

	q, args, err := sqlx.In(`SELECT `+lessonColumns+` FROM lessons
	WHERE course_id IN (?) AND is_deleted = FALSE
	ORDER BY course_id, lesson_order`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("expanding course ids: %w", err)
	}

	var lessons []Lesson
	if err := sqlx.SelectContext(ctx, ext, &lessons, ext.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("selecting lessons of %d courses: %w", len(courseIDs), err)
	}

	for _, l := range lessons {
		grouped[l.CourseID] = append(grouped[l.CourseID], l)
	}
	return grouped, nil
}

func CountLessons(ctx context.Context, ext sqlx.ExtContext, courseID string) (int, error) {
	const q = `SELECT COUNT(*) FROM lessons WHERE course_id = ? AND is_deleted = FALSE`

	var n int
	if err := sqlx.GetContext(ctx, ext, &n, ext.Rebind(q), courseID); err != nil {
		return 0, fmt.Errorf("counting lessons of course[%s]: %w", courseID, err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match itself literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
