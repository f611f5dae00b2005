package lesson

type LessonNew struct {
	CourseID string  `json:"courseId" validate:"required,uuid"`
	Title    string  `json:"title" validate:"required"`
	Content  *string `json:"content"`
}

// LessonUp replaces the title. Content is only replaced when present; an
// empty string clears it.
type LessonUp struct {
	Title   string  `json:"title" validate:"required"`
	Content *string `json:"content"`
}

type Reorder struct {
	CourseID  string   `json:"courseId" validate:"required,uuid"`
	LessonIDs []string `json:"lessonIds"`
}
