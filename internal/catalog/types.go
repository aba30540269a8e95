package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quizflow/internal/quiz"
)

// Record is a stored quiz document with its metadata.
type Record struct {
	ID        uuid.UUID  `json:"id"`
	AuthorID  string     `json:"author_id"`
	Quiz      *quiz.Quiz `json:"quiz"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Summary is the list view of a quiz.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	SectionCount  int       `json:"section_count"`
	QuestionCount int       `json:"question_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SaveResult is returned by every write. Validation never blocks a save.
type SaveResult struct {
	Record *Record     `json:"record"`
	Report quiz.Report `json:"report"`
}

func summarize(rec *Record) Summary {
	return Summary{
		ID:            rec.ID,
		Title:         rec.Quiz.Title,
		SectionCount:  len(rec.Quiz.Sections),
		QuestionCount: rec.Quiz.QuestionCount(),
		UpdatedAt:     rec.UpdatedAt,
	}
}
