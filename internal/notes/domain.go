// Package notes manages the short work notes technicians attach to samples.
package notes

import (
	"time"

	"github.com/google/uuid"
)

// Note is a task-style annotation on a sample. Completed marks it done
// without deleting the record.
type Note struct {
	ID        uuid.UUID `json:"id"`
	SampleID  uuid.UUID `json:"sampleId"`
	Content   string    `json:"content"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
