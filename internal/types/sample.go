package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Length buckets for writing samples, by word count.
const (
	LengthCategoryShort  = "short"  // < 300 words
	LengthCategoryMedium = "medium" // 300-1000 words
	LengthCategoryLong   = "long"   // > 1000 words
)

// WritingSample is one raw input text belonging to an original clone.
// Immutable once created, except for deletion.
type WritingSample struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CloneID        uuid.UUID `gorm:"type:uuid;index;not null" json:"clone_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	ContentType    string    `gorm:"size:50;not null" json:"content_type"`
	WordCount      int       `gorm:"not null" json:"word_count"`
	LengthCategory string    `gorm:"size:20" json:"length_category"`
	SourceType     string    `gorm:"size:20" json:"source_type"`
	SourceURL      string    `gorm:"size:2000" json:"source_url,omitempty"`
	SourceFilename string    `gorm:"size:500" json:"source_filename,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (WritingSample) TableName() string {
	return "writing_samples"
}

func (s *WritingSample) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
