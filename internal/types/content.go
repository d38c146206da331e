package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content statuses.
const (
	ContentStatusDraft    = "draft"
	ContentStatusApproved = "approved"
	ContentStatusArchived = "archived"
)

// Content version triggers.
const (
	ContentTriggerGeneration = "generation"
	ContentTriggerInlineEdit = "inline_edit"
	ContentTriggerRestore    = "restore"
)

// Content is one generated artifact for a clone and target platform. The
// authenticity score and per-dimension breakdown are filled in by scoring.
type Content struct {
	ID                   uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	CloneID              uuid.UUID                   `gorm:"type:uuid;index;not null" json:"clone_id"`
	Platform             string                      `gorm:"size:50;not null" json:"platform"`
	Status               string                      `gorm:"size:20;not null" json:"status"`
	ContentCurrent       string                      `gorm:"type:text;not null" json:"content_current"`
	ContentOriginal      string                      `gorm:"type:text;not null" json:"content_original"`
	InputText            string                      `gorm:"type:text;not null" json:"input_text"`
	GenerationProperties datatypes.JSONMap           `json:"generation_properties,omitempty"`
	AuthenticityScore    *int                        `json:"authenticity_score,omitempty"`
	ScoreDimensions      datatypes.JSONMap           `json:"score_dimensions,omitempty"`
	Topic                string                      `gorm:"size:200" json:"topic,omitempty"`
	Campaign             string                      `gorm:"size:200" json:"campaign,omitempty"`
	Tags                 datatypes.JSONSlice[string] `json:"tags"`
	WordCount            int                         `gorm:"not null" json:"word_count"`
	CharCount            int                         `gorm:"not null" json:"char_count"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

func (Content) TableName() string {
	return "content"
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContentVersion is one immutable snapshot of a content item's text. Same
// dense per-parent numbering mechanism as VoiceDNAVersion.
type ContentVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID     uuid.UUID `gorm:"type:uuid;index;not null" json:"content_id"`
	VersionNumber int       `gorm:"not null" json:"version_number"`
	ContentText   string    `gorm:"type:text;not null" json:"content_text"`
	Trigger       string    `gorm:"size:50;not null" json:"trigger"`
	WordCount     int       `gorm:"not null" json:"word_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ContentVersion) TableName() string {
	return "content_versions"
}

func (v *ContentVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
