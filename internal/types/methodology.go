package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxMethodologyVersions caps retained instruction-text versions per
// section, pruned the same way as DNA versions.
const MaxMethodologyVersions = 10

// Methodology section keys used by the orchestration layer.
const (
	MethodologySectionVoiceCloning             = "voice_cloning"
	MethodologySectionVoiceCloningInstructions = "voice_cloning_instructions"
)

// MethodologySettings holds the current instruction text for one section.
type MethodologySettings struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SectionKey     string    `gorm:"size:100;uniqueIndex;not null" json:"section_key"`
	CurrentContent string    `gorm:"type:text;not null" json:"current_content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MethodologySettings) TableName() string {
	return "methodology_settings"
}

func (m *MethodologySettings) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MethodologyVersion is one snapshot of a section's instruction text.
type MethodologyVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SettingsID    uuid.UUID `gorm:"type:uuid;index;not null" json:"settings_id"`
	VersionNumber int       `gorm:"not null" json:"version_number"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Trigger       string    `gorm:"size:50;not null" json:"trigger"`
	CreatedAt     time.Time `json:"created_at"`
}

func (MethodologyVersion) TableName() string {
	return "methodology_versions"
}

func (v *MethodologyVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
