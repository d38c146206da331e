package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CloneTypeOriginal = "original"
	CloneTypeMerged   = "merged"
)

// SoftDeleteRetentionDays is how long a soft-deleted clone can be restored
// before purge removes it for good.
const SoftDeleteRetentionDays = 30

// VoiceClone is the versioned style model for one subject. Only clones of
// type "original" own writing samples; merged clones are built from lineage.
type VoiceClone struct {
	ID          uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string                       `gorm:"size:200;not null" json:"name"`
	Description string                       `gorm:"type:text" json:"description"`
	Tags        datatypes.JSONSlice[string]  `json:"tags"`
	Type        string                       `gorm:"size:20;not null;default:original" json:"type"`
	CreatedAt   time.Time                    `json:"created_at"`
	UpdatedAt   time.Time                    `json:"updated_at"`
	DeletedAt   gorm.DeletedAt               `gorm:"index" json:"deleted_at,omitempty"`

	Samples     []WritingSample   `gorm:"foreignKey:CloneID" json:"samples,omitempty"`
	DNAVersions []VoiceDNAVersion `gorm:"foreignKey:CloneID" json:"dna_versions,omitempty"`
}

func (VoiceClone) TableName() string {
	return "voice_clones"
}

func (c *VoiceClone) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// MergedCloneSource links a merged clone back to one weighted source clone.
// Rows are kept even after the source clone is deleted.
type MergedCloneSource struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	MergedCloneID uuid.UUID          `gorm:"type:uuid;index;not null" json:"merged_clone_id"`
	SourceCloneID uuid.UUID          `gorm:"type:uuid;index;not null" json:"source_clone_id"`
	Weights       datatypes.JSONMap  `json:"weights"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (MergedCloneSource) TableName() string {
	return "merged_clone_sources"
}

func (s *MergedCloneSource) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
