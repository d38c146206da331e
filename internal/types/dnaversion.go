package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxDNAVersions is the retention cap per clone. Creating a version beyond
// the cap prunes the oldest versions down to this window.
const MaxDNAVersions = 10

// ModelUsedManual marks versions produced without a model call.
const ModelUsedManual = "manual"

// Triggers for DNA version creation.
const (
	TriggerInitialAnalysis = "initial_analysis"
	TriggerRegeneration    = "regeneration"
	TriggerManualEdit      = "manual_edit"
	TriggerRevert          = "revert"
	TriggerMerge           = "merge"
)

// VoiceDNAVersion is one immutable snapshot of a clone's derived voice
// traits. Corrections always produce a new version, never an in-place edit.
type VoiceDNAVersion struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CloneID          uuid.UUID         `gorm:"type:uuid;index;not null" json:"clone_id"`
	VersionNumber    int               `gorm:"not null" json:"version_number"`
	Data             datatypes.JSONMap `gorm:"not null" json:"data"`
	ProminenceScores datatypes.JSONMap `json:"prominence_scores,omitempty"`
	Trigger          string            `gorm:"size:50;not null" json:"trigger"`
	ModelUsed        string            `gorm:"size:100;not null" json:"model_used"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (VoiceDNAVersion) TableName() string {
	return "voice_dna_versions"
}

func (v *VoiceDNAVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
