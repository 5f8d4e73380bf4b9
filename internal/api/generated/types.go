// Пакет generated — типы и chi-роутер HTTP API медиа-хранилища
// в формате oapi-codegen chi-server. Контракт: internal/api/openapi/openapi.yaml.
// При изменении контракта типы и ServerInterface обновляются вместе с ним.
package generated

import (
	"time"
)

// Defines values for ModeTransitionRequestMode.
const (
	ModeTransitionRequestModeRo ModeTransitionRequestMode = "ro"
	ModeTransitionRequestModeRw ModeTransitionRequestMode = "rw"
)

// Defines values for ReconcileIssueType.
const (
	DuplicateId  ReconcileIssueType = "duplicate_id"
	MissingFile  ReconcileIssueType = "missing_file"
	OrphanedFile ReconcileIssueType = "orphaned_file"
)

// Defines values for StorageInfoMode.
const (
	StorageInfoModeRo StorageInfoMode = "ro"
	StorageInfoModeRw StorageInfoMode = "rw"
)

// CapacityInfo ёмкость файловой системы под корнем хранилища.
type CapacityInfo struct {
	AvailableBytes int64 `json:"available_bytes"`
	TotalBytes     int64 `json:"total_bytes"`
	UsedBytes      int64 `json:"used_bytes"`
}

// ModeTransitionRequest defines model for ModeTransitionRequest.
type ModeTransitionRequest struct {
	// Confirm Подтверждение обратного перехода ro → rw
	Confirm *bool                     `json:"confirm,omitempty"`
	Mode    ModeTransitionRequestMode `json:"mode"`

	// Reason Причина смены режима (для истории переходов)
	Reason *string `json:"reason,omitempty"`
}

// ModeTransitionRequestMode defines model for ModeTransitionRequest.Mode.
type ModeTransitionRequestMode string

// ModeTransitionResponse defines model for ModeTransitionResponse.
type ModeTransitionResponse struct {
	AllowedOperations []string  `json:"allowed_operations"`
	CurrentMode       string    `json:"current_mode"`
	PreviousMode      string    `json:"previous_mode"`
	TransitionedAt    time.Time `json:"transitioned_at"`
}

// ReconcileIssue defines model for ReconcileIssue.
type ReconcileIssue struct {
	Description string  `json:"description"`
	MediaId     *string `json:"media_id,omitempty"`

	// Path Путь файла относительно корня хранилища
	Path *string `json:"path,omitempty"`

	// Repaired Проблема исправлена в ходе сверки
	Repaired bool               `json:"repaired"`
	Type     ReconcileIssueType `json:"type"`
}

// ReconcileIssueType defines model for ReconcileIssue.Type.
type ReconcileIssueType string

// ReconcileResponse defines model for ReconcileResponse.
type ReconcileResponse struct {
	CompletedAt  time.Time        `json:"completed_at"`
	FilesChecked int              `json:"files_checked"`
	Issues       []ReconcileIssue `json:"issues"`
	StartedAt    time.Time        `json:"started_at"`
	Summary      ReconcileSummary `json:"summary"`
}

// ReconcileSummary defines model for ReconcileSummary.
type ReconcileSummary struct {
	DuplicateIds  int `json:"duplicate_ids"`
	MissingFiles  int `json:"missing_files"`
	Ok            int `json:"ok"`
	OrphanedFiles int `json:"orphaned_files"`
	Pruned        int `json:"pruned"`
	Registered    int `json:"registered"`
}

// StorageInfo defines model for StorageInfo.
type StorageInfo struct {
	AllowedFormats    []string        `json:"allowed_formats"`
	AllowedOperations []string        `json:"allowed_operations"`
	Capacity          *CapacityInfo   `json:"capacity,omitempty"`
	MaxFileSize       int64           `json:"max_file_size"`
	MediaCount        int             `json:"media_count"`
	Mode              StorageInfoMode `json:"mode"`
	ServiceName       string          `json:"service_name"`
	StorageConfigured bool            `json:"storage_configured"`
	Version           string          `json:"version"`
}

// StorageInfoMode defines model for StorageInfo.Mode.
type StorageInfoMode string

// MediaId defines model for MediaId.
type MediaId = string
