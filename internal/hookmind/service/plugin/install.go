package plugin

import (
	"context"
	"errors"
	"time"
)

// ErrInstallRecordNotFound is returned by InstallStore.Get for unknown plugins.
var ErrInstallRecordNotFound = errors.New("install record not found")

// InstallRecord is the persisted state of a plugin across process restarts.
type InstallRecord struct {
	Plugin      string    `json:"plugin"`
	Version     string    `json:"version"`
	Installed   bool      `json:"installed"`
	State       string    `json:"state"`
	InstalledAt time.Time `json:"installed_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InstallStore persists install records.
type InstallStore interface {
	Get(ctx context.Context, pluginName string) (*InstallRecord, error)
	Put(ctx context.Context, record *InstallRecord) error
	Delete(ctx context.Context, pluginName string) error
	List(ctx context.Context) ([]*InstallRecord, error)
}
