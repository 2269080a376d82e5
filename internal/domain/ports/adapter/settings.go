package adapter

import "subscription-retention-service/internal/domain/model"

// SettingsProvider exposes the operator-controlled configuration snapshot.
// The admin surface that edits these values lives outside this service.
type SettingsProvider interface {
	Enabled() bool
	Snapshot() model.RetentionSettings
}
