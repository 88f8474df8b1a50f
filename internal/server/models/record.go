package models

// TimeFormat12h is the only supported display format; the field exists so
// the settings blob stays forward-compatible.
const TimeFormat12h = "12h"

// Settings is the per-user settings blob stored alongside the lines.
type Settings struct {
	TravelEnabled bool   `json:"travel_enabled"`
	TimeFormat    string `json:"time_format"`
}

// DefaultSettings returns the settings of a fresh record. They also replace
// a stored blob that fails to unmarshal.
func DefaultSettings() Settings {
	return Settings{TravelEnabled: false, TimeFormat: TimeFormat12h}
}

// UserRecord is the whole stored state of one user: settings plus the
// ordered lines. Reads and writes always move the record as a unit.
type UserRecord struct {
	UserID   string
	Settings Settings
	Lines    []string
}
