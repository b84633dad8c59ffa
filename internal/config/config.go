// Package config provides shared configuration utilities: environment
// lookup, TOML option files, logger construction and the tunables of the
// terminal front-ends.
package config

import "time"

// Terminal view. Every sub-pixel covers CellUnit x CellUnit logical units,
// so the sky's pixel-based defaults (line distance, meteor speed) read
// sensibly on a character grid.
const (
	CellUnit      = 8.0
	MaxTermWidth  = 240 // Render area is clamped and centred beyond this
	MaxTermHeight = 80
)

// Client rendering
const (
	ClientTargetFPS = 30
)

// Inactivity
const (
	InactivityDisconnectUser = 30 * time.Minute
)

// Shutdown
const (
	ShutdownTimeout = 5 * time.Second
)
