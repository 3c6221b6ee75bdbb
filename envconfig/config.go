// Package envconfig reads DATAPREP_* environment variables that set the
// defaults for preprocessing runs.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
)

// Debug enables verbose logging (e.g. DATAPREP_DEBUG=1).
func Debug() bool {
	return Bool("DATAPREP_DEBUG")()
}

// LogLevel maps the debug switch onto an slog level.
func LogLevel() slog.Level {
	if Debug() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// NumWorkers is the preprocessing fan-out (DATAPREP_NUM_WORKERS).
func NumWorkers() int {
	return Int("DATAPREP_NUM_WORKERS", runtime.NumCPU())()
}

// MaxLength is the token sequence cap (DATAPREP_MAX_LENGTH).
func MaxLength() int {
	return Int("DATAPREP_MAX_LENGTH", 8192)()
}

// MinTiles and MaxTiles bound dynamic image tiling
// (DATAPREP_MIN_TILES, DATAPREP_MAX_TILES).
func MinTiles() int {
	return Int("DATAPREP_MIN_TILES", 1)()
}

func MaxTiles() int {
	return Int("DATAPREP_MAX_TILES", 6)()
}

// TileSize is the square tile edge length (DATAPREP_TILE_SIZE).
func TileSize() int {
	return Int("DATAPREP_TILE_SIZE", 448)()
}

func Bool(k string) func() bool {
	return func() bool {
		if s := os.Getenv(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

func Int(k string, defaultValue int) func() int {
	return func() int {
		if s := os.Getenv(k); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				return n
			}
			slog.Warn("invalid environment variable, using default", "key", k, "value", s, "default", defaultValue)
		}
		return defaultValue
	}
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"DATAPREP_DEBUG":       {"DATAPREP_DEBUG", Debug(), "Show additional debug information (e.g. DATAPREP_DEBUG=1)"},
		"DATAPREP_NUM_WORKERS": {"DATAPREP_NUM_WORKERS", NumWorkers(), fmt.Sprintf("Parallel preprocessing workers (default %d)", runtime.NumCPU())},
		"DATAPREP_MAX_LENGTH":  {"DATAPREP_MAX_LENGTH", MaxLength(), "Maximum token sequence length (default 8192)"},
		"DATAPREP_MIN_TILES":   {"DATAPREP_MIN_TILES", MinTiles(), "Minimum tiles per image (default 1)"},
		"DATAPREP_MAX_TILES":   {"DATAPREP_MAX_TILES", MaxTiles(), "Maximum tiles per image (default 6)"},
		"DATAPREP_TILE_SIZE":   {"DATAPREP_TILE_SIZE", TileSize(), "Tile edge length in pixels (default 448)"},
	}
}
