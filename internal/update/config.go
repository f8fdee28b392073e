package update

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type RuntimeConfig struct {
	DayWindowHours int
	RefreshSeconds int
	SnoozeMinutes  int
	ScanBuffer     int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DayWindowHours: 8,
		RefreshSeconds: 1,
		SnoozeMinutes:  15,
		ScanBuffer:     8,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvInt("TIMEBOX_DAY_WINDOW_HOURS"); ok && v > 0 {
		cfg.DayWindowHours = v
	}
	if v, ok := getEnvInt("TIMEBOX_REFRESH_SECONDS"); ok && v > 0 {
		cfg.RefreshSeconds = v
	}
	if v, ok := getEnvInt("TIMEBOX_SNOOZE_MINUTES"); ok && v > 0 {
		cfg.SnoozeMinutes = v
	}
	if v, ok := getEnvInt("TIMEBOX_SCAN_BUFFER"); ok && v > 0 {
		cfg.ScanBuffer = v
	}
	return cfg
}

func (c RuntimeConfig) DayWindow() time.Duration {
	return time.Duration(c.DayWindowHours) * time.Hour
}

func (c RuntimeConfig) SnoozeDelay() time.Duration {
	return time.Duration(c.SnoozeMinutes) * time.Minute
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
