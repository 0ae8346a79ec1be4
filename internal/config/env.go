package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv applies environment overrides on top of base.
// DIFFICULTY swaps the base for a preset before the individual overrides run.
func FromEnv(base Balance) Balance {
	cfg := base

	if mode := strings.ToLower(strings.TrimSpace(os.Getenv("DIFFICULTY"))); mode != "" {
		switch mode {
		case "casual":
			cfg = Casual()
		case "hard":
			cfg = Hard()
		case "default":
			cfg = Default()
		}
	}

	if val := getEnvInt("PDOOM_STARTING_MONEY"); val > 0 {
		cfg.StartingMoney = val
	}
	if val := getEnvInt("PDOOM_STARTING_STAFF"); val > 0 {
		cfg.StartingStaff = val
	}
	if val := getEnvInt("PDOOM_STARTING_DOOM"); val > 0 {
		cfg.StartingDoom = val
	}
	if val := getEnvInt("PDOOM_STARTING_REPUTATION"); val > 0 {
		cfg.StartingReputation = val
	}
	if val := getEnvInt("PDOOM_BASE_ACTION_POINTS"); val > 0 {
		cfg.BaseActionPoints = val
	}
	if val := getEnvInt("PDOOM_STAFF_MAINTENANCE"); val >= 0 && os.Getenv("PDOOM_STAFF_MAINTENANCE") != "" {
		cfg.StaffMaintenance = val
	}
	if val := getEnvInt("PDOOM_BOARD_SPEND_THRESHOLD"); val > 0 {
		cfg.BoardSpendThreshold = val
	}
	if val := getEnvInt("PDOOM_MAX_TURNS"); val > 0 {
		cfg.MaxTurns = val
	}

	return cfg
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
