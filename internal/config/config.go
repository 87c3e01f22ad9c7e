package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Coordinate systems for observation locations. One convention per
// deployment; the fallback distance formula depends on it.
const (
	CoordProjected = "projected" // planar campus meters, Euclidean fallback
	CoordWGS84     = "wgs84"     // lon/lat degrees, Haversine fallback
)

// Config 应用配置
type Config struct {
	Port   string
	DBPath string

	// WalkingSpeed is the assumed average walking speed in m/s used for
	// travel-time estimation. Must be strictly positive.
	WalkingSpeed float64

	// CoordinateSystem declares the semantics of location_x/location_y.
	CoordinateSystem string

	// ReIDAlgorithm selects the feature family (mgn, agw, sbs).
	ReIDAlgorithm string

	// MatchThreshold is the default similarity cutoff for matching.
	MatchThreshold float64

	// Timezone applied to naive timestamps before comparison.
	Timezone string
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:             envOr("PORT", ":8080"),
		DBPath:           envOr("DB_PATH", "./data/trajectory.db"),
		WalkingSpeed:     envFloat("WALKING_SPEED", 1.4),
		CoordinateSystem: envOr("COORDINATE_SYSTEM", CoordProjected),
		ReIDAlgorithm:    envOr("REID_ALGORITHM", "mgn"),
		MatchThreshold:   envFloat("MATCH_THRESHOLD", 0.6),
		Timezone:         envOr("TIMEZONE", "Asia/Shanghai"),
	}
}

// Validate rejects configurations the analyzers cannot run with.
func (c *Config) Validate() error {
	if c.WalkingSpeed <= 0 {
		return fmt.Errorf("walking speed must be positive, got %v", c.WalkingSpeed)
	}
	if c.CoordinateSystem != CoordProjected && c.CoordinateSystem != CoordWGS84 {
		return fmt.Errorf("unknown coordinate system %q", c.CoordinateSystem)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured timezone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
