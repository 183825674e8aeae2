// Package config loads server settings from MIRROR_MCP_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/mirror-tools-mcp/internal/apperrors"
)

const envPrefix = "MIRROR_MCP_"

// Intensity modes for the pixel sampler.
const (
	IntensityLuma      = "luma"
	IntensityLightness = "lightness"
)

type Config struct {
	LogLevel  string
	LogFormat string

	// MinCirclePoints is the fewest rim points a circle fit accepts.
	MinCirclePoints int

	// Intensity selects how pixels become scalar intensities for edge
	// refinement.
	Intensity string

	// BlurSigma is the Gaussian pre-smoothing radius; 0 disables it.
	BlurSigma float64

	// MaxRequestBytes bounds one JSON-RPC request line.
	MaxRequestBytes int

	// PlotWidth and PlotHeight size candidate charts, in inches.
	PlotWidth  float64
	PlotHeight float64
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		MinCirclePoints: 9,
		Intensity:       IntensityLuma,
		BlurSigma:       0,
		MaxRequestBytes: 1 << 20,
		PlotWidth:       6,
		PlotHeight:      4,
	}
}

// LoadFromEnv reads the configuration from the environment. Unparseable or
// out-of-range values are validation errors rather than silent defaults.
func LoadFromEnv() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	d := Default()
	p := parser{getenv: getenv}

	cfg := &Config{
		LogLevel:        strings.ToLower(p.str("LOG_LEVEL", d.LogLevel)),
		LogFormat:       strings.ToLower(p.str("LOG_FORMAT", d.LogFormat)),
		MinCirclePoints: p.intVal("MIN_CIRCLE_POINTS", d.MinCirclePoints),
		Intensity:       strings.ToLower(p.str("INTENSITY", d.Intensity)),
		BlurSigma:       p.floatVal("BLUR_SIGMA", d.BlurSigma),
		MaxRequestBytes: p.intVal("MAX_REQUEST_BYTES", d.MaxRequestBytes),
		PlotWidth:       p.floatVal("PLOT_WIDTH", d.PlotWidth),
		PlotHeight:      p.floatVal("PLOT_HEIGHT", d.PlotHeight),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return invalid("LOG_LEVEL", c.LogLevel, "want debug, info, warn or error")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return invalid("LOG_FORMAT", c.LogFormat, "want text or json")
	}
	if c.MinCirclePoints < 3 {
		return invalid("MIN_CIRCLE_POINTS", c.MinCirclePoints, "must be >= 3")
	}
	if c.Intensity != IntensityLuma && c.Intensity != IntensityLightness {
		return invalid("INTENSITY", c.Intensity, "want luma or lightness")
	}
	if c.BlurSigma < 0 {
		return invalid("BLUR_SIGMA", c.BlurSigma, "must be >= 0")
	}
	if c.MaxRequestBytes <= 0 {
		return invalid("MAX_REQUEST_BYTES", c.MaxRequestBytes, "must be > 0")
	}
	if c.PlotWidth <= 0 || c.PlotHeight <= 0 {
		return invalid("PLOT_WIDTH/PLOT_HEIGHT", fmt.Sprintf("%gx%g", c.PlotWidth, c.PlotHeight), "must be > 0")
	}
	return nil
}

func invalid(key string, value interface{}, reason string) error {
	return apperrors.NewValidationError(fmt.Sprintf("invalid %s%s %v: %s", envPrefix, key, value, reason), nil)
}

// parser reads prefixed variables and keeps the first parse error.
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(envPrefix + key)); v != "" {
		return v
	}
	return def
}

func (p *parser) intVal(key string, def int) int {
	v := strings.TrimSpace(p.getenv(envPrefix + key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = apperrors.NewValidationError(fmt.Sprintf("invalid %s%s %q", envPrefix, key, v), err)
	}
	return n
}

func (p *parser) floatVal(key string, def float64) float64 {
	v := strings.TrimSpace(p.getenv(envPrefix + key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && p.err == nil {
		p.err = apperrors.NewValidationError(fmt.Sprintf("invalid %s%s %q", envPrefix, key, v), err)
	}
	return f
}
