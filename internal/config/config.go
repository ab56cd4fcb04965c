package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/elementsize/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "elementsize.json"

	// YAMLConfigFileName is read when ConfigFileName does not exist.
	YAMLConfigFileName = "elementsize.yaml"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultFrameRate is the default number of frame flushes per second.
	DefaultFrameRate = 60

	// DefaultMaxMessageSize bounds a websocket message; one frame at most.
	DefaultMaxMessageSize = 65536 + 4

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "elementsize"
)

// Config represents the complete elementsize.json configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// FrameRate is how many frames per second sessions flush.
	FrameRate int `json:"frameRate,omitempty" yaml:"frameRate,omitempty"`

	// Debug enables debug logging and hook order validation.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// Server contains websocket server settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Archive selects where session timelines are stored.
	Archive ArchiveConfig `json:"archive,omitempty" yaml:"archive,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains websocket server settings.
type ServerConfig struct {
	// ReadTimeout closes a connection that sends nothing for this long.
	ReadTimeout Duration `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`

	// WriteTimeout bounds a single frame write.
	WriteTimeout Duration `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// MaxMessageSize is the largest accepted websocket message in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty" yaml:"maxMessageSize,omitempty"`

	// AllowedOrigins restricts websocket upgrades. Empty allows same-origin
	// requests only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled is a pointer so an explicit false survives defaults.
	Enabled   *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// ArchiveConfig selects a timeline store. Dir and S3.Bucket are exclusive;
// neither disables archiving.
type ArchiveConfig struct {
	Dir string   `json:"dir,omitempty" yaml:"dir,omitempty"`
	S3  S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config configures an S3 timeline store. Credentials come from the
// environment.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// Duration is a time.Duration written as a string ("5s") in JSON.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	return d.parseSeconds(string(data))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	if tag := value.ShortTag(); tag == "!!int" || tag == "!!float" {
		return d.parseSeconds(value.Value)
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) parseSeconds(s string) error {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads elementsize.json, or elementsize.yaml when there is no JSON
// file, from dir. No file yields defaults.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile loads and validates the configuration at path. Files ending in
// .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E302").Wrap(err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E302").
			Wrap(err).
			WithSuggestion("Check the syntax of " + filepath.Base(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.FrameRate == 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(60 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(10 * time.Second)
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Archive.S3.Bucket != "" && c.Archive.S3.Region == "" {
		c.Archive.S3.Region = "us-east-1"
	}
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return errors.New("E301").
			WithDetail("frameRate must be between 1 and 240, got " + strconv.Itoa(c.FrameRate))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("E301").WithDetail("server timeouts must not be negative")
	}
	if c.Server.MaxMessageSize < 5 {
		return errors.New("E301").
			WithDetail("server.maxMessageSize must hold at least a frame header and one byte")
	}
	if c.Metrics.Path != "" && c.Metrics.Path[0] != '/' {
		return errors.New("E301").WithDetail("metrics.path must start with /")
	}
	if c.Archive.Dir != "" && c.Archive.S3.Bucket != "" {
		return errors.New("E301").
			WithDetail("archive.dir and archive.s3.bucket are mutually exclusive").
			WithSuggestion("Remove one of the two archive settings")
	}
	return nil
}

// FrameInterval returns the time between frame flushes.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / DefaultFrameRate
	}
	return time.Second / time.Duration(c.FrameRate)
}
