package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/elementsize/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	if c.Addr != DefaultAddr {
		t.Errorf("Addr = %q", c.Addr)
	}
	if c.FrameRate != DefaultFrameRate {
		t.Errorf("FrameRate = %d", c.FrameRate)
	}
	if c.Server.ReadTimeout.Std() != 60*time.Second {
		t.Errorf("ReadTimeout = %v", c.Server.ReadTimeout.Std())
	}
	if !c.MetricsEnabled() || c.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", c.Metrics)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Path() != "" || c.Addr != DefaultAddr {
		t.Errorf("got %+v", c)
	}
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `{
		"addr": "127.0.0.1:9000",
		"frameRate": 30,
		"server": {"readTimeout": "5s", "writeTimeout": 2, "allowedOrigins": ["https://a.example"]},
		"metrics": {"enabled": false, "namespace": "app"},
		"tracing": {"enabled": true}
	}`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != "127.0.0.1:9000" || c.FrameRate != 30 {
		t.Errorf("Addr/FrameRate = %q/%d", c.Addr, c.FrameRate)
	}
	if c.FrameInterval() != time.Second/30 {
		t.Errorf("FrameInterval = %v", c.FrameInterval())
	}
	if c.Server.ReadTimeout.Std() != 5*time.Second || c.Server.WriteTimeout.Std() != 2*time.Second {
		t.Errorf("timeouts = %v/%v", c.Server.ReadTimeout.Std(), c.Server.WriteTimeout.Std())
	}
	if c.MetricsEnabled() {
		t.Error("explicit metrics.enabled=false should survive defaults")
	}
	if c.Metrics.Namespace != "app" || c.Tracing.TracerName != DefaultNamespace {
		t.Errorf("namespace/tracer = %q/%q", c.Metrics.Namespace, c.Tracing.TracerName)
	}
	if c.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", c.Path())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"invalid json", `{"addr":`, "E302"},
		{"bad duration", `{"server": {"readTimeout": "soon"}}`, "E302"},
		{"frame rate too high", `{"frameRate": 1000}`, "E301"},
		{"tiny message size", `{"server": {"maxMessageSize": 2}}`, "E301"},
		{"relative metrics path", `{"metrics": {"path": "metrics"}}`, "E301"},
		{"two archives", `{"archive": {"dir": "t", "s3": {"bucket": "b"}}}`, "E301"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !stderrors.Is(err, errors.New(tt.code)) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	body := `
addr: ":7000"
frameRate: 120
server:
  readTimeout: 30s
  writeTimeout: 3
metrics:
  enabled: false
archive:
  dir: timelines
`
	if err := os.WriteFile(filepath.Join(dir, YAMLConfigFileName), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":7000" || c.FrameRate != 120 {
		t.Errorf("Addr/FrameRate = %q/%d", c.Addr, c.FrameRate)
	}
	if c.Server.ReadTimeout.Std() != 30*time.Second || c.Server.WriteTimeout.Std() != 3*time.Second {
		t.Errorf("timeouts = %v/%v", c.Server.ReadTimeout.Std(), c.Server.WriteTimeout.Std())
	}
	if c.MetricsEnabled() || c.Archive.Dir != "timelines" {
		t.Errorf("metrics/archive = %v/%q", c.MetricsEnabled(), c.Archive.Dir)
	}
}

func TestLoad_JSONWinsOverYAML(t *testing.T) {
	dir := writeConfig(t, `{"addr": ":1"}`)
	if err := os.WriteFile(filepath.Join(dir, YAMLConfigFileName), []byte("addr: \":2\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":1" {
		t.Errorf("Addr = %q, want :1", c.Addr)
	}
}

func TestLoad_ArchiveDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, `{"archive": {"s3": {"bucket": "b"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Archive.S3.Region != "us-east-1" {
		t.Errorf("Region = %q", c.Archive.S3.Region)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist in chain", err)
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(1500 * time.Millisecond).MarshalJSON()
	if err != nil || string(b) != `"1.5s"` {
		t.Errorf("MarshalJSON = %s, %v", b, err)
	}
}
