package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	ctrl "sigs.k8s.io/controller-runtime"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo}, // Default for unknown
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer

	InitForCLI(LevelInfo, &buf)

	if defaultLogger == nil {
		t.Error("Expected defaultLogger to be set after InitForCLI")
	}

	Info("test-subsystem", "test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Error("Expected log message to appear in CLI output")
	}

	if !strings.Contains(output, "test-subsystem") {
		t.Error("Expected subsystem to appear in CLI output")
	}
}

func TestCLILevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	InitForCLI(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at INFO level")
	}

	if !strings.Contains(output, "info message") {
		t.Error("Info message should appear at INFO level")
	}
}

func TestJSONFormatCarriesErrorAttribute(t *testing.T) {
	var buf bytes.Buffer

	Init(LevelDebug, FormatJSON, &buf)

	Error("Reconciler", errors.New("boom"), "apply %s failed", "svc-foo")

	var record map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}

	if record["msg"] != "apply svc-foo failed" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["subsystem"] != "Reconciler" {
		t.Errorf("subsystem = %v", record["subsystem"])
	}
	if record["error"] != "boom" {
		t.Errorf("error = %v", record["error"])
	}
}

func TestWithAddsSubsystem(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	With("Transport").Info("connected", "queue", "apps")

	output := buf.String()
	if !strings.Contains(output, "subsystem=Transport") || !strings.Contains(output, "queue=apps") {
		t.Errorf("unexpected output: %q", output)
	}
}

func TestControllerRuntimeLoggerInitialization(t *testing.T) {
	var buf bytes.Buffer

	InitForCLI(LevelInfo, &buf)

	// ctrl.Log returns the global logger set by ctrl.SetLogger
	logger := ctrl.Log

	if logger.GetSink() == nil {
		t.Error("Expected controller-runtime logger sink to be initialized")
	}

	if !logger.Enabled() {
		t.Error("Expected controller-runtime logger to be enabled")
	}

	logger.Info("test message from controller-runtime logger", "key", "value")
	if !strings.Contains(buf.String(), "test message from controller-runtime logger") {
		t.Errorf("expected controller-runtime output in the current sink, got %q", buf.String())
	}
}

func TestControllerRuntimeLoggerFollowsReinit(t *testing.T) {
	var cli, worker bytes.Buffer

	InitForCLI(LevelWarn, &cli)
	Init(LevelDebug, FormatJSON, &worker)

	ctrl.Log.WithName("client").Info("reconnected", "attempt", 2)
	ctrl.Log.V(1).Info("verbose detail")

	if cli.Len() != 0 {
		t.Errorf("controller-runtime still writes to the replaced sink: %q", cli.String())
	}

	lines := strings.Split(strings.TrimSpace(worker.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), worker.String())
	}

	var first map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if first["subsystem"] != "controller-runtime" {
		t.Errorf("expected subsystem controller-runtime, got %v", first["subsystem"])
	}
	if first["msg"] != "reconnected" || first["logger"] != "client" {
		t.Errorf("unexpected record: %v", first)
	}
	if first["attempt"] != float64(2) {
		t.Errorf("expected attempt=2, got %v", first["attempt"])
	}
	if !strings.Contains(lines[1], `"level":"DEBUG`) || !strings.Contains(lines[1], "verbose detail") {
		t.Errorf("debug level of the new configuration not applied: %q", lines[1])
	}

	// Raising the level again filters controller-runtime too.
	worker.Reset()
	Init(LevelError, FormatJSON, &worker)
	ctrl.Log.Info("filtered")
	if worker.Len() != 0 {
		t.Errorf("expected info to be filtered at error level, got %q", worker.String())
	}
}

func TestForwardingHandlerKeepsGroupOrder(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, FormatJSON, &buf)

	logger := slog.New(forwardingHandler{}.WithAttrs([]slog.Attr{slog.String("a", "1")}).WithGroup("g"))
	logger.Info("grouped", "b", "2")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["a"] != "1" {
		t.Errorf("expected top-level a=1, got %v", rec)
	}
	group, ok := rec["g"].(map[string]interface{})
	if !ok || group["b"] != "2" {
		t.Errorf("expected b inside group g, got %v", rec)
	}
}
