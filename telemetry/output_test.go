package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/gulp/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	// All methods are nil-safe
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, "run", 1); err != nil {
		t.Errorf("WritePerf on nil: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("Dir() = %q, want empty", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManagerTelemetryCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	rows := []WindowStats{
		{RunID: "r1", WindowEndTick: 300, Absorptions: 4, RadiusEnd: 1.2},
		{RunID: "r1", WindowEndTick: 600, Absorptions: 7, RadiusEnd: 1.5},
	}
	for _, r := range rows {
		if err := om.WriteTelemetry(r); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, TelemetryFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "run_id,") {
		t.Errorf("header = %q", lines[0])
	}

	var got []WindowStats
	f, err := os.Open(filepath.Join(dir, TelemetryFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &got); err != nil {
		t.Fatalf("UnmarshalFile: %v", err)
	}
	if len(got) != 2 || got[1].Absorptions != 7 || got[1].WindowEndTick != 600 {
		t.Errorf("unmarshaled rows = %+v", got)
	}
}

func TestOutputManagerPerfAndConfig(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if _, err := config.Load(filepath.Join(dir, ConfigFile)); err != nil {
		t.Errorf("written config does not reload: %v", err)
	}

	var stats PerfStats
	stats.AvgTickDuration = time.Millisecond
	if err := om.WritePerf(stats, "abc", 120); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WritePerf(stats, "abc", 240); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if om.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", om.Dir(), dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, PerfFile))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "abc,"); n != 2 {
		t.Errorf("perf rows = %d, want 2:\n%s", n, data)
	}
}
