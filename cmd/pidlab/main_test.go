package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/loop"
	"github.com/san-kum/pidlab/internal/storage"
)

func newLoopCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "run"}
	addControllerFlags(cmd)
	addLoopFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestPairs(t *testing.T) {
	tests := []struct {
		args []string
		ok   bool
	}{
		{nil, false},
		{[]string{"10"}, false},
		{[]string{"10", "5"}, true},
		{[]string{"10", "5", "1"}, false},
		{[]string{"10", "5", "1", "0"}, true},
	}
	for _, tt := range tests {
		if err := pairs(nil, tt.args); (err == nil) != tt.ok {
			t.Errorf("pairs(%v) = %v, want ok=%v", tt.args, err, tt.ok)
		}
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := resolveConfig(newLoopCmd(t), "mass")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Plant != "mass" {
		t.Errorf("expected plant mass, got %s", cfg.Plant)
	}
	if cfg.Controller.Kp != 2 {
		t.Errorf("unset flags should keep config defaults, got kp %f", cfg.Controller.Kp)
	}
}

func TestResolveConfig_PresetThenFlags(t *testing.T) {
	cmd := newLoopCmd(t, "--kp", "3", "--step-to", "7", "--step-time", "2")
	preset = "nominal"
	defer func() { preset = "" }()

	cfg, err := resolveConfig(cmd, "first_order")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Controller.Kp != 3 {
		t.Errorf("flag should override preset, got kp %f", cfg.Controller.Kp)
	}
	if cfg.Controller.Ki != 0.5 {
		t.Errorf("preset ki should survive, got %f", cfg.Controller.Ki)
	}
	if cfg.Setpoint.Initial != 10 || cfg.Setpoint.Final != 7 || cfg.Setpoint.StepTime != 2 {
		t.Errorf("unexpected setpoint %+v", cfg.Setpoint)
	}
}

func TestResolveConfig_UnknownPreset(t *testing.T) {
	cmd := newLoopCmd(t)
	preset = "nope"
	defer func() { preset = "" }()

	if _, err := resolveConfig(cmd, "first_order"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunDemo(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "demo"}
	cmd.SetOut(&buf)

	if err := runDemo(cmd, nil); err != nil {
		t.Fatalf("demo failed: %v", err)
	}
	if got := buf.String(); got != "output:1.25\n" {
		t.Errorf("expected %q, got %q", "output:1.25\n", got)
	}
}

func TestTailErrors(t *testing.T) {
	samples := make([]loop.Sample, 10)
	for i := range samples {
		samples[i] = loop.Sample{Time: float64(i), Setpoint: 10, ProcessValue: float64(i)}
	}

	errs := tailErrors(samples, 0.3)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(errs))
	}
	if errs[0] != 3 || errs[2] != 1 {
		t.Errorf("unexpected tail: %v", errs)
	}
	if got := len(tailErrors(samples, 0)); got != 10 {
		t.Errorf("expected whole run for non-positive fraction, got %d", got)
	}
}

func TestSampleInterval(t *testing.T) {
	samples := []loop.Sample{{Time: 0}, {Time: 0.25}}

	cfg := config.DefaultConfig()
	cfg.Controller.SampleInterval = 0.5
	if got := sampleInterval(&storage.RunMetadata{Config: cfg}, samples); got != 0.5 {
		t.Errorf("expected configured interval, got %g", got)
	}
	if got := sampleInterval(&storage.RunMetadata{}, samples); got != 0.25 {
		t.Errorf("expected interval from sample times, got %g", got)
	}
}
