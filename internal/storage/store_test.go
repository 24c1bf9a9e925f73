package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/loop"
)

func testResult() *loop.Result {
	return &loop.Result{
		Samples: []loop.Sample{
			{Time: 0, Setpoint: 10, ProcessValue: 0, Output: 50, P: 1000, I: 100, D: 500, Saturated: true},
			{Time: 0.1, Setpoint: 10, ProcessValue: 0.3, Output: 1.0 / 3.0, P: 0.1, I: 0.2, D: 0.0333},
		},
		Metrics: map[string]float64{
			"iae": 1.5,
		},
		StepsTaken: 2,
		Errors:     []error{errors.New("step 2 (t=0.2000): boom")},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	runID, err := st.Save(cfg, "nominal", testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "first_order_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Plant != "first_order" || meta.Preset != "nominal" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["iae"] != 1.5 {
		t.Errorf("expected iae 1.5, got %f", meta.Metrics["iae"])
	}
	if meta.Config.Controller != cfg.Controller {
		t.Errorf("expected controller %+v, got %+v", cfg.Controller, meta.Config.Controller)
	}
	if len(meta.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", meta.Errors)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	want := testResult().Samples
	if len(samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(samples))
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample %d: expected %+v, got %+v", i, want[i], samples[i])
		}
	}
}

func TestStoreSaveUnboundedLimits(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Controller.OutputMax = math.Inf(1)
	cfg.Controller.OutputMin = math.Inf(-1)
	result := testResult()
	result.Metrics["overshoot"] = math.NaN()

	runID, err := st.Save(cfg, "", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !math.IsInf(meta.Config.Controller.OutputMax, 1) || !math.IsInf(meta.Config.Controller.OutputMin, -1) {
		t.Errorf("expected infinite limits, got %+v", meta.Config.Controller)
	}
	if _, ok := meta.Metrics["overshoot"]; ok {
		t.Error("expected NaN metric to be dropped")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := st.Save(config.DefaultConfig(), "", testResult()); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := &RunMetadata{ID: "first_order_1", Plant: "first_order", Metrics: map[string]float64{"iae": 1}}

	if err := ExportJSON(&buf, meta, testResult().Samples); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Steps != 2 || got.Samples[0].Output != 50 {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestExportJSONUnboundedRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Controller.OutputMax = math.Inf(1)
	cfg.Controller.OutputMin = math.Inf(-1)
	result := &loop.Result{
		Samples:    []loop.Sample{{Time: 0, Setpoint: 10, Output: math.Inf(1), P: math.Inf(1), I: math.NaN(), D: math.Inf(-1)}},
		Metrics:    map[string]float64{},
		StepsTaken: 1,
	}
	runID, err := st.Save(cfg, "", result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, samples); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"output": "+Inf"`) {
		t.Errorf("expected quoted +Inf in %s", buf.String())
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	s := got.Samples[0]
	if !math.IsInf(float64(s.Output), 1) || !math.IsInf(float64(s.D), -1) || !math.IsNaN(float64(s.I)) {
		t.Errorf("non-finite values lost: %+v", s)
	}
	if s.Setpoint != 10 {
		t.Errorf("expected setpoint 10, got %g", float64(s.Setpoint))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testResult().Samples[:1]); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[0] != "t,setpoint,pv,output,p,i,d,saturated" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0,10,0,50,1000,100,500,true" {
		t.Errorf("unexpected row %q", lines[1])
	}
}
