package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/pidlab/internal/loop"
)

type ExportData struct {
	ID      string             `json:"id"`
	Plant   string             `json:"plant"`
	Steps   int                `json:"steps"`
	Metrics map[string]float64 `json:"metrics"`
	Samples []ExportSample     `json:"samples"`
}

// ExportSample is loop.Sample with floats that survive JSON when the
// output limits are infinite.
type ExportSample struct {
	Time         Float `json:"t"`
	Setpoint     Float `json:"setpoint"`
	ProcessValue Float `json:"pv"`
	Output       Float `json:"output"`
	P            Float `json:"p"`
	I            Float `json:"i"`
	D            Float `json:"d"`
	Saturated    bool  `json:"saturated"`
}

func exportSample(s loop.Sample) ExportSample {
	return ExportSample{
		Time:         Float(s.Time),
		Setpoint:     Float(s.Setpoint),
		ProcessValue: Float(s.ProcessValue),
		Output:       Float(s.Output),
		P:            Float(s.P),
		I:            Float(s.I),
		D:            Float(s.D),
		Saturated:    s.Saturated,
	}
}

// Float encodes NaN and ±Inf as the strings "NaN", "+Inf" and "-Inf".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(v, 'g', -1, 64))), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("storage: invalid float %s: %w", data, err)
	}
	*f = Float(v)
	return nil
}

func ExportJSON(w io.Writer, meta *RunMetadata, samples []loop.Sample) error {
	data := ExportData{
		ID:      meta.ID,
		Plant:   meta.Plant,
		Steps:   len(samples),
		Metrics: meta.Metrics,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, s := range samples {
		data.Samples[i] = exportSample(s)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes samples with a header row. Floats keep full precision
// so a stored run reloads bit for bit.
func WriteCSV(w io.Writer, samples []loop.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(samplesHeader); err != nil {
		return err
	}

	for _, s := range samples {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Setpoint),
			formatFloat(s.ProcessValue),
			formatFloat(s.Output),
			formatFloat(s.P),
			formatFloat(s.I),
			formatFloat(s.D),
			strconv.FormatBool(s.Saturated),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
