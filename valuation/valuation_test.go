package valuation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func defaultTablesT(t *testing.T) *Tables {
	t.Helper()
	tables, err := LoadTables("")
	require.NoError(t, err)
	return tables
}

func TestEnhancedPrice(t *testing.T) {
	tables := defaultTablesT(t)

	cases := []struct {
		name       string
		in         Input
		want       float64
		confidence string
	}{
		{
			name:       "model stats at the average",
			in:         Input{Brand: "Toyota", Model: "Camry", Year: 2016, Mileage: 150000, EngineSize: 2.0},
			want:       39900,
			confidence: ConfidenceMedium,
		},
		{
			name:       "unknown brand uses default base",
			in:         Input{Brand: "Zaz", Model: "Slavuta", Year: 2016, Mileage: 0, EngineSize: 2.0, Transmission: "mexaniki"},
			want:       4275,
			confidence: ConfidenceLow,
		},
		{
			name:       "clamped and floored",
			in:         Input{Brand: "LADA", Model: "2107", Year: 1985, Mileage: 200000, EngineSize: 1.5, Transmission: "mexaniki"},
			want:       1500,
			confidence: ConfidenceMedium,
		},
		{
			name: "brand base with every factor",
			in: Input{Brand: "bmw", Model: "X5", Year: 2020, Mileage: 40000, EngineSize: 3.0,
				FuelType: "dizel", Condition: "ela", Owners: 3},
			want:       43763,
			confidence: ConfidenceLow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, conf := tables.EnhancedPrice(tc.in, fixedNow)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.confidence, conf)
		})
	}
}

func TestEngineFactorBounds(t *testing.T) {
	assert.Equal(t, 1.0, engineFactor(0))
	assert.Equal(t, 0.85, engineFactor(0.3))
	assert.Equal(t, 1.3, engineFactor(6.2))
}

type fakePredictor struct {
	price      float64
	confidence string
	err        error
	got        Input
}

func (f *fakePredictor) Predict(ctx context.Context, in Input) (float64, string, error) {
	f.got = in
	return f.price, f.confidence, f.err
}

func TestEstimatorPrefersPredictor(t *testing.T) {
	p := &fakePredictor{price: 20000, confidence: "yüksək"}
	e := NewEstimator(defaultTablesT(t), p)

	est, note := e.Estimate(context.Background(), Input{Brand: "Kia", Model: "Rio", Year: 2018, Mileage: 90000, EngineSize: 1.4})
	assert.Empty(t, note)
	assert.Equal(t, Estimate{EstimatedPrice: 20000, MinPrice: 17000, MaxPrice: 23000, Confidence: "yüksək"}, est)
	assert.Equal(t, "benzin", p.got.FuelType)
	assert.Equal(t, 1, p.got.Owners)
}

func TestEstimatorFallsBack(t *testing.T) {
	e := NewEstimator(defaultTablesT(t), &fakePredictor{err: errors.New("no python")})
	e.now = func() time.Time { return fixedNow }

	est, note := e.Estimate(context.Background(), Input{Brand: "Toyota", Model: "Camry", Year: 2016, Mileage: 150000, EngineSize: 2.0})
	assert.Equal(t, FallbackNote, note)
	assert.Equal(t, int64(39900), est.EstimatedPrice)
	assert.Equal(t, int64(33915), est.MinPrice)
	assert.Equal(t, int64(45885), est.MaxPrice)
	assert.Equal(t, ConfidenceMedium, est.Confidence)
}

func TestParseScriptOutput(t *testing.T) {
	price, conf, err := parseScriptOutput("Model yuklendi\n{\"success\": true, \"predicted_price\": 18250.4, \"confidence\": \"yüksək\"}\n")
	require.NoError(t, err)
	assert.Equal(t, 18250.4, price)
	assert.Equal(t, "yüksək", conf)

	_, _, err = parseScriptOutput(`{"success": false, "error": "Model tapılmadı"}`)
	assert.ErrorContains(t, err, "Model tapılmadı")

	_, _, err = parseScriptOutput("Traceback (most recent call last)")
	assert.Error(t, err)

	_, _, err = parseScriptOutput("")
	assert.Error(t, err)
}

func TestScriptPredict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "predict.sh")
	script := "#!/bin/sh\necho 'loading'\necho '{\"success\": true, \"predicted_price\": 12345}'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	s := Script{Interpreter: "sh", Path: path, Timeout: 5 * time.Second}
	price, conf, err := s.Predict(context.Background(), Input{Brand: "Kia", Model: "Rio"})
	require.NoError(t, err)
	assert.Equal(t, 12345.0, price)
	assert.Empty(t, conf)

	missing := Script{Interpreter: "sh", Path: filepath.Join(dir, "missing.sh"), Timeout: time.Second}
	_, _, err = missing.Predict(context.Background(), Input{})
	assert.Error(t, err)
}

func TestLoadTablesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_base: 9000\nmin_price: 100\nbrands:\n  Dacia: 12000\n"), 0o644))

	tables, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, 12000.0, tables.Brands["dacia"])

	_, err = ParseTables([]byte("min_price: 1\n"))
	assert.Error(t, err)
}
