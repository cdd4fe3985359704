// Package valuation estimates the market price of a used car from a handful of attributes.
// An external prediction script is preferred when configured; the lookup-table heuristic is the fallback.
package valuation

import (
	"context"
	"log"
	"math"
	"time"
)

const (
	ConfidenceMedium = "orta"
	ConfidenceLow    = "aşağı"

	FallbackNote = "ML model yüklənmədiyi üçün təxmini hesablama istifadə olundu"

	rangeLow  = 0.85
	rangeHigh = 1.15
)

type Input struct {
	Brand        string  `json:"brand"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Mileage      int     `json:"mileage"`
	EngineSize   float64 `json:"engine_size"`
	FuelType     string  `json:"fuel_type"`
	Transmission string  `json:"transmission"`
	Condition    string  `json:"condition"`
	Color        string  `json:"color,omitempty"`
	City         string  `json:"city"`
	Owners       int     `json:"owners"`
}

// WithDefaults fills the optional attributes the form may leave empty.
func (in Input) WithDefaults() Input {
	if in.FuelType == "" {
		in.FuelType = "benzin"
	}
	if in.Transmission == "" {
		in.Transmission = "avtomat"
	}
	if in.Condition == "" {
		in.Condition = "yaxsi"
	}
	if in.City == "" {
		in.City = "Bakı"
	}
	if in.Owners <= 0 {
		in.Owners = 1
	}
	return in
}

type Estimate struct {
	EstimatedPrice int64  `json:"estimated_price"`
	MinPrice       int64  `json:"min_price"`
	MaxPrice       int64  `json:"max_price"`
	Confidence     string `json:"confidence"`
}

func newEstimate(price float64, confidence string) Estimate {
	return Estimate{
		EstimatedPrice: int64(math.Round(price)),
		MinPrice:       int64(math.Round(price * rangeLow)),
		MaxPrice:       int64(math.Round(price * rangeHigh)),
		Confidence:     confidence,
	}
}

// Predictor is an external price model, such as the Python script.
type Predictor interface {
	Predict(ctx context.Context, in Input) (price float64, confidence string, err error)
}

type Estimator struct {
	tables    *Tables
	predictor Predictor
	now       func() time.Time
}

// NewEstimator builds an estimator; predictor may be nil.
func NewEstimator(tables *Tables, predictor Predictor) *Estimator {
	return &Estimator{tables: tables, predictor: predictor, now: time.Now}
}

// Estimate never fails: any predictor error falls back to the heuristic and returns a note saying so.
func (e *Estimator) Estimate(ctx context.Context, in Input) (Estimate, string) {
	in = in.WithDefaults()

	if e.predictor != nil {
		price, confidence, err := e.predictor.Predict(ctx, in)
		if err == nil {
			if confidence == "" {
				confidence = ConfidenceMedium
			}
			return newEstimate(price, confidence), ""
		}
		log.Printf("⚠️ Price prediction script failed, using heuristic: %v", err)
	}

	price, confidence := e.tables.EnhancedPrice(in, e.now())
	return newEstimate(price, confidence), FallbackNote
}

// EnhancedPrice runs the multiplicative heuristic over the lookup tables.
func (t *Tables) EnhancedPrice(in Input, now time.Time) (float64, string) {
	in = in.WithDefaults()
	refYear := t.ReferenceYear
	if refYear == 0 {
		refYear = now.Year()
	}

	var price float64
	confidence := ConfidenceLow

	if stats, ok := t.Models[normalizeKey(in.Brand+" "+in.Model)]; ok {
		price = stats.AvgPrice * (1 + 0.05*(float64(in.Year)-stats.AvgYear))
		if stats.AvgMileage > 0 {
			price *= 1 - 0.15*(float64(in.Mileage)/stats.AvgMileage-1)
		}
		price = clamp(price, stats.MinPrice*0.5, stats.MaxPrice*1.5)
		confidence = ConfidenceMedium
	} else {
		base, ok := t.Brands[normalizeKey(in.Brand)]
		if !ok {
			base = t.DefaultBase
		}
		age := math.Max(0, float64(refYear-in.Year))
		price = base * math.Max(0.2, 1-0.07*age) * math.Max(0.5, 1-0.05*float64(in.Mileage)/20000)
	}

	price *= factor(t.Condition, in.Condition)
	price *= factor(t.Fuel, in.FuelType)
	price *= factor(t.Transmission, in.Transmission)
	price *= engineFactor(in.EngineSize)
	price *= math.Max(0.85, 1-0.03*float64(in.Owners-1))

	return math.Max(t.MinPrice, math.Round(price)), confidence
}

// engineFactor moves the price 5% per half litre away from 2.0 L.
func engineFactor(litres float64) float64 {
	if litres <= 0 {
		return 1
	}
	return clamp(1+0.05*(litres-2.0)/0.5, 0.85, 1.3)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
