package valuationController

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/EltunLTN/autoparts-api/valuation"
	"github.com/gin-gonic/gin"
)

// The form posts either camelCase or snake_case keys, and numbers may arrive as strings.
var aliases = map[string][]string{
	"brand":        {"brand", "marka"},
	"model":        {"model"},
	"year":         {"year", "il"},
	"mileage":      {"mileage", "yurus"},
	"engineSize":   {"engineSize", "engine_size", "engine"},
	"fuelType":     {"fuelType", "fuel_type"},
	"transmission": {"transmission"},
	"condition":    {"condition"},
	"color":        {"color"},
	"city":         {"city"},
	"owners":       {"owners"},
}

var requiredFields = []string{"brand", "model", "year", "mileage", "engineSize"}

type predictBody map[string]interface{}

func (b predictBody) lookup(field string) (interface{}, bool) {
	for _, key := range aliases[field] {
		if v, ok := b[key]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (b predictBody) str(field string) string {
	v, ok := b.lookup(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (b predictBody) num(field string) (float64, error) {
	v, ok := b.lookup(field)
	if !ok {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", field)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s must be a number", field)
	}
}

// input converts the body, reporting missing required fields and malformed numbers.
func (b predictBody) input() (valuation.Input, error) {
	var missing []string
	for _, f := range requiredFields {
		if _, ok := b.lookup(f); !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return valuation.Input{}, fmt.Errorf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	year, err := b.num("year")
	if err != nil {
		return valuation.Input{}, err
	}
	mileage, err := b.num("mileage")
	if err != nil {
		return valuation.Input{}, err
	}
	engine, err := b.num("engineSize")
	if err != nil {
		return valuation.Input{}, err
	}
	owners, err := b.num("owners")
	if err != nil {
		return valuation.Input{}, err
	}
	if year < 1950 || mileage < 0 || engine <= 0 {
		return valuation.Input{}, fmt.Errorf("year, mileage or engineSize out of range")
	}

	return valuation.Input{
		Brand:        b.str("brand"),
		Model:        b.str("model"),
		Year:         int(year),
		Mileage:      int(mileage),
		EngineSize:   engine,
		FuelType:     b.str("fuelType"),
		Transmission: b.str("transmission"),
		Condition:    b.str("condition"),
		Color:        b.str("color"),
		City:         b.str("city"),
		Owners:       int(owners),
	}, nil
}

// PredictPrice answers the car valuation form. The estimator never fails, so
// every well-formed request gets a prediction.
func PredictPrice(estimator *valuation.Estimator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body predictBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
			return
		}
		in, err := body.input()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		estimate, note := estimator.Estimate(c.Request.Context(), in)
		resp := gin.H{"success": true, "prediction": estimate}
		if note != "" {
			resp["note"] = note
		}
		c.JSON(http.StatusOK, resp)
	}
}
