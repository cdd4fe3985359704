package valuationController

import (
	"context"
	"net/http"
	"testing"

	"github.com/EltunLTN/autoparts-api/testutil"
	"github.com/EltunLTN/autoparts-api/valuation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	got valuation.Input
}

func (s *stubPredictor) Predict(_ context.Context, in valuation.Input) (float64, string, error) {
	s.got = in
	return 20000, "yüksək", nil
}

type predictResponse struct {
	Success    bool               `json:"success"`
	Prediction valuation.Estimate `json:"prediction"`
	Note       string             `json:"note"`
	Error      string             `json:"error"`
}

func newRouter(t *testing.T, predictor valuation.Predictor) *gin.Engine {
	t.Helper()
	tables, err := valuation.LoadTables("")
	require.NoError(t, err)
	r := gin.New()
	r.POST("/api/predict-price", PredictPrice(valuation.NewEstimator(tables, predictor)))
	return r
}

func TestPredictPriceHeuristic(t *testing.T) {
	r := newRouter(t, nil)

	w := testutil.JSONRequest(t, r, http.MethodPost, "/api/predict-price", gin.H{
		"brand": "Toyota", "model": "Camry", "year": "2016", "mileage": 150000, "engine_size": "2,0",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp predictResponse
	testutil.Decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, valuation.Estimate{EstimatedPrice: 39900, MinPrice: 33915, MaxPrice: 45885, Confidence: valuation.ConfidenceMedium}, resp.Prediction)
	assert.Equal(t, valuation.FallbackNote, resp.Note)
}

func TestPredictPriceUsesPredictor(t *testing.T) {
	stub := &stubPredictor{}
	r := newRouter(t, stub)

	w := testutil.JSONRequest(t, r, http.MethodPost, "/api/predict-price", gin.H{
		"brand": "Kia", "model": "Rio", "year": 2019, "mileage": 0, "engineSize": 1.4, "fuelType": "dizel", "owners": "2",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp predictResponse
	testutil.Decode(t, w, &resp)
	assert.EqualValues(t, 20000, resp.Prediction.EstimatedPrice)
	assert.Equal(t, "yüksək", resp.Prediction.Confidence)
	assert.Empty(t, resp.Note)
	assert.NotContains(t, w.Body.String(), `"note"`)

	assert.Equal(t, "dizel", stub.got.FuelType)
	assert.Equal(t, 2, stub.got.Owners)
	assert.Equal(t, 0, stub.got.Mileage, "zero mileage is a valid value")
	assert.Equal(t, "avtomat", stub.got.Transmission)
}

func TestPredictPriceRejects(t *testing.T) {
	r := newRouter(t, nil)

	w := testutil.JSONRequest(t, r, http.MethodPost, "/api/predict-price", gin.H{"brand": "Toyota", "model": ""}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp predictResponse
	testutil.Decode(t, w, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Missing required fields: model, year, mileage, engineSize", resp.Error)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/api/predict-price", gin.H{
		"brand": "Toyota", "model": "Camry", "year": "iki min", "mileage": 1, "engineSize": 2,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/api/predict-price", gin.H{
		"brand": "Toyota", "model": "Camry", "year": 2016, "mileage": -5, "engineSize": 2,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.JSONRequest(t, r, http.MethodPost, "/api/predict-price", "not an object", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
