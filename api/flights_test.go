package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightops/internal/domain"
	"github.com/Domenick1991/flightops/internal/service/flights"
)

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/flights", nil)

	flights := []domain.Flight{
		{ID: 1, FlightNo: "AA100", Status: domain.FlightStatusScheduled, Capacity: 180},
	}
	mockService.On("List", c.Request.Context()).Return(flights, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool            `json:"success"`
		Flights []domain.Flight `json:"flights"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Flights, 1)
	assert.Equal(t, "AA100", response.Flights[0].FlightNo)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("GET", "/api/flights/1", nil)

	mockService.On("GetByID", c.Request.Context(), int64(1)).Return(nil, domain.NotFoundError("Flight not found"))

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_InvalidID(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "invalid"}}
	c.Request = httptest.NewRequest("GET", "/api/flights/invalid", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockService.Calls)
}

func TestFlightHandler_routes(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.Register(router.Group("/api/flights"))

	mockService.On("AvailableSeats", mock.Anything, int64(1)).Return(178, nil)
	mockService.On("CancelFlight", mock.Anything, "AA100").Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/flights/1/available-seats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"flight_id":1,"available_seats":178}`, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/flights/cancel", bytes.NewReader([]byte(`{"flight_no":"AA100"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_maintenance(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.Register(router.Group("/api/flights"))

	input := flights.CreateFlightInput{
		FlightNo:      "AA300",
		AirlineID:     1,
		FromAirportID: 1,
		ToAirportID:   2,
		DepartureTime: "2030-05-01T09:00:00Z",
		ArrivalTime:   "2030-05-01T11:30:00Z",
	}
	mockService.On("CreateFlight", mock.Anything, input).Return(&domain.Flight{ID: 9, FlightNo: "AA300"}, nil)

	capacity := 0
	mockService.On("UpdateFlight", mock.Anything, int64(9), flights.UpdateFlightInput{Capacity: &capacity}).
		Return(nil, domain.ValidationError("Capacity must be at least 1"))

	mockService.On("DeleteFlight", mock.Anything, int64(9)).Return(nil)

	body, _ := json.Marshal(input)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/flights", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"flight_id":9`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("PUT", "/api/flights/9", bytes.NewReader([]byte(`{"capacity":0}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Capacity must be at least 1")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/flights/9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Flight deleted successfully")

	mockService.AssertExpectations(t)
}
