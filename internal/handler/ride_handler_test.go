package handler

import (
	"net/http"
	"testing"
	"time"

	"frota/internal/apperr"
	"frota/internal/middleware"
	"frota/internal/model"
	"frota/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRideHandler_ListParsesFilters(t *testing.T) {
	svc := new(MockRideService)
	r := newRouter(NewRideHandler(svc, testGate()))

	svc.On("ListRides", mock.Anything, mock.MatchedBy(func(f service.RideListFilter) bool {
		return f.From.Day() == 1 && f.From.Hour() == 0 &&
			f.To.Day() == 10 && f.To.Hour() == 23 &&
			f.ClientID == 4 && f.Status == "Completed" && f.Limit == rideDefaultLimit
	})).Return([]service.RideResponse{{ID: 1, Status: model.RideStatusCompleted}}, int64(1), nil)

	w := do(r, http.MethodGet, "/api/rides?from=2024-03-01&to=2024-03-10&client_id=4&status=Completed", bearer(t, "Rides:View"), "")

	assert.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w).Data.(map[string]interface{})
	assert.EqualValues(t, 1, page["total"])
	assert.EqualValues(t, rideDefaultLimit, page["limit"])
	svc.AssertExpectations(t)
}

func TestRideHandler_ListRejectsBadDate(t *testing.T) {
	svc := new(MockRideService)
	r := newRouter(NewRideHandler(svc, testGate()))

	w := do(r, http.MethodGet, "/api/rides?from=15/03/2024", bearer(t, "Rides:View"), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListRides", mock.Anything, mock.Anything)
}

func TestRideHandler_EditNeedsEditGrant(t *testing.T) {
	svc := new(MockRideService)
	r := newRouter(NewRideHandler(svc, testGate()))

	w := do(r, http.MethodPatch, "/api/rides/5/complete", bearer(t, "Rides:View"), "")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, middleware.AccessDeniedPath, w.Header().Get("Location"))
	svc.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything)
}

func TestRideHandler_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing", apperr.NotFound("ride"), http.StatusNotFound},
		{"conflict", apperr.ErrConcurrencyConflict, http.StatusConflict},
		{"invalid", apperr.Validation("a completed ride cannot return to scheduled"), http.StatusBadRequest},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockRideService)
			r := newRouter(NewRideHandler(svc, testGate()))
			svc.On("MarkCompleted", mock.Anything, uint(5)).Return(nil, tt.err)

			w := do(r, http.MethodPatch, "/api/rides/5/complete", bearer(t, "Rides:Edit"), "")

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "Internal server error", decode(t, w).Error)
			}
		})
	}
}

func TestRideHandler_CreateBindsPayload(t *testing.T) {
	svc := new(MockRideService)
	r := newRouter(NewRideHandler(svc, testGate()))
	scheduled := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	svc.On("CreateRide", mock.Anything, mock.MatchedBy(func(req service.SaveRideRequest) bool {
		return req.ClientID == 1 && req.FareType == "Route" && req.ScheduledAt.Equal(scheduled) && *req.RouteID == 9
	})).Return(&service.RideResponse{ID: 12}, nil)

	body := `{"client_id":1,"requester_id":2,"fare_type":"Route","route_id":9,"unit_id":3,"scheduled_at":"2024-03-20T09:00:00Z","price":"0"}`
	w := do(r, http.MethodPost, "/api/rides", bearer(t, "Rides:Edit"), body)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestRideHandler_CreateMissingFieldsIsBadRequest(t *testing.T) {
	svc := new(MockRideService)
	r := newRouter(NewRideHandler(svc, testGate()))

	w := do(r, http.MethodPost, "/api/rides", bearer(t, "Rides:Edit"), `{"client_id":1}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateRide", mock.Anything, mock.Anything)
}
