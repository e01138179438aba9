package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Eursukkul/eventsphere/internal/dto"
	"github.com/Eursukkul/eventsphere/internal/models"
	"github.com/Eursukkul/eventsphere/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var host = &models.User{ID: 900, Name: "Hana", Role: models.RoleHost}

func TestCreateEvent_Handler(t *testing.T) {
	var gotHost service.Host
	var gotInput service.EventInput
	svc := &mockHostService{
		createFn: func(ctx context.Context, h service.Host, in service.EventInput) (*models.Event, error) {
			gotHost, gotInput = h, in
			return &models.Event{ID: 1, Title: *in.Title, Status: models.EventPending}, nil
		},
	}

	body := `{"title":"Go Conf","date":"2026-12-01T10:00:00Z","max_attendees":100,"approved":true,"status":"approved"}`
	c, rec := newContext(http.MethodPost, "/api/v1/host/events", body, host)

	require.NoError(t, NewHostHandler(svc, Guards{}).CreateEvent(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, service.Host{ID: 900, Name: "Hana"}, gotHost)
	require.NotNil(t, gotInput.MaxAttendees)
	assert.Equal(t, 100, *gotInput.MaxAttendees)

	var resp dto.EventActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Event submitted for approval", resp.Message)
	assert.Equal(t, models.EventPending, resp.Event.Status)
}

func TestCreateEvent_Handler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"date":"2026-12-01T10:00:00Z"}`},
		{"missing date", `{"title":"Go Conf"}`},
		{"bad type", `{"title":"Go Conf","date":"2026-12-01T10:00:00Z","type":"squad"}`},
		{"negative capacity", `{"title":"Go Conf","date":"2026-12-01T10:00:00Z","max_attendees":-1}`},
		{"malformed", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/v1/host/events", tt.body, host)
			err := NewHostHandler(&mockHostService{}, Guards{}).CreateEvent(c)
			assert.Equal(t, http.StatusBadRequest, httpCode(err))
		})
	}
}

func TestUpdateEvent_Handler_ForeignEvent(t *testing.T) {
	svc := &mockHostService{
		updateFn: func(ctx context.Context, hostID, eventID uint, in service.EventInput) (*models.Event, error) {
			return nil, service.ErrEventNotFound
		},
	}
	c, _ := newContext(http.MethodPut, "/api/v1/host/events/3", `{"title":"x"}`, host)
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := NewHostHandler(svc, Guards{}).UpdateEvent(c)
	assert.Equal(t, http.StatusNotFound, httpCode(err))
}

func TestUpdateSettings_Handler(t *testing.T) {
	var got service.SettingsPatch
	svc := &mockHostService{
		updateSettingsFn: func(ctx context.Context, hostID, eventID uint, patch service.SettingsPatch) (service.Settings, error) {
			got = patch
			return service.Settings{IsActive: true, MaxTicketsPerUser: 1}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/api/v1/host/events/3/settings", `{"is_active":"on","max_tickets_per_user":"0","registration_deadline":null}`, host)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewHostHandler(svc, Guards{}).UpdateSettings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"on"`, string(got.IsActive))
	assert.JSONEq(t, `"0"`, string(got.MaxTicketsPerUser))
	assert.Equal(t, "null", string(got.RegistrationDeadline))
	assert.Nil(t, got.OneSeatPerUser)

	var resp dto.SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Settings updated", resp.Message)
	assert.Equal(t, 1, resp.Settings.MaxTicketsPerUser)
}

func TestGetSettings_Handler(t *testing.T) {
	date := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
	svc := &mockHostService{
		getSettingsFn: func(ctx context.Context, hostID, eventID uint) (*models.Event, service.Settings, error) {
			return &models.Event{ID: eventID, Title: "Go Conf", Date: &date, Status: models.EventApproved},
				service.Settings{IsActive: true, AllowCancellation: true, MaxTicketsPerUser: 3}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/v1/host/events/3/settings", "", host)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewHostHandler(svc, Guards{}).GetSettings(c))

	var resp dto.SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Event)
	assert.Equal(t, "Go Conf", resp.Event.Title)
	assert.Equal(t, 3, resp.Settings.MaxTicketsPerUser)
	assert.True(t, resp.Settings.AllowCancellation)
}

func TestExportCSV_Handler(t *testing.T) {
	csv := service.RegistrationsCSV([]models.Registration{{Seats: 1, PaymentStatus: models.PaymentSuccess}})
	svc := &mockHostService{
		exportFn: func(ctx context.Context, hostID, eventID uint) ([]byte, error) {
			assert.Equal(t, host.ID, hostID)
			return csv, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/api/v1/host/events/3/export", "", host)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewHostHandler(svc, Guards{}).ExportCSV(c))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "event-3-registrations.csv")
	assert.Equal(t, csv, rec.Body.Bytes())
}

func TestToggleActive_Handler(t *testing.T) {
	svc := &mockHostService{
		toggleFn: func(ctx context.Context, hostID, eventID uint) (*models.Event, error) {
			return &models.Event{ID: eventID, IsActive: false}, nil
		},
	}
	c, rec := newContext(http.MethodPut, "/api/v1/host/events/3/toggle", "", host)
	c.SetParamNames("id")
	c.SetParamValues("3")

	require.NoError(t, NewHostHandler(svc, Guards{}).ToggleActive(c))
	assert.JSONEq(t, `{"success":true,"is_active":false}`, rec.Body.String())
}
