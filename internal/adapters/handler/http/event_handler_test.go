package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

func seedWeeklySeries(t *testing.T, env *testEnv, userID string) *domain.Event {
	t.Helper()
	// 2024-04-01 is a Monday.
	e, err := domain.NewEvent(userID, "Standup", "", "2024-04-01", "09:30", 15, &domain.Recurrence{
		Type:       domain.RecurrenceWeekly,
		Interval:   1,
		DaysOfWeek: []int{1, 3, 5},
	})
	require.NoError(t, err)
	require.NoError(t, env.events.Create(context.Background(), e))
	return e
}

func TestCreateEvent(t *testing.T) {
	t.Run("Success: 201 Created single event", func(t *testing.T) {
		env := setupEnv()

		body := `{"title": "Dentist", "date": "2024-04-03", "start_time": "09:00", "duration_minutes": 60}`
		w := env.do("POST", "/api/v1/events", "user-1", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Dentist"`)
	})

	t.Run("Success: 201 Created recurring series", func(t *testing.T) {
		env := setupEnv()

		body := `{
			"title": "Standup", "date": "2024-04-01", "start_time": "09:30", "duration_minutes": 15,
			"recurrence": {"type": "weekly", "interval": 1, "days_of_week": [1, 3, 5]}
		}`
		w := env.do("POST", "/api/v1/events", "user-1", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"recurrence"`)
	})

	t.Run("Fail: 400 Bad Request (Weekly without weekdays)", func(t *testing.T) {
		env := setupEnv()

		body := `{
			"title": "Standup", "date": "2024-04-01", "start_time": "09:30", "duration_minutes": 15,
			"recurrence": {"type": "weekly", "interval": 1}
		}`
		w := env.do("POST", "/api/v1/events", "user-1", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEventOccurrences(t *testing.T) {
	t.Run("Success: 200 OK expands series", func(t *testing.T) {
		env := setupEnv()
		seedWeeklySeries(t, env, "user-1")

		w := env.do("GET", "/api/v1/events/occurrences?from=2024-04-01&to=2024-04-07", "user-1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var occurrences []struct {
			Date string `json:"date"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &occurrences))
		require.Len(t, occurrences, 3)
		assert.Equal(t, "2024-04-01", occurrences[0].Date)
		assert.Equal(t, "2024-04-03", occurrences[1].Date)
		assert.Equal(t, "2024-04-05", occurrences[2].Date)
	})

	t.Run("Fail: 400 Bad Request (Missing Range)", func(t *testing.T) {
		env := setupEnv()

		w := env.do("GET", "/api/v1/events/occurrences", "user-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDetachOccurrence(t *testing.T) {
	t.Run("Success: 201 Created detached child", func(t *testing.T) {
		env := setupEnv()
		series := seedWeeklySeries(t, env, "user-1")

		w := env.do("POST", "/api/v1/events/"+series.ID+"/detach", "user-1", `{"date": "2024-04-03"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var child domain.Event
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &child))
		require.NotNil(t, child.ParentEventID)
		assert.Equal(t, series.ID, *child.ParentEventID)
		assert.Equal(t, "2024-04-03", child.Date)

		// Detached date shows up once, flagged, as the child.
		occ := env.do("GET", "/api/v1/events/occurrences?from=2024-04-01&to=2024-04-05", "user-1", "")
		require.Equal(t, http.StatusOK, occ.Code)

		var occurrences []struct {
			EventID  string `json:"event_id"`
			Date     string `json:"date"`
			Detached bool   `json:"detached"`
		}
		require.NoError(t, json.Unmarshal(occ.Body.Bytes(), &occurrences))
		require.Len(t, occurrences, 3)
		assert.Equal(t, child.ID, occurrences[1].EventID)
		assert.True(t, occurrences[1].Detached)
	})

	t.Run("Fail: 404 Not Found (No occurrence on date)", func(t *testing.T) {
		env := setupEnv()
		series := seedWeeklySeries(t, env, "user-1")

		// 2024-04-02 is a Tuesday, not part of the Mon/Wed/Fri series.
		w := env.do("POST", "/api/v1/events/"+series.ID+"/detach", "user-1", `{"date": "2024-04-02"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateEvent(t *testing.T) {
	t.Run("Fail: 409 Conflict (Stale Version)", func(t *testing.T) {
		env := setupEnv()
		series := seedWeeklySeries(t, env, "user-1")
		series.Version = 4
		require.NoError(t, env.events.Update(context.Background(), series))

		body := `{"title": "Renamed", "version": 2}`
		w := env.do("PUT", "/api/v1/events/"+series.ID, "user-1", body)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Fail: 404 Not Found (IDOR Protection)", func(t *testing.T) {
		env := setupEnv()
		series := seedWeeklySeries(t, env, "user-1")

		w := env.do("PUT", "/api/v1/events/"+series.ID, "user-2", `{"title": "Hacked"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteEvent(t *testing.T) {
	t.Run("Success: 204 removes series and children", func(t *testing.T) {
		env := setupEnv()
		series := seedWeeklySeries(t, env, "user-1")

		detach := env.do("POST", "/api/v1/events/"+series.ID+"/detach", "user-1", `{"date": "2024-04-03"}`)
		require.Equal(t, http.StatusCreated, detach.Code)

		w := env.do("DELETE", "/api/v1/events/"+series.ID, "user-1", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		occ := env.do("GET", "/api/v1/events/occurrences?from=2024-04-01&to=2024-04-07", "user-1", "")
		require.Equal(t, http.StatusOK, occ.Code)
		assert.NotContains(t, occ.Body.String(), series.ID)
		assert.NotContains(t, occ.Body.String(), "Standup")
	})
}
