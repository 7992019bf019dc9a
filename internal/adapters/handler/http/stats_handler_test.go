package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
)

func TestStatsCalendar(t *testing.T) {
	t.Run("Success: 200 OK with day statuses", func(t *testing.T) {
		env := setupEnv()
		h := seedHabit(t, env, "user-1", "Walk")

		today := dateutil.FormatDay(time.Now().UTC())
		path := fmt.Sprintf("/api/v1/days/%s/habits/%s", today, h.ID)
		require.Equal(t, http.StatusOK, env.do("PUT", path, "user-1", `{"done": true}`).Code)

		from := dateutil.FormatDay(time.Now().UTC().AddDate(0, 0, -2))
		w := env.do("GET", fmt.Sprintf("/api/v1/stats/calendar?start_date=%s&end_date=%s", from, today), "user-1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Days map[string]string `json:"days"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "complete", resp.Days[today])
	})

	t.Run("Fail: 400 Bad Request (Inverted Range)", func(t *testing.T) {
		env := setupEnv()

		w := env.do("GET", "/api/v1/stats/calendar?start_date=2024-03-10&end_date=2024-03-01", "user-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 Bad Request (Range Too Large)", func(t *testing.T) {
		env := setupEnv()

		w := env.do("GET", "/api/v1/stats/calendar?start_date=2020-01-01&end_date=2024-03-01", "user-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStatsWeekly(t *testing.T) {
	t.Run("Success: 200 OK completion rates", func(t *testing.T) {
		env := setupEnv()
		h := seedHabit(t, env, "user-1", "Walk")

		today := dateutil.FormatDay(time.Now().UTC())
		path := fmt.Sprintf("/api/v1/days/%s/habits/%s", today, h.ID)
		require.Equal(t, http.StatusOK, env.do("PUT", path, "user-1", `{"done": true}`).Code)

		w := env.do("GET", "/api/v1/stats/weekly", "user-1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			TotalHabits int `json:"total_habits"`
			Habits      []struct {
				HabitID       string `json:"habit_id"`
				DaysCompleted int    `json:"days_completed"`
			} `json:"habits"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.TotalHabits)
		require.Len(t, resp.Habits, 1)
		assert.Equal(t, h.ID, resp.Habits[0].HabitID)
		assert.Equal(t, 1, resp.Habits[0].DaysCompleted)
	})
}

func TestStatsStreaks(t *testing.T) {
	t.Run("Success: 200 OK streak summary", func(t *testing.T) {
		env := setupEnv()
		h := seedHabit(t, env, "user-1", "Walk")

		today := dateutil.FormatDay(time.Now().UTC())
		path := fmt.Sprintf("/api/v1/days/%s/habits/%s", today, h.ID)
		require.Equal(t, http.StatusOK, env.do("PUT", path, "user-1", `{"done": true}`).Code)

		w := env.do("GET", "/api/v1/stats/habits/"+h.ID+"/streaks", "user-1", "")

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			CurrentStreak int `json:"current_streak"`
			NextMilestone int `json:"next_milestone"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.CurrentStreak)
		assert.Equal(t, 3, resp.NextMilestone)
	})

	t.Run("Fail: 404 Not Found (IDOR Protection)", func(t *testing.T) {
		env := setupEnv()
		h := seedHabit(t, env, "user-1", "Walk")

		w := env.do("GET", "/api/v1/stats/habits/"+h.ID+"/streaks", "user-2", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
