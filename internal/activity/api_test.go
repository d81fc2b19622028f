package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, record bool) (http.Handler, *Service) {
	t.Helper()
	activityService := newTestService(t)
	converter := NewConverter(DefaultOptions(), discardLogger())
	return NewAPI(discardLogger(), activityService, converter, record), activityService
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewReader(body)))
	return rec
}

func TestAPIGetActivities(t *testing.T) {
	h, activityService := newTestAPI(t, false)
	id, err := activityService.Add(context.Background(), testActivity("<x/>"))
	require.NoError(t, err)

	rec := serve(h, http.MethodGet, "/activities", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var activities []Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activities))
	require.Len(t, activities, 1)
	assert.Equal(t, id, activities[0].ID)
	assert.Empty(t, activities[0].Splits)
	assert.Empty(t, activities[0].TCX)
}

func TestAPIGetActivityDetail(t *testing.T) {
	h, activityService := newTestAPI(t, false)
	id, err := activityService.Add(context.Background(), testActivity("<x/>"))
	require.NoError(t, err)

	rec := serve(h, http.MethodGet, "/activities/"+id, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var activity Activity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activity))
	assert.Equal(t, "Morning Ride", activity.Name)
	assert.Len(t, activity.Splits, 2)

	rec = serve(h, http.MethodGet, "/activities/"+id+"/tcx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.garmin.tcx+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<x/>", rec.Body.String())
}

func TestAPIActivityNotFound(t *testing.T) {
	h, _ := newTestAPI(t, false)

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/activities/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/activities/nope/tcx", nil).Code)
}

func TestAPIConvert(t *testing.T) {
	h, activityService := newTestAPI(t, true)

	rec := serve(h, http.MethodPost, "/convert?start=2024-01-01T10:00&name=ride.json", threeSecondRide(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "<Time>2024-01-01T10:00:02Z</Time>")
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/activities/"))

	stored, err := activityService.GetByID(context.Background(), strings.TrimPrefix(location, "/activities/"))
	require.NoError(t, err)
	assert.Equal(t, "ride.json", stored.Source)
	assert.Equal(t, rec.Body.Bytes(), stored.TCX)
}

func TestAPIConvertWithoutRecord(t *testing.T) {
	h, activityService := newTestAPI(t, false)

	rec := serve(h, http.MethodPost, "/convert?start=2024-01-01T10:00", threeSecondRide(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	all, err := activityService.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAPIConvertErrors(t *testing.T) {
	h, _ := newTestAPI(t, true)

	rec := serve(h, http.MethodPost, "/convert", threeSecondRide(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, "/convert?start=2024-01-01T10:00", inconsistentRide(t))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "data inconsistency")

	rec = serve(h, http.MethodPost, "/convert?start=2024-01-01T10:00", []byte("not json"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed input")
}

func TestAPIMetrics(t *testing.T) {
	h, _ := newTestAPI(t, false)
	serve(h, http.MethodPost, "/convert?start=2024-01-01T10:00", threeSecondRide(t))

	rec := serve(h, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mywellness2tcx_conversions_total{result="ok",strategy="integrate"}`)
	assert.Contains(t, rec.Body.String(), "mywellness2tcx_samples_converted_total")
}
