package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gg "github.com/sells-group/leadscout/internal/geo"
)

var (
	testCenter = gg.Point{Lat: 30.2672, Lng: -97.7431}
	testNow    = time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
)

func alertsJSON(features ...string) string {
	body := "["
	for i, f := range features {
		if i > 0 {
			body += ","
		}
		body += f
	}
	return `{"features": ` + body + `]}`
}

func feature(id, event, severity string, sent time.Time, geometry string) string {
	geomField := "null"
	if geometry != "" {
		geomField = geometry
	}
	return fmt.Sprintf(`{
		"id": %q,
		"geometry": %s,
		"properties": {"event": %q, "severity": %q, "sent": %q}
	}`, id, geomField, event, severity, sent.Format(time.RFC3339))
}

func newAlertsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alerts", r.URL.Path)
		assert.Equal(t, "actual", r.URL.Query().Get("status"))
		assert.Equal(t, "30.2672,-97.7431", r.URL.Query().Get("point"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(body))
	}))
}

func TestStormsNear_Success(t *testing.T) {
	// A polygon centered just north of the search point.
	geometry := `{
		"type": "Polygon",
		"coordinates": [[[-97.76, 30.29], [-97.72, 30.29], [-97.72, 30.31], [-97.76, 30.31], [-97.76, 30.29]]]
	}`
	body := alertsJSON(
		feature("alert-1", "Severe Thunderstorm Warning", "Severe", testNow.Add(-26*time.Hour), geometry),
		feature("alert-2", "Air Quality Alert", "Minor", testNow, ""),
	)
	srv := newAlertsServer(t, body)
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithClock(func() time.Time { return testNow }),
	)
	events, err := client.StormsNear(context.Background(), testCenter, 25)

	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "alert-1", ev.ID)
	assert.Equal(t, "Severe Thunderstorm Warning", ev.Type)
	assert.Equal(t, "Severe", ev.Severity)
	assert.Equal(t, 1, ev.DaysAgo)
	assert.InDelta(t, 30.298, ev.Center.Lat, 0.001)
	assert.InDelta(t, -97.744, ev.Center.Lng, 0.001)
	assert.Greater(t, ev.DistanceMiles, 0.0)
	require.NotNil(t, ev.Geometry)
	assert.Equal(t, 4326, ev.Geometry.SRID())
}

func TestStormsNear_NonQualifyingEventsFiltered(t *testing.T) {
	body := alertsJSON(
		feature("alert-1", "Red Flag Warning", "Moderate", testNow, ""),
		feature("alert-2", "Special Weather Statement", "Minor", testNow, ""),
	)
	srv := newAlertsServer(t, body)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithClock(func() time.Time { return testNow }))
	events, err := client.StormsNear(context.Background(), testCenter, 25)

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStormsNear_MissingGeometryAnchorsAtCenter(t *testing.T) {
	body := alertsJSON(feature("alert-1", "Hail Storm Warning", "Severe", testNow, ""))
	srv := newAlertsServer(t, body)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithClock(func() time.Time { return testNow }))
	events, err := client.StormsNear(context.Background(), testCenter, 25)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, testCenter, events[0].Center)
	assert.Zero(t, events[0].DistanceMiles)
	assert.Equal(t, 0, events[0].DaysAgo)
}

func TestStormsNear_BeyondRadiusExcluded(t *testing.T) {
	// Roughly 70 miles north of the search point.
	geometry := `{
		"type": "Polygon",
		"coordinates": [[[-97.75, 31.27], [-97.73, 31.27], [-97.73, 31.29], [-97.75, 31.29], [-97.75, 31.27]]]
	}`
	body := alertsJSON(feature("alert-1", "Tornado Warning", "Extreme", testNow, geometry))
	srv := newAlertsServer(t, body)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithClock(func() time.Time { return testNow }))
	events, err := client.StormsNear(context.Background(), testCenter, 25)

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStormsNear_MultiPolygonCentroid(t *testing.T) {
	geometry := `{
		"type": "MultiPolygon",
		"coordinates": [[[[-97.75, 30.27], [-97.73, 30.27], [-97.73, 30.29], [-97.75, 30.29], [-97.75, 30.27]]]]
	}`
	body := alertsJSON(feature("alert-1", "High Wind Warning", "Severe", testNow, geometry))
	srv := newAlertsServer(t, body)
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithClock(func() time.Time { return testNow }))
	events, err := client.StormsNear(context.Background(), testCenter, 25)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.InDelta(t, 30.278, events[0].Center.Lat, 0.001)
}

func TestStormsNear_DeterministicGeometry(t *testing.T) {
	body := alertsJSON(feature("alert-1", "Hail Storm Warning", "Severe", testNow, ""))

	fetch := func() *StormEvent {
		srv := newAlertsServer(t, body)
		defer srv.Close()
		client := NewClient(WithBaseURL(srv.URL), WithClock(func() time.Time { return testNow }))
		events, err := client.StormsNear(context.Background(), testCenter, 25)
		require.NoError(t, err)
		require.Len(t, events, 1)
		return &events[0]
	}

	first := fetch()
	second := fetch()
	assert.Equal(t, first.Geometry.FlatCoords(), second.Geometry.FlatCoords())
}

func TestStormsNear_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "missing User-Agent"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	events, err := client.StormsNear(context.Background(), testCenter, 25)

	assert.Error(t, err)
	assert.Nil(t, events)
	assert.Contains(t, err.Error(), "403")
}
