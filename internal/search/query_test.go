package search

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/geo"
)

func validQuery() Query {
	return Query{
		Tenant:      "acme",
		Center:      geo.Point{Lat: 30.2672, Lng: -97.7431},
		RadiusMiles: 10,
		Industry:    "roofing",
	}
}

func TestQueryValidateAccepts(t *testing.T) {
	require.NoError(t, validQuery().Validate())
}

func TestQueryValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Query)
		field  string
	}{
		{"missing tenant", func(q *Query) { q.Tenant = "  " }, "tenant"},
		{"lat out of range", func(q *Query) { q.Center.Lat = 91 }, "lat"},
		{"lng out of range", func(q *Query) { q.Center.Lng = -181 }, "lng"},
		{"zero radius", func(q *Query) { q.RadiusMiles = 0 }, "radius"},
		{"negative radius", func(q *Query) { q.RadiusMiles = -5 }, "radius"},
		{"missing industry", func(q *Query) { q.Industry = "" }, "industry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(&q)

			err := q.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
