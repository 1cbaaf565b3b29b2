package recommendations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/models"
)

func TestOverpassNearby_ParsesElements(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{"type": "node", "id": 101, "lat": 48.858, "lon": 2.294,
				 "tags": {"name": "Eiffel Tower", "tourism": "attraction", "addr:street": "Avenue Gustave Eiffel", "addr:housenumber": "5", "addr:city": "Paris"}},
				{"type": "way", "id": 202, "center": {"lat": 48.861, "lon": 2.336},
				 "tags": {"name": "Louvre", "tourism": "museum"}},
				{"type": "node", "id": 303, "lat": 48.86, "lon": 2.30, "tags": {"tourism": "viewpoint"}}
			]
		}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, 10000, srv.Client(), zap.NewNop())
	recs, err := client.Nearby(context.Background(), 48.8584, 2.2945, 2000, "tourism")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotQuery, "[out:json]"))
	assert.Contains(t, gotQuery, "around:2000")
	assert.Contains(t, gotQuery, "out center;")

	// The unnamed viewpoint is dropped.
	require.Len(t, recs, 2)
	assert.Equal(t, "node/101", recs[0].ID)
	assert.Equal(t, "Eiffel Tower", recs[0].Name)
	assert.Equal(t, "attraction", recs[0].Tag)
	assert.Equal(t, "Avenue Gustave Eiffel 5, Paris", recs[0].Address)
	assert.Equal(t, "osm", recs[0].PoweredBy)

	assert.Equal(t, "way/202", recs[1].ID)
	assert.Equal(t, 48.861, recs[1].Latitude)
	assert.Equal(t, 2.336, recs[1].Longitude)
}

func TestOverpassNearby_CapsRadius(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("data")
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, 10000, srv.Client(), zap.NewNop())
	_, err := client.Nearby(context.Background(), 48.8584, 2.2945, 500000, "food")

	require.NoError(t, err)
	assert.Contains(t, gotQuery, "around:10000")
	assert.NotContains(t, gotQuery, "around:500000")
}

func TestOverpassNearby_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, 10000, srv.Client(), zap.NewNop())
	_, err := client.Nearby(context.Background(), 48.8584, 2.2945, 1000, "food")

	assert.ErrorIs(t, err, models.ErrUpstreamUnavailable)
}
