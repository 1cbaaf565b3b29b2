package recommendations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlacesNearby_ParsesPlaces(t *testing.T) {
	var gotKey, gotMask string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotMask = r.Header.Get("X-Goog-FieldMask")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"places": [
				{"id": "abc123",
				 "displayName": {"text": "Grand Hotel"},
				 "formattedAddress": "Karl Johans gate 31, Oslo",
				 "location": {"latitude": 59.9133, "longitude": 10.7389},
				 "primaryType": "hotel",
				 "editorialSummary": {"text": "Historic hotel on the main street."}},
				{"id": "noname", "displayName": {"text": ""}}
			]
		}`))
	}))
	defer srv.Close()

	client := NewPlacesClient("test-key", srv.Client(), zap.NewNop())
	client.endpoint = srv.URL
	recs, err := client.Nearby(context.Background(), 59.91, 10.75, 1000, "lodging")

	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotMask, "places.displayName")

	require.Len(t, recs, 1)
	assert.Equal(t, "abc123", recs[0].ID)
	assert.Equal(t, "Grand Hotel", recs[0].Name)
	assert.Equal(t, "Historic hotel on the main street.", recs[0].Description)
	assert.Equal(t, "hotel", recs[0].Tag)
	assert.Equal(t, "google", recs[0].PoweredBy)
}
