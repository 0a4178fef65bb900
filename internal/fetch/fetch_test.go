package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := DefaultOptions()
	opts.BaseURL = server.URL
	return NewClient("test-key", opts)
}

func TestProductURL(t *testing.T) {
	assert.Equal(t, "https://www.amazon.com/dp/B08N5WRWNW", ProductURL("B08N5WRWNW"))
}

func TestListingSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://www.amazon.com/dp/B08N5WRWNW", req["targetUrl"])
		assert.ElementsMatch(t, []any{"markdown", "html"}, req["outputFormats"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"markdown":      "# Page",
			"html":          "<html></html>",
			"screenshotUrl": "https://cdn.example.com/shot.png",
			"creditsUsed":   1.0,
		})
	})

	content, err := client.Listing(context.Background(), "B08N5WRWNW")
	require.NoError(t, err)
	assert.Equal(t, "# Page", content.Markdown)
	assert.Equal(t, "<html></html>", content.HTML)
	assert.Equal(t, "https://cdn.example.com/shot.png", content.ScreenshotURL)
	assert.False(t, content.FetchedAt.IsZero())
}

func TestListingMissingViewIsFailure(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"Missing markdown", map[string]any{"html": "<html></html>"}},
		{"Missing html", map[string]any{"markdown": "# Page"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.body)
			})

			_, err := client.Listing(context.Background(), "B08N5WRWNW")
			require.Error(t, err)

			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, "B08N5WRWNW", fetchErr.Identifier)
		})
	}
}

func TestListingHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Listing(context.Background(), "B08N5WRWNW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestListingMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.Listing(context.Background(), "B08N5WRWNW")
	require.Error(t, err)
}

func TestBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF})
	}))
	t.Cleanup(server.Close)

	data, err := Bytes(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
}
