package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compliance-audit/backend/internal/models"
)

// chatServer fakes the chat-completions endpoint.
func chatServer(t *testing.T, hits *int32, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		handler(w, r)
	}))
}

func respondWith(content string, annotations string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := `{"choices":[{"message":{"content":` + encodeJSONString(content) + `,"annotations":` + annotations + `}}]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func encodeJSONString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIKey: "test-key", BaseURL: url, Model: "test/model"}, nil)
}

func TestRun_Success(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, respondWith(
		`{"status":"violation","narrative":"Clause 2 limits emissions to 5 ppm; the scenario reports 12 ppm."}`,
		`[]`))
	defer srv.Close()

	report, err := newTestClient(srv.URL).Run(context.Background(), "Clause 2: max 5 ppm.", "Plant emits 12 ppm.", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusViolation, report.Status)
	assert.Contains(t, report.Narrative, "Clause 2")
	assert.Empty(t, report.Citations)
	assert.Equal(t, int32(1), hits)
}

func TestRun_CodeFencedVerdictAccepted(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, respondWith(
		"```json\n{\"status\":\"compliant\",\"narrative\":\"Within limits.\"}\n```",
		`[]`))
	defer srv.Close()

	report, err := newTestClient(srv.URL).Run(context.Background(), "reg", "scn", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompliant, report.Status)
}

func TestRun_WebSearchCitations(t *testing.T) {
	var hits int32
	annotations := `[
		{"type":"url_citation","url_citation":{"url":"https://epa.gov/limits","title":"EPA limits"}},
		{"type":"file"},
		{"type":"url_citation","url_citation":{"url":"https://example.org/ruling","title":"Ruling"}}
	]`
	var gotPlugins []byte
	srv := chatServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		gotPlugins, _ = json.Marshal(req["plugins"])
		respondWith(`{"status":"uncertain","narrative":"See sources."}`, annotations)(w, r)
	})
	defer srv.Close()

	report, err := newTestClient(srv.URL).Run(context.Background(), "reg", "scn", true)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"web"}]`, string(gotPlugins))
	require.Len(t, report.Citations, 2)
	assert.Equal(t, "https://epa.gov/limits", report.Citations[0].URL)
	assert.Equal(t, "EPA limits", report.Citations[0].Title)
	assert.Equal(t, "Ruling", report.Citations[1].Title)
}

func TestRun_UnknownStatusMapsToUncertain(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, respondWith(
		`{"status":"needs-review","narrative":"Ambiguous."}`, `[]`))
	defer srv.Close()

	report, err := newTestClient(srv.URL).Run(context.Background(), "reg", "scn", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUncertain, report.Status)
}

func TestRun_EmptyInputsMakeNoCall(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, respondWith(`{}`, `[]`))
	defer srv.Close()
	c := newTestClient(srv.URL)

	_, err := c.Run(context.Background(), "", "scenario", false)
	require.Error(t, err)
	_, err = c.Run(context.Background(), "regulation", "   ", false)
	require.Error(t, err)
	assert.Equal(t, int32(0), hits, "no external call may be made for invalid input")
}

func TestRun_ServiceErrorSurfaced(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	})
	defer srv.Close()

	_, err := newTestClient(srv.URL).Run(context.Background(), "reg", "scn", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestRun_MalformedVerdictRejected(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, respondWith(`{"status":"compliant"}`, `[]`)) // missing narrative
	defer srv.Close()

	_, err := newTestClient(srv.URL).Run(context.Background(), "reg", "scn", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verdict")
}

func TestRun_NonJSONVerdictRejected(t *testing.T) {
	var hits int32
	srv := chatServer(t, &hits, respondWith(`The scenario looks fine to me.`, `[]`))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Run(context.Background(), "reg", "scn", false)
	require.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
