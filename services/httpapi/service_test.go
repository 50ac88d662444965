package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"secscrape-backend/lib/extractor"
	"secscrape-backend/lib/testutil"
	"secscrape-backend/services/scraper"
	"secscrape-backend/services/sessionstore"
	"secscrape-backend/services/sessionstore/db"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, filingURL, sectionID string) (extractor.FetchResult, error) {
	if sectionID == "7" {
		return extractor.FetchResult{
			Code:    extractor.ErrorUpstream,
			Message: "extraction api returned status 502",
		}, nil
	}
	content := fmt.Sprintf("content of section %s", sectionID)
	return extractor.FetchResult{Content: content, ContentLength: len(content)}, nil
}

func setupApp(t *testing.T) *fiber.App {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/httpapi",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	store := sessionstore.NewStore(setup.DB)
	orchestrator := scraper.NewOrchestrator(store, stubFetcher{}, scraper.Options{})
	return NewApp(NewService(store, orchestrator))
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]json.RawMessage) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	parsed := map[string]json.RawMessage{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return res.StatusCode, parsed
}

func TestHealthz(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `"ok"`, string(body["status"]))
	require.JSONEq(t, `true`, string(body["storage_available"]))
}

func TestSections(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/sections", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "10-K")
	require.Contains(t, body, "10-Q")
	require.Contains(t, body, "8-K")
}

func TestDetectFilingType(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/detect-filing-type", map[string]string{
		"filing_url": "https://www.sec.gov/Archives/edgar/data/1318605/tsla-10k_20201231.htm",
	})
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `"10-K"`, string(body["filing_type"]))

	// clients on the old field name still work
	status, body = doJSON(t, app, http.MethodPost, "/detect-filing-type", map[string]string{
		"url": "https://www.sec.gov/Archives/edgar/data/66600/form8-k.htm",
	})
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `"8-K"`, string(body["filing_type"]))

	status, _ = doJSON(t, app, http.MethodPost, "/detect-filing-type", map[string]string{})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/detect-filing-type", map[string]string{
		"filing_url": "https://www.sec.gov/Archives/edgar/data/66600/filing.htm",
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestScrapeAndReads(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/scrape", map[string]any{
		"filing_url": "https://sec.gov/example-10k.htm",
		"sections":   []string{"1", "7"},
	})
	require.Equal(t, http.StatusOK, status)

	var report scraper.Report
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &report))

	require.Equal(t, scraper.Summary{Total: 2, Successful: 1, Failed: 1}, report.Summary)
	require.True(t, report.StorageSaved)
	require.NotEmpty(t, report.FilingID)
	require.NotEmpty(t, report.SessionID)

	// filing summary list
	status, body = doJSON(t, app, http.MethodGet, "/filings", nil)
	require.Equal(t, http.StatusOK, status)
	var filings []sessionstore.Filing
	require.NoError(t, json.Unmarshal(body["filings"], &filings))
	require.Len(t, filings, 1)
	require.Equal(t, report.FilingID, filings[0].ID)
	require.Equal(t, 1, filings[0].TotalSessions)
	require.Equal(t, 1, filings[0].TotalUniqueSections)

	// session list
	status, body = doJSON(t, app, http.MethodGet, "/filings/"+report.FilingID+"/sessions", nil)
	require.Equal(t, http.StatusOK, status)
	var sessions []sessionstore.Session
	require.NoError(t, json.Unmarshal(body["sessions"], &sessions))
	require.Len(t, sessions, 1)
	require.Equal(t, report.SessionID, sessions[0].ID)

	// session-scoped section read
	path := "/filings/" + report.FilingID + "/sessions/" + report.SessionID + "/sections/1"
	status, body = doJSON(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `"content of section 1"`, string(body["content"]))

	// legacy latest read
	status, body = doJSON(t, app, http.MethodGet, "/filings/"+report.FilingID+"/sections/1", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `"content of section 1"`, string(body["content"]))

	// the failed section exists with its error recorded
	status, body = doJSON(t, app, http.MethodGet, "/filings/"+report.FilingID+"/sections/7", nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `false`, string(body["success"]))
}

func TestScrapeBadRequest(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/scrape", map[string]any{
		"filing_url": "https://sec.gov/example-10k.htm",
	})
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/scrape", map[string]any{
		"sections": []string{"1"},
	})
	require.Equal(t, http.StatusBadRequest, status)
}

func TestNotFoundReads(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/filings/deadbeef/sessions", nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodGet, "/filings/deadbeef/sections/1", nil)
	require.Equal(t, http.StatusNotFound, status)
}
