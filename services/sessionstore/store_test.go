package sessionstore

import (
	"context"
	"testing"
	"time"

	"secscrape-backend/lib/testutil"
	"secscrape-backend/services/sessionstore/db"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) Store {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/sessionstore",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	return NewStore(setup.DB)
}

func TestEnsureFilingIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	first, err := store.EnsureFiling(ctx, "abc123", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)
	require.Equal(t, "abc123", first.ID)
	require.Equal(t, 0, first.TotalSessions)

	// second ensure must converge on the same record
	second, err := store.EnsureFiling(ctx, "abc123", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.FirstSeenAt, second.FirstSeenAt)

	filings, err := store.ListFilings(ctx)
	require.NoError(t, err)
	require.Len(t, filings, 1)
}

func TestCreateSessionUnknownFiling(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.CreateSession(ctx, "missing", []string{"1"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionIDsDistinct(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)

	// two sessions created back-to-back in the same instant must
	// still get distinct ids
	a, err := store.CreateSession(ctx, "f1", []string{"1"})
	require.NoError(t, err)
	b, err := store.CreateSession(ctx, "f1", []string{"1"})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestWriteSectionIdempotent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)
	sessionID, err := store.CreateSession(ctx, "f1", []string{"1"})
	require.NoError(t, err)

	err = store.WriteSection(ctx, "f1", sessionID, SectionWrite{
		SectionID: "1",
		Content:   "first write",
		Success:   true,
	})
	require.NoError(t, err)

	err = store.WriteSection(ctx, "f1", sessionID, SectionWrite{
		SectionID: "1",
		Content:   "second write",
		Success:   true,
	})
	require.NoError(t, err)

	results, err := store.ListSectionResults(ctx, "f1", sessionID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "second write", results[0].Content)
	require.Equal(t, len("second write"), results[0].ContentLength)
}

func TestWriteSectionUnknownSession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)

	err = store.WriteSection(ctx, "f1", "nope", SectionWrite{SectionID: "1"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizeRollups(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)

	// first scrape: section 1 succeeds, section 7 fails
	first, err := store.CreateSession(ctx, "f1", []string{"1", "7"})
	require.NoError(t, err)
	require.NoError(t, store.WriteSection(ctx, "f1", first, SectionWrite{
		SectionID: "1", Content: "business section", Success: true,
	}))
	require.NoError(t, store.WriteSection(ctx, "f1", first, SectionWrite{
		SectionID: "7", Error: "upstream_error", Success: false,
	}))

	filing, err := store.FinalizeSession(ctx, "f1", first)
	require.NoError(t, err)
	require.Equal(t, 1, filing.TotalSessions)
	require.Equal(t, 1, filing.TotalUniqueSections)
	require.Equal(t, first, filing.LatestSessionID)

	// second scrape: section 1A succeeds
	second, err := store.CreateSession(ctx, "f1", []string{"1A"})
	require.NoError(t, err)
	require.NoError(t, store.WriteSection(ctx, "f1", second, SectionWrite{
		SectionID: "1A", Content: "risk factors", Success: true,
	}))

	filing, err = store.FinalizeSession(ctx, "f1", second)
	require.NoError(t, err)
	require.Equal(t, 2, filing.TotalSessions)
	// historical union across both sessions
	require.Equal(t, 2, filing.TotalUniqueSections)
	require.Equal(t, second, filing.LatestSessionID)

	sessions, err := store.GetSessions(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// newest first
	require.Equal(t, second, sessions[0].ID)
	require.Equal(t, []string{"1A"}, sessions[0].SuccessfulSections)
	require.Equal(t, first, sessions[1].ID)
	require.Equal(t, []string{"1", "7"}, sessions[1].RequestedSections)
	require.Equal(t, []string{"1"}, sessions[1].SuccessfulSections)
}

func TestFinalizeEmptySession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)

	first, err := store.CreateSession(ctx, "f1", []string{"1"})
	require.NoError(t, err)
	require.NoError(t, store.WriteSection(ctx, "f1", first, SectionWrite{
		SectionID: "1", Content: "text", Success: true,
	}))
	before, err := store.FinalizeSession(ctx, "f1", first)
	require.NoError(t, err)

	// a session where every section failed still finalizes, and the
	// unique-section count stays where it was
	second, err := store.CreateSession(ctx, "f1", []string{"7"})
	require.NoError(t, err)
	require.NoError(t, store.WriteSection(ctx, "f1", second, SectionWrite{
		SectionID: "7", Error: "upstream_error",
	}))
	after, err := store.FinalizeSession(ctx, "f1", second)
	require.NoError(t, err)

	require.Equal(t, before.TotalUniqueSections, after.TotalUniqueSections)
	require.Equal(t, 2, after.TotalSessions)
	require.Equal(t, second, after.LatestSessionID)
	require.Equal(t, []string{}, mustGetSession(t, store, ctx, "f1", second).SuccessfulSections)
}

func mustGetSession(t *testing.T, store Store, ctx context.Context, filingID, sessionID string) Session {
	session, err := store.GetSession(ctx, filingID, sessionID)
	require.NoError(t, err)
	return session
}

func TestGetLatestSectionNoFallback(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)

	first, err := store.CreateSession(ctx, "f1", []string{"1"})
	require.NoError(t, err)
	require.NoError(t, store.WriteSection(ctx, "f1", first, SectionWrite{
		SectionID: "1", Content: "from first scrape", Success: true,
	}))
	_, err = store.FinalizeSession(ctx, "f1", first)
	require.NoError(t, err)

	got, err := store.GetLatestSection(ctx, "f1", "1")
	require.NoError(t, err)
	require.Equal(t, "from first scrape", got.Content)

	// the second scrape does not capture section 1; the latest read
	// must go NotFound instead of silently serving the older session
	second, err := store.CreateSession(ctx, "f1", []string{"7"})
	require.NoError(t, err)
	require.NoError(t, store.WriteSection(ctx, "f1", second, SectionWrite{
		SectionID: "7", Content: "mdna", Success: true,
	}))
	_, err = store.FinalizeSession(ctx, "f1", second)
	require.NoError(t, err)

	_, err = store.GetLatestSection(ctx, "f1", "1")
	require.ErrorIs(t, err, ErrNotFound)

	got, err = store.GetLatestSection(ctx, "f1", "7")
	require.NoError(t, err)
	require.Equal(t, "mdna", got.Content)
}

func TestGetLatestSectionNoSessions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "f1", "https://sec.gov/example-10k.htm", "10-K")
	require.NoError(t, err)

	_, err = store.GetLatestSection(ctx, "f1", "1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFilingsOrdering(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.EnsureFiling(ctx, "older", "https://sec.gov/a-10k.htm", "10-K")
	require.NoError(t, err)
	_, err = store.EnsureFiling(ctx, "newer", "https://sec.gov/b-10q.htm", "10-Q")
	require.NoError(t, err)

	// touching the older filing bumps it to the front
	session, err := store.CreateSession(ctx, "older", []string{"1"})
	require.NoError(t, err)
	_, err = store.FinalizeSession(ctx, "older", session)
	require.NoError(t, err)

	filings, err := store.ListFilings(ctx)
	require.NoError(t, err)
	require.Len(t, filings, 2)
	require.Equal(t, "older", filings[0].ID)
	require.Equal(t, "newer", filings[1].ID)
}

func TestPing(t *testing.T) {
	store := setupStore(t)
	require.NoError(t, store.Ping(context.Background()))
}
