// Package sessionstore is the persistence core. It owns the
// Filing -> ScrapeSession -> SectionResult hierarchy: every scrape
// lands in its own session under a filing, and the filing carries
// rollup counters recomputed from its children at finalize time.
package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"secscrape-backend/services/sessionstore/db"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/sessionstore")

var ErrNotFound = errors.New("not found")
var ErrUnavailable = errors.New("storage unavailable")

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

type Filing struct {
	ID                  string    `json:"filing_id"`
	URL                 string    `json:"url"`
	FilingType          string    `json:"filing_type"`
	FirstSeenAt         time.Time `json:"first_seen_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	TotalSessions       int       `json:"total_sessions"`
	TotalUniqueSections int       `json:"total_unique_sections"`
	LatestSessionID     string    `json:"latest_session_id"`
}

type Session struct {
	ID                 string    `json:"session_id"`
	ScrapedAt          time.Time `json:"scraped_at"`
	RequestedSections  []string  `json:"requested_sections"`
	SuccessfulSections []string  `json:"successful_sections"`
	Finalized          bool      `json:"finalized"`
}

type SectionResult struct {
	SectionID     string    `json:"section_id"`
	SessionID     string    `json:"session_id"`
	Content       string    `json:"content"`
	ContentLength int       `json:"content_length"`
	Success       bool      `json:"success"`
	Error         string    `json:"error,omitempty"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// SectionWrite is the atomic unit written per requested section.
type SectionWrite struct {
	SectionID string
	Content   string
	Success   bool
	Error     string
}

// storeErr maps driver errors onto the two sentinels callers branch on.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, err)
}

func filingFromRow(row db.Filing) Filing {
	return Filing{
		ID:                  row.ID,
		URL:                 row.Url,
		FilingType:          row.FilingType,
		FirstSeenAt:         time.Unix(0, row.FirstSeenAt).UTC(),
		UpdatedAt:           time.Unix(0, row.UpdatedAt).UTC(),
		TotalSessions:       int(row.TotalSessions),
		TotalUniqueSections: int(row.TotalUniqueSections),
		LatestSessionID:     row.LatestSessionID,
	}
}

func sessionFromRow(row db.ScrapeSession) Session {
	return Session{
		ID:                 row.ID,
		ScrapedAt:          time.Unix(0, row.ScrapedAt).UTC(),
		RequestedSections:  decodeSections(row.RequestedSections),
		SuccessfulSections: decodeSections(row.SuccessfulSections),
		Finalized:          row.Finalized != 0,
	}
}

func sectionFromRow(row db.SectionResult) SectionResult {
	return SectionResult{
		SectionID:     row.SectionID,
		SessionID:     row.SessionID,
		Content:       row.Content,
		ContentLength: int(row.ContentLength),
		Success:       row.Success != 0,
		Error:         row.Error,
		ScrapedAt:     time.Unix(0, row.ScrapedAt).UTC(),
	}
}

func encodeSections(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	out, _ := json.Marshal(ids)
	return string(out)
}

func decodeSections(raw string) []string {
	var out []string
	err := json.Unmarshal([]byte(raw), &out)
	if err != nil || out == nil {
		return []string{}
	}
	return out
}

// EnsureFiling creates the filing record if absent, first-write-wins.
// The returned record is current whether it was just created or not.
func (s Store) EnsureFiling(ctx context.Context, filingID, url, filingType string) (Filing, error) {
	ctx, span := tracer.Start(ctx, "EnsureFiling")
	defer span.End()
	span.SetAttributes(attribute.String("filing_id", filingID))

	now := time.Now().UTC().UnixNano()
	err := s.qry.CreateFiling(ctx, db.CreateFilingParams{
		ID:          filingID,
		Url:         url,
		FilingType:  filingType,
		FirstSeenAt: now,
		UpdatedAt:   now,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	row, err := s.qry.GetFiling(ctx, filingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}
	return filingFromRow(row), nil
}

// newSessionID builds a timestamp-derived id with a random suffix so
// that two sessions created in the same instant stay distinct.
func newSessionID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102T150405"), suffix)
}

// CreateSession allocates a new scrape session under an existing
// filing and returns its id.
func (s Store) CreateSession(ctx context.Context, filingID string, requestedSections []string) (string, error) {
	ctx, span := tracer.Start(ctx, "CreateSession")
	defer span.End()
	span.SetAttributes(attribute.String("filing_id", filingID))

	_, err := s.qry.GetFiling(ctx, filingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", storeErr(err)
	}

	now := time.Now().UTC()
	sessionID := newSessionID(now)
	err = s.qry.CreateSession(ctx, db.CreateSessionParams{
		FilingID:          filingID,
		ID:                sessionID,
		ScrapedAt:         now.UnixNano(),
		RequestedSections: encodeSections(requestedSections),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", storeErr(err)
	}

	span.SetAttributes(attribute.String("session_id", sessionID))
	return sessionID, nil
}

// WriteSection upserts one section result under a session. Writing the
// same (session, section) pair twice overwrites, never duplicates.
func (s Store) WriteSection(ctx context.Context, filingID, sessionID string, write SectionWrite) error {
	ctx, span := tracer.Start(ctx, "WriteSection")
	defer span.End()
	span.SetAttributes(
		attribute.String("filing_id", filingID),
		attribute.String("session_id", sessionID),
		attribute.String("section_id", write.SectionID),
	)

	_, err := s.qry.GetSession(ctx, db.GetSessionParams{
		FilingID: filingID,
		ID:       sessionID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return storeErr(err)
	}

	success := int64(0)
	if write.Success {
		success = 1
	}
	err = s.qry.UpsertSectionResult(ctx, db.UpsertSectionResultParams{
		FilingID:      filingID,
		SessionID:     sessionID,
		SectionID:     write.SectionID,
		Content:       write.Content,
		ContentLength: int64(len(write.Content)),
		Success:       success,
		Error:         write.Error,
		ScrapedAt:     time.Now().UTC().UnixNano(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return storeErr(err)
	}
	return nil
}

// FinalizeSession computes the session's successful set from its
// written section results, then recomputes the filing rollups from the
// full child set in the same transaction. Recomputing (instead of
// incrementing) keeps the counters correct when two finalizations of
// the same filing interleave.
func (s Store) FinalizeSession(ctx context.Context, filingID, sessionID string) (Filing, error) {
	ctx, span := tracer.Start(ctx, "FinalizeSession")
	defer span.End()
	span.SetAttributes(
		attribute.String("filing_id", filingID),
		attribute.String("session_id", sessionID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	_, err = txqry.GetSession(ctx, db.GetSessionParams{
		FilingID: filingID,
		ID:       sessionID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	successful, err := txqry.ListSessionSuccessfulSections(ctx, db.ListSessionSuccessfulSectionsParams{
		FilingID:  filingID,
		SessionID: sessionID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	err = txqry.FinalizeSession(ctx, db.FinalizeSessionParams{
		SuccessfulSections: encodeSections(successful),
		FilingID:           filingID,
		ID:                 sessionID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	totalSessions, err := txqry.CountSessions(ctx, filingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}
	// historical union: a section counts once it succeeded in any
	// session of this filing, ever
	uniqueSections, err := txqry.CountUniqueSuccessfulSections(ctx, filingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}
	latest, err := txqry.GetLatestFinalizedSession(ctx, filingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	err = txqry.UpdateFilingRollup(ctx, db.UpdateFilingRollupParams{
		TotalSessions:       totalSessions,
		TotalUniqueSections: uniqueSections,
		LatestSessionID:     latest.ID,
		UpdatedAt:           time.Now().UTC().UnixNano(),
		ID:                  filingID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	row, err := txqry.GetFiling(ctx, filingID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Filing{}, storeErr(err)
	}
	return filingFromRow(row), nil
}

// ListFilings returns filing summaries, most recently updated first.
func (s Store) ListFilings(ctx context.Context) ([]Filing, error) {
	rows, err := s.qry.ListFilings(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	filings := make([]Filing, len(rows))
	for i, row := range rows {
		filings[i] = filingFromRow(row)
	}
	return filings, nil
}

func (s Store) GetFiling(ctx context.Context, filingID string) (Filing, error) {
	row, err := s.qry.GetFiling(ctx, filingID)
	if err != nil {
		return Filing{}, storeErr(err)
	}
	return filingFromRow(row), nil
}

// GetSessions returns all sessions of a filing, newest first.
func (s Store) GetSessions(ctx context.Context, filingID string) ([]Session, error) {
	_, err := s.qry.GetFiling(ctx, filingID)
	if err != nil {
		return nil, storeErr(err)
	}
	rows, err := s.qry.ListSessions(ctx, filingID)
	if err != nil {
		return nil, storeErr(err)
	}
	sessions := make([]Session, len(rows))
	for i, row := range rows {
		sessions[i] = sessionFromRow(row)
	}
	return sessions, nil
}

func (s Store) GetSession(ctx context.Context, filingID, sessionID string) (Session, error) {
	row, err := s.qry.GetSession(ctx, db.GetSessionParams{
		FilingID: filingID,
		ID:       sessionID,
	})
	if err != nil {
		return Session{}, storeErr(err)
	}
	return sessionFromRow(row), nil
}

func (s Store) ListSectionResults(ctx context.Context, filingID, sessionID string) ([]SectionResult, error) {
	_, err := s.qry.GetSession(ctx, db.GetSessionParams{
		FilingID: filingID,
		ID:       sessionID,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	rows, err := s.qry.ListSectionResults(ctx, db.ListSectionResultsParams{
		FilingID:  filingID,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, storeErr(err)
	}
	results := make([]SectionResult, len(rows))
	for i, row := range rows {
		results[i] = sectionFromRow(row)
	}
	return results, nil
}

func (s Store) GetSection(ctx context.Context, filingID, sessionID, sectionID string) (SectionResult, error) {
	row, err := s.qry.GetSectionResult(ctx, db.GetSectionResultParams{
		FilingID:  filingID,
		SessionID: sessionID,
		SectionID: sectionID,
	})
	if err != nil {
		return SectionResult{}, storeErr(err)
	}
	return sectionFromRow(row), nil
}

// GetLatestSection resolves the filing's latest finalized session and
// reads the section from it. When the latest session did not capture
// the section this returns ErrNotFound, it does NOT fall back to an
// earlier session: "latest" must not mask a failed re-scrape.
func (s Store) GetLatestSection(ctx context.Context, filingID, sectionID string) (SectionResult, error) {
	filing, err := s.GetFiling(ctx, filingID)
	if err != nil {
		return SectionResult{}, err
	}
	if filing.LatestSessionID == "" {
		return SectionResult{}, ErrNotFound
	}
	return s.GetSection(ctx, filingID, filing.LatestSessionID, sectionID)
}

// Ping reports storage reachability, used by the health endpoint.
func (s Store) Ping(ctx context.Context) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return nil
}
