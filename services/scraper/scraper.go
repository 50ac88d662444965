// Package scraper coordinates one scrape request end to end: derive
// the filing key, open a session, fetch every requested section
// through the extraction adapter, persist the outcomes and finalize
// the session.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"secscrape-backend/lib/extractor"
	"secscrape-backend/lib/filingkey"
	"secscrape-backend/lib/sections"
	"secscrape-backend/services/sessionstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/scraper")

// ErrInvalidInput covers every request rejected before any session is
// created: empty url, no sections, unknown filing type or section ids.
var ErrInvalidInput = errors.New("invalid scrape request")

// Fetcher is the extraction adapter contract the orchestrator needs.
type Fetcher interface {
	Fetch(ctx context.Context, filingURL, sectionID string) (extractor.FetchResult, error)
}

type Options struct {
	// number of sections fetched concurrently, 1 means sequential
	FetchConcurrency int `json:"fetch_concurrency"`
}

type Orchestrator struct {
	store       sessionstore.Store
	fetcher     Fetcher
	concurrency int
}

func NewOrchestrator(store sessionstore.Store, fetcher Fetcher, options Options) Orchestrator {
	concurrency := options.FetchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return Orchestrator{
		store:       store,
		fetcher:     fetcher,
		concurrency: concurrency,
	}
}

type Request struct {
	FilingURL string   `json:"filing_url"`
	Sections  []string `json:"sections"`
	// optional, detected from the url when empty
	FilingType string `json:"filing_type,omitempty"`
}

type SectionOutcome struct {
	SectionID     string `json:"section_id"`
	Success       bool   `json:"success"`
	Content       string `json:"content,omitempty"`
	ContentLength int    `json:"content_length"`
	ErrorCode     string `json:"error_code,omitempty"`
	Error         string `json:"error,omitempty"`
}

type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type Report struct {
	FilingID     string           `json:"filing_id"`
	SessionID    string           `json:"session_id,omitempty"`
	FilingType   string           `json:"filing_type"`
	StorageSaved bool             `json:"storage_saved"`
	Summary      Summary          `json:"summary"`
	Results      []SectionOutcome `json:"results"`
}

// Scrape runs one scrape request. Once input validation passes it
// always returns a report: individual section failures and storage
// failures degrade the report instead of erroring out.
// The report is a named return so the deferred finalize can still
// flip StorageSaved when it fails on the way out.
func (o Orchestrator) Scrape(ctx context.Context, req Request) (report Report, err error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()
	span.SetAttributes(
		attribute.String("filing_url", req.FilingURL),
		attribute.StringSlice("sections", req.Sections),
	)

	filingID, filingType, err := o.validate(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	span.SetAttributes(attribute.String("filing_id", filingID))

	report = Report{
		FilingID:     filingID,
		FilingType:   string(filingType),
		StorageSaved: true,
	}

	_, err = o.store.EnsureFiling(ctx, filingID, req.FilingURL, string(filingType))
	if err != nil {
		slog.WarnContext(ctx, "filing not persisted", "filing_id", filingID, "err", err)
		report.StorageSaved = false
	}

	var sessionID string
	if report.StorageSaved {
		sessionID, err = o.store.CreateSession(ctx, filingID, req.Sections)
		if err != nil {
			slog.WarnContext(ctx, "session not persisted", "filing_id", filingID, "err", err)
			report.StorageSaved = false
		} else {
			report.SessionID = sessionID
			// the session is finalized no matter how the batch ends,
			// including cancellation mid-fetch
			defer func() {
				_, err := o.store.FinalizeSession(context.WithoutCancel(ctx), filingID, sessionID)
				if err != nil {
					slog.WarnContext(ctx, "session not finalized", "session_id", sessionID, "err", err)
					report.StorageSaved = false
				}
			}()
		}
	}

	report.Results = o.fetchAll(ctx, req.FilingURL, req.Sections)

	// sections that completed before a mid-batch cancellation still
	// get persisted, so the writes run on an uncancelled context just
	// like the finalize above
	persistCtx := context.WithoutCancel(ctx)
	for _, outcome := range report.Results {
		if outcome.Success {
			report.Summary.Successful++
		} else {
			report.Summary.Failed++
		}

		if sessionID == "" {
			continue
		}
		err := o.store.WriteSection(persistCtx, filingID, sessionID, sessionstore.SectionWrite{
			SectionID: outcome.SectionID,
			Content:   outcome.Content,
			Success:   outcome.Success,
			Error:     outcome.Error,
		})
		if err != nil {
			slog.WarnContext(ctx, "section not persisted",
				"session_id", sessionID,
				"section_id", outcome.SectionID,
				"err", err,
			)
			report.StorageSaved = false
		}
	}
	report.Summary.Total = len(report.Results)

	return report, nil
}

func (o Orchestrator) validate(req Request) (string, sections.FilingType, error) {
	if len(req.Sections) == 0 {
		return "", "", fmt.Errorf("%w: no sections requested", ErrInvalidInput)
	}

	filingID, err := filingkey.Derive(req.FilingURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	var filingType sections.FilingType
	if req.FilingType != "" {
		filingType, err = sections.ParseFilingType(req.FilingType)
	} else {
		filingType, err = sections.DetectFilingType(req.FilingURL)
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	err = sections.Validate(filingType, req.Sections)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	return filingID, filingType, nil
}

// fetchAll fetches every section, at most `concurrency` in flight at a
// time. The returned outcomes keep the order of the request regardless
// of completion order.
func (o Orchestrator) fetchAll(ctx context.Context, filingURL string, ids []string) []SectionOutcome {
	outcomes := make([]SectionOutcome, len(ids))

	var wg sync.WaitGroup
	slots := make(chan struct{}, o.concurrency)
	for i, sectionID := range ids {
		wg.Add(1)
		go func(i int, sectionID string) {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			outcomes[i] = o.fetchOne(ctx, filingURL, sectionID)
		}(i, sectionID)
	}
	wg.Wait()

	return outcomes
}

func (o Orchestrator) fetchOne(ctx context.Context, filingURL, sectionID string) SectionOutcome {
	res, err := o.fetcher.Fetch(ctx, filingURL, sectionID)
	if err == nil && res.Transient && ctx.Err() == nil {
		// a single retry on transient failures, nothing more
		retried, retryErr := o.fetcher.Fetch(ctx, filingURL, sectionID)
		if retryErr == nil {
			res = retried
		}
	}
	if err != nil {
		return SectionOutcome{
			SectionID: sectionID,
			ErrorCode: string(extractor.ErrorUpstream),
			Error:     err.Error(),
		}
	}

	if !res.Success() {
		return SectionOutcome{
			SectionID: sectionID,
			ErrorCode: string(res.Code),
			Error:     res.Message,
		}
	}
	return SectionOutcome{
		SectionID:     sectionID,
		Success:       true,
		Content:       res.Content,
		ContentLength: res.ContentLength,
	}
}
