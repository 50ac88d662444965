// Package extractor wraps the sec-api.io Extractor API: one outbound
// call per section, upstream failures normalized into codes instead of
// errors so a single bad section never takes down a whole scrape.
package extractor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"secscrape-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://api.sec-api.io/extractor"

// ErrorCode classifies expected upstream failures.
type ErrorCode string

const (
	ErrorNone               ErrorCode = ""
	ErrorNotFound           ErrorCode = "not_found"
	ErrorRateLimited        ErrorCode = "rate_limited"
	ErrorUpstream           ErrorCode = "upstream_error"
	ErrorUnsupportedSection ErrorCode = "unsupported_section"
)

// FetchResult is the outcome of one section extraction. A Fetch call
// only returns a Go error for programming mistakes (empty arguments);
// everything the upstream can do wrong lands in Code/Message.
type FetchResult struct {
	Content       string
	ContentLength int
	Code          ErrorCode
	Message       string
	// Transient marks failures worth a single retry (network errors,
	// upstream 5xx). Retrying is the caller's call, not the adapter's.
	Transient bool
}

func (r FetchResult) Success() bool {
	return r.Code == ErrorNone
}

type ClientOptions struct {
	BaseUrl string `json:"base_url"`
	Token   string `json:"token"`
}

type Client struct {
	http    *resty.Client
	baseUrl string
	token   string
}

func NewClient(options ClientOptions) Client {
	baseUrl := options.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	httpClient := resty.New()
	telemetry.InstrumentResty(httpClient, "lib/extractor")

	return Client{
		http:    httpClient,
		baseUrl: baseUrl,
		token:   options.Token,
	}
}

// Fetch extracts one section of a filing as plain text. Exactly one
// upstream call per invocation.
func (c Client) Fetch(ctx context.Context, filingURL, sectionID string) (FetchResult, error) {
	if strings.TrimSpace(filingURL) == "" {
		return FetchResult{}, fmt.Errorf("filing url must not be empty")
	}
	if strings.TrimSpace(sectionID) == "" {
		return FetchResult{}, fmt.Errorf("section id must not be empty")
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"url":   filingURL,
			"item":  sectionID,
			"type":  "text",
			"token": c.token,
		}).
		Get(c.baseUrl)
	if err != nil {
		return FetchResult{
			Code:      ErrorUpstream,
			Message:   fmt.Sprintf("extraction request failed: %s", err),
			Transient: true,
		}, nil
	}

	return normalize(res, sectionID), nil
}

func normalize(res *resty.Response, sectionID string) FetchResult {
	switch {
	case res.StatusCode() == http.StatusOK:
		content := res.String()
		return FetchResult{
			Content:       content,
			ContentLength: len(content),
		}
	case res.StatusCode() == http.StatusNotFound:
		return FetchResult{
			Code:    ErrorNotFound,
			Message: fmt.Sprintf("section %q not found in filing", sectionID),
		}
	case res.StatusCode() == http.StatusTooManyRequests:
		return FetchResult{
			Code:    ErrorRateLimited,
			Message: "extraction api rate limit exceeded",
		}
	case res.StatusCode() == http.StatusBadRequest:
		return FetchResult{
			Code:    ErrorUnsupportedSection,
			Message: fmt.Sprintf("extraction api rejected section %q: %s", sectionID, strings.TrimSpace(res.String())),
		}
	default:
		// other 4xx (auth failures, bad token) are upstream problems
		// and not worth a retry; 5xx are
		return FetchResult{
			Code:      ErrorUpstream,
			Message:   fmt.Sprintf("extraction api returned status %d", res.StatusCode()),
			Transient: res.StatusCode() >= 500,
		}
	}
}
