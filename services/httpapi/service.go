// Package httpapi exposes the scraper and the session store over a
// small REST surface consumed by the frontend.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"secscrape-backend/lib/sections"
	"secscrape-backend/services/scraper"
	"secscrape-backend/services/sessionstore"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const serviceName = "secscrape-backend"
const serviceVersion = "1.0.0"

type Service struct {
	store        sessionstore.Store
	orchestrator scraper.Orchestrator
}

func NewService(store sessionstore.Store, orchestrator scraper.Orchestrator) Service {
	return Service{
		store:        store,
		orchestrator: orchestrator,
	}
}

// NewApp builds the fiber app with middleware and all routes attached.
func NewApp(service Service) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 120,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Get("/", service.Root)
	app.Get("/healthz", service.Healthz)
	app.Get("/health", service.Healthz)
	app.Get("/sections", service.Sections)
	app.Post("/detect-filing-type", service.DetectFilingType)
	app.Post("/scrape", service.Scrape)
	app.Get("/filings", service.ListFilings)
	app.Get("/filings/:id/sessions", service.ListSessions)
	app.Get("/filings/:id/sessions/:sid/sections", service.ListSessionSections)
	app.Get("/filings/:id/sessions/:sid/sections/:secId", service.GetSection)
	// legacy read path: resolves through the filing's latest session
	app.Get("/filings/:id/sections/:secId", service.GetLatestSection)

	return app
}

// fail maps domain errors onto status codes. Anything unrecognized is
// a 500.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, scraper.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, sessionstore.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, sessionstore.ErrUnavailable):
		status = fiber.StatusServiceUnavailable
	}
	if status == fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "err", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s Service) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (s Service) Healthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), time.Second*2)
	defer cancel()

	storageAvailable := s.store.Ping(ctx) == nil
	status := "ok"
	if !storageAvailable {
		status = "degraded"
	}
	return c.JSON(fiber.Map{
		"status":            status,
		"storage_available": storageAvailable,
	})
}

func (s Service) Sections(c *fiber.Ctx) error {
	out := map[string][]sections.Section{}
	for _, ft := range sections.FilingTypes() {
		catalog, err := sections.Catalog(ft)
		if err != nil {
			return fail(c, err)
		}
		out[string(ft)] = catalog
	}
	return c.JSON(out)
}

type detectRequest struct {
	FilingURL string `json:"filing_url"`
	// older clients send "url"
	URL string `json:"url"`
}

func (s Service) DetectFilingType(c *fiber.Ctx) error {
	var req detectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	rawurl := req.FilingURL
	if rawurl == "" {
		rawurl = req.URL
	}
	if rawurl == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "filing_url is required"})
	}

	filingType, err := sections.DetectFilingType(rawurl)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"filing_type": filingType})
}

func (s Service) Scrape(c *fiber.Ctx) error {
	var req scraper.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	report, err := s.orchestrator.Scrape(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

func (s Service) ListFilings(c *fiber.Ctx) error {
	filings, err := s.store.ListFilings(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"filings": filings})
}

func (s Service) ListSessions(c *fiber.Ctx) error {
	sessions, err := s.store.GetSessions(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

func (s Service) ListSessionSections(c *fiber.Ctx) error {
	results, err := s.store.ListSectionResults(c.Context(), c.Params("id"), c.Params("sid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"sections": results})
}

func (s Service) GetSection(c *fiber.Ctx) error {
	result, err := s.store.GetSection(c.Context(), c.Params("id"), c.Params("sid"), c.Params("secId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (s Service) GetLatestSection(c *fiber.Ctx) error {
	result, err := s.store.GetLatestSection(c.Context(), c.Params("id"), c.Params("secId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}
