package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	pibblemw "github.com/pibble/pibble/internal/api/middleware"
	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/health"
	"github.com/pibble/pibble/internal/lists"
	"github.com/pibble/pibble/internal/media"
)

// HeaderBatchID carries the id of the enrichment batch behind a response.
const HeaderBatchID = "X-Batch-ID"

// EnrichRequest is the body of POST /api/v1/enrich.
type EnrichRequest struct {
	Entries []media.RawListEntry `json:"entries"`
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// getStatus returns version and upstream health.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	upstreams := []health.HealthItem{}
	if s.svc.Health != nil {
		upstreams = s.svc.Health.GetAll()
	}

	resp := map[string]any{
		"version":   config.Version,
		"startTime": s.startTime.Format(time.RFC3339),
		"upstreams": upstreams,
		"hasIssues": health.HasIssues(upstreams),
	}
	if s.svc.Hub != nil {
		resp["wsClients"] = s.svc.Hub.ClientCount()
	}
	return c.JSON(http.StatusOK, resp)
}

// getList refreshes a user's list and returns the new snapshot. A failed
// list fetch answers 502 with the error snapshot.
// GET /api/v1/users/:userId/lists/:category
func (s *Server) getList(c echo.Context) error {
	snap, err := s.svc.Lists.Refresh(
		c.Request().Context(),
		pibblemw.GetToken(c),
		c.Param("userId"),
		c.Param("category"),
	)
	if err != nil {
		if errors.Is(err, lists.ErrListUnavailable) {
			return c.JSON(http.StatusBadGateway, snap)
		}
		return listError(err)
	}

	if snap.BatchID != "" {
		c.Response().Header().Set(HeaderBatchID, snap.BatchID)
	}
	return c.JSON(http.StatusOK, snap)
}

// getCurrentList returns the last committed snapshot without reloading.
// GET /api/v1/users/:userId/lists/:category/current
func (s *Server) getCurrentList(c echo.Context) error {
	snap, err := s.svc.Lists.Current(c.Param("userId"), c.Param("category"))
	if err != nil {
		return listError(err)
	}
	return c.JSON(http.StatusOK, snap)
}

// enrichEntries enriches an ad-hoc batch of raw entries.
// POST /api/v1/enrich
func (s *Server) enrichEntries(c echo.Context) error {
	var req EnrichRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	batch := s.svc.Batches.Run(c.Request().Context(), pibblemw.GetToken(c), req.Entries)
	c.Response().Header().Set(HeaderBatchID, batch.ID)
	return c.JSON(http.StatusOK, batch.Items)
}

// getMedia enriches a single title.
// GET /api/v1/media/:type/:id
func (s *Server) getMedia(c echo.Context) error {
	mediaType := media.ParseMediaType(c.Param("type"))
	if !mediaType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown media type")
	}

	entry := media.RawListEntry{MediaType: mediaType, MediaID: strings.TrimSpace(c.Param("id"))}
	outcome := s.svc.Items.Enrich(c.Request().Context(), pibblemw.GetToken(c), entry)

	item, ok := outcome.Item()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no result for "+entry.String())
	}
	return c.JSON(http.StatusOK, item)
}

func listError(err error) error {
	switch {
	case errors.Is(err, lists.ErrUserIDRequired), errors.Is(err, lists.ErrInvalidCategory):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, lists.ErrNotLoaded):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
