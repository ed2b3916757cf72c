package flight

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	HeaderCache    = "X-Cache"
	HeaderCacheKey = "X-Cache-Key"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error   string       `json:"error"`
	Code    ErrorCode    `json:"code"`
	Details []FieldIssue `json:"details,omitempty"`
}

type InvalidateResponse struct {
	CacheKey string `json:"cacheKey"`
}

type FlightHandler struct {
	service *Service
}

func NewFlightHandler(s *Service) *FlightHandler {
	return &FlightHandler{
		service: s,
	}
}

func (h *FlightHandler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/v1/flights")
	v1.POST("/search", h.SearchFlightsHandler)
	v1.POST("/search/invalidate", h.InvalidateSearchHandler)
	v1.POST("/cache/cleanup", h.CleanupCacheHandler)
	v1.GET("/:flightNumber", h.GetFlightHandler)
}

// SearchFlightsHandler godoc
// @Summary      Search flights
// @Description  Search one route and date. Repeated searches within the cache TTL are served from cache.
// @Tags         flights
// @Accept       json
// @Produce      json
// @Param        request body SearchParameters true "Search parameters"
// @Success      200 {object} SearchResponse
// @Header       200 {string} X-Cache "HIT or MISS"
// @Header       200 {string} X-Cache-Key "search fingerprint"
// @Failure      400 {object} ErrorBody
// @Failure      503 {object} ErrorBody
// @Router       /v1/flights/search [post]
func (h *FlightHandler) SearchFlightsHandler(c *gin.Context) {
	var req SearchParameters
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, bodyError(err))
		return
	}

	result, err := h.service.SearchFlights(c.Request.Context(), req)
	if err != nil {
		sendError(c, err)
		return
	}

	if result.CacheHit {
		c.Header(HeaderCache, "HIT")
	} else {
		c.Header(HeaderCache, "MISS")
	}
	c.Header(HeaderCacheKey, result.Fingerprint)
	c.JSON(http.StatusOK, result.Response)
}

// GetFlightHandler godoc
// @Summary      Flight details
// @Tags         flights
// @Produce      json
// @Param        flightNumber path  string true "IATA flight number, e.g. GA404"
// @Param        date         query string true "Flight date (YYYY-MM-DD)"
// @Success      200 {object} FlightRecord
// @Failure      400 {object} ErrorBody
// @Failure      404 {object} ErrorBody
// @Failure      503 {object} ErrorBody
// @Router       /v1/flights/{flightNumber} [get]
func (h *FlightHandler) GetFlightHandler(c *gin.Context) {
	record, err := h.service.GetFlightDetails(c.Request.Context(), c.Param("flightNumber"), c.Query("date"))
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// InvalidateSearchHandler godoc
// @Summary      Drop a cached search
// @Tags         cache
// @Accept       json
// @Produce      json
// @Param        request body SearchParameters true "Search parameters"
// @Success      200 {object} InvalidateResponse
// @Failure      400 {object} ErrorBody
// @Router       /v1/flights/search/invalidate [post]
func (h *FlightHandler) InvalidateSearchHandler(c *gin.Context) {
	var req SearchParameters
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, bodyError(err))
		return
	}

	hash, err := h.service.InvalidateCache(c.Request.Context(), req)
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, InvalidateResponse{CacheKey: hash})
}

// CleanupCacheHandler godoc
// @Summary      Remove expired cache rows
// @Tags         cache
// @Produce      json
// @Success      200 {object} CleanupResult
// @Router       /v1/flights/cache/cleanup [post]
func (h *FlightHandler) CleanupCacheHandler(c *gin.Context) {
	res, err := h.service.CleanExpiredCache(c.Request.Context())
	if err != nil {
		sendError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func bodyError(err error) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: "body", Message: "invalid JSON: " + err.Error()}}}
}

func sendError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(appErr.Status, ErrorBody{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}
