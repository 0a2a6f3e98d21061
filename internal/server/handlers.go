package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/athenaq/internal/partition"
	"github.com/roach88/athenaq/internal/stock"
)

const (
	fromDateParam = "fromDate"
	toDateParam   = "toDate"
)

// errBadRequest marks client errors.
var errBadRequest = errors.New("bad request")

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// generateResponse is the JSON form of a generated query.
type generateResponse struct {
	QueryID           string              `json:"query_id"`
	SQL               string              `json:"sql"`
	DateFilterApplied bool                `json:"date_filter_applied"`
	Filters           partition.FilterSet `json:"filters"`
	Diagnostic        string              `json:"diagnostic,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleGenerate answers POST /generate/athena/query?fromDate=&toDate= with
// a JSON array of brands as body. The SQL is returned as text/plain unless
// the client accepts JSON.
func (s *Server) handleGenerate(c *gin.Context) {
	req, err := bindRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	q, err := s.builder.Build(req)
	if err != nil {
		s.fail(c, err)
		return
	}

	if c.NegotiateFormat(gin.MIMEPlain, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, generateResponse{
			QueryID:           q.ID,
			SQL:               q.SQL,
			DateFilterApplied: q.DateFilterApplied,
			Filters:           q.Filters,
			Diagnostic:        q.Diagnostic,
		})
		return
	}
	c.String(http.StatusOK, q.SQL)
}

func bindRequest(c *gin.Context) (stock.Request, error) {
	from, err := dateParam(c, fromDateParam)
	if err != nil {
		return stock.Request{}, err
	}
	to, err := dateParam(c, toDateParam)
	if err != nil {
		return stock.Request{}, err
	}

	var brands []string
	if err := c.ShouldBindJSON(&brands); err != nil {
		return stock.Request{}, fmt.Errorf("%w: body must be a JSON array of brands: %v", errBadRequest, err)
	}
	return stock.Request{From: from, To: to, Brands: brands}, nil
}

func dateParam(c *gin.Context, name string) (partition.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return partition.Date{}, fmt.Errorf("%w: %s is required", errBadRequest, name)
	}
	d, err := partition.ParseDate(raw)
	if err != nil {
		return partition.Date{}, fmt.Errorf("%w: %s: %v", errBadRequest, name, err)
	}
	return d, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	var rangeErr *partition.InvalidRangeError
	switch {
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: rangeErr.Message, Code: string(rangeErr.Code)})
	case errors.Is(err, stock.ErrNoBrands):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "NO_BRANDS"})
	case errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
	default:
		s.logger.Error("query generation failed", "action", "get_query_string", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
