package server

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/catalog"
	"github.com/frsc-ops/edashboard/internal/dashboard"
	"github.com/frsc-ops/edashboard/internal/validation"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	Authenticated bool `json:"authenticated"`
}

type headerRequest struct {
	DateOfEntry *string `json:"dateOfEntry"`
	TeamLeader  *string `json:"teamLeader"`
	Route       *string `json:"route"`
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type offenceRequest struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type catalogRequest struct {
	Name string `json:"name"`
	Pin  string `json:"pin"`
	Code string `json:"code"`
}

// catalogResponse adds the fixed option lists to the editable catalogs.
type catalogResponse struct {
	*catalog.Catalog
	VehicleCategories []string `json:"vehicleCategories"`
	ActionTaken       []string `json:"actionTaken"`
}

type indexResponse struct {
	Index int `json:"index"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type nameResponse struct {
	Name string `json:"name"`
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
		ctx.Error("internal error", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	s.writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(ctx *fasthttp.RequestCtx, v any) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// writeDomainError maps service errors onto status codes.
func (s *Server) writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	var (
		verrs   validation.Errors
		dup     *catalog.DuplicateKeyError
		missing *catalog.MissingFieldsError
	)
	switch {
	case errors.As(err, &verrs):
		s.writeJSON(ctx, fasthttp.StatusUnprocessableEntity, ErrorResponse{
			Status:  fasthttp.StatusUnprocessableEntity,
			Message: "Please fill in all required fields.",
			Errors:  verrs,
		})
	case errors.As(err, &dup):
		s.writeError(ctx, fasthttp.StatusConflict, dup.Error())
	case errors.As(err, &missing):
		s.writeError(ctx, fasthttp.StatusBadRequest, missing.Error())
	case errors.Is(err, dashboard.ErrOffenderNotFound), errors.Is(err, dashboard.ErrCurrencyDetailNotFound):
		s.writeError(ctx, fasthttp.StatusNotFound, err.Error())
	case errors.Is(err, dashboard.ErrUnknownField),
		errors.Is(err, dashboard.ErrLastOffender),
		errors.Is(err, dashboard.ErrCurrencyNotAllowed):
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	default:
		s.log.Error("Request failed", zap.ByteString("path", ctx.Path()), zap.Error(err))
		s.writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
	}
}
