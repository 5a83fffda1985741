package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/export"
	"github.com/frsc-ops/edashboard/internal/session"
	"github.com/frsc-ops/edashboard/internal/types"
)

// =============================================================================
// SESSION
// =============================================================================

func (s *Server) handleSignIn(ctx *fasthttp.RequestCtx) {
	var req signInRequest
	if !s.decode(ctx, &req) {
		return
	}

	sess, err := s.sessions.SignIn(req.Username, req.Password)
	if err != nil {
		s.log.Info("Sign-in rejected", zap.String("username", req.Username))
		s.writeError(ctx, fasthttp.StatusUnauthorized, session.MessageInvalidCredentials)
		return
	}

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(CookieName)
	cookie.SetValue(sess.Token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSameSite(fasthttp.CookieSameSiteStrictMode)
	ctx.Response.Header.SetCookie(cookie)

	s.writeJSON(ctx, fasthttp.StatusOK, signInResponse{Authenticated: true})
}

func (s *Server) handleSignOut(ctx *fasthttp.RequestCtx, sctx context.Context) {
	s.sessions.SignOut(session.FromContext(sctx).Token)
	ctx.Response.Header.DelClientCookie(CookieName)
	s.writeJSON(ctx, fasthttp.StatusOK, signInResponse{Authenticated: false})
}

// =============================================================================
// FORM
// =============================================================================

func (s *Server) handleState(ctx *fasthttp.RequestCtx, _ context.Context) {
	s.writeJSON(ctx, fasthttp.StatusOK, s.dash.State())
}

func (s *Server) handleHeader(ctx *fasthttp.RequestCtx, _ context.Context) {
	var req headerRequest
	if !s.decode(ctx, &req) {
		return
	}
	if req.DateOfEntry != nil {
		s.dash.SetDateOfEntry(*req.DateOfEntry)
	}
	if req.TeamLeader != nil {
		s.dash.SetTeamLeader(*req.TeamLeader)
	}
	if req.Route != nil {
		s.dash.SetRoute(*req.Route)
	}
	s.writeJSON(ctx, fasthttp.StatusOK, s.dash.State())
}

func (s *Server) handleAddOffender(ctx *fasthttp.RequestCtx, _ context.Context) {
	s.writeJSON(ctx, fasthttp.StatusCreated, indexResponse{Index: s.dash.AddOffender()})
}

func (s *Server) handleRemoveOffender(ctx *fasthttp.RequestCtx, _ context.Context) {
	index, ok := s.intParam(ctx, "i")
	if !ok {
		return
	}
	s.respondEdit(ctx, s.dash.RemoveOffender(int(index)))
}

func (s *Server) handleOffenderField(ctx *fasthttp.RequestCtx, _ context.Context) {
	index, ok := s.intParam(ctx, "i")
	if !ok {
		return
	}
	var req fieldRequest
	if !s.decode(ctx, &req) {
		return
	}
	s.respondEdit(ctx, s.dash.UpdateOffenderField(int(index), req.Field, req.Value))
}

func (s *Server) handleOffence(ctx *fasthttp.RequestCtx, _ context.Context) {
	index, ok := s.intParam(ctx, "i")
	if !ok {
		return
	}
	var req offenceRequest
	if !s.decode(ctx, &req) {
		return
	}
	s.respondEdit(ctx, s.dash.SetOffenceSelected(int(index), req.Name, req.Selected))
}

func (s *Server) handleAddCurrencyDetail(ctx *fasthttp.RequestCtx, _ context.Context) {
	index, ok := s.intParam(ctx, "i")
	if !ok {
		return
	}
	id, err := s.dash.AddCurrencyDetail(int(index))
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleCurrencyField(ctx *fasthttp.RequestCtx, _ context.Context) {
	index, ok := s.intParam(ctx, "i")
	if !ok {
		return
	}
	detail, ok := s.intParam(ctx, "j")
	if !ok {
		return
	}
	var req fieldRequest
	if !s.decode(ctx, &req) {
		return
	}
	s.respondEdit(ctx, s.dash.UpdateCurrencyDetail(int(index), int(detail), req.Field, req.Value))
}

func (s *Server) handleRemoveCurrencyDetail(ctx *fasthttp.RequestCtx, _ context.Context) {
	index, ok := s.intParam(ctx, "i")
	if !ok {
		return
	}
	id, ok := s.intParam(ctx, "id")
	if !ok {
		return
	}
	s.respondEdit(ctx, s.dash.RemoveCurrencyDetail(int(index), id))
}

// respondEdit answers an edit with the new state, or with its error.
func (s *Server) respondEdit(ctx *fasthttp.RequestCtx, err error) {
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, s.dash.State())
}

// =============================================================================
// DRAFT AND SUBMISSION
// =============================================================================

func (s *Server) handleSaveDraft(ctx *fasthttp.RequestCtx, sctx context.Context) {
	if err := s.dash.SaveDraft(sctx); err != nil {
		s.log.Warn("Draft save failed", zap.Error(err))
		s.writeJSON(ctx, fasthttp.StatusInsufficientStorage, ErrorResponse{
			Status:  fasthttp.StatusInsufficientStorage,
			Message: "The draft could not be saved.",
		})
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, s.dash.State())
}

func (s *Server) handleSubmit(ctx *fasthttp.RequestCtx, sctx context.Context) {
	report, err := s.dash.Submit(sctx)
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, report)
}

func (s *Server) handleReports(ctx *fasthttp.RequestCtx, _ context.Context) {
	args := ctx.QueryArgs()
	s.writeJSON(ctx, fasthttp.StatusOK, s.dash.Reports(string(args.Peek("start")), string(args.Peek("end"))))
}

// =============================================================================
// CATALOG
// =============================================================================

func (s *Server) handleCatalog(ctx *fasthttp.RequestCtx, _ context.Context) {
	s.writeJSON(ctx, fasthttp.StatusOK, catalogResponse{
		Catalog:           s.dash.Catalog(),
		VehicleCategories: types.VehicleCategories,
		ActionTaken:       types.ActionTakenOptions(),
	})
}

func (s *Server) handleAddCatalog(ctx *fasthttp.RequestCtx, _ context.Context) {
	var req catalogRequest
	if !s.decode(ctx, &req) {
		return
	}

	var (
		added any
		err   error
	)
	switch param(ctx, "kind") {
	case "routes":
		var route string
		route, err = s.dash.AddRoute(req.Name)
		added = nameResponse{Name: route}
	case "team-leaders":
		added, err = s.dash.AddTeamLeader(req.Name, req.Pin)
	case "offences":
		added, err = s.dash.AddOffence(req.Code, req.Name)
	case "currencies":
		var currency string
		currency, err = s.dash.AddCurrency(req.Name)
		added = nameResponse{Name: currency}
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}
	s.writeJSON(ctx, fasthttp.StatusCreated, added)
}

// =============================================================================
// EXPORT
// =============================================================================

func (s *Server) handleExport(ctx *fasthttp.RequestCtx, _ context.Context) {
	format, err := export.ParseFormat(param(ctx, "format"))
	if err != nil {
		s.writeError(ctx, fasthttp.StatusNotFound, err.Error())
		return
	}

	args := ctx.QueryArgs()
	columns, err := export.ParseColumns(string(args.Peek("columns")))
	if err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	name, data, err := s.dash.Export(format, string(args.Peek("start")), string(args.Peek("end")), columns)
	if errors.Is(err, export.ErrNoReports) {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
		return
	}
	if err != nil {
		s.writeDomainError(ctx, err)
		return
	}

	ctx.SetContentType(format.ContentType())
	ctx.Response.Header.Set(fasthttp.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(data)
}
