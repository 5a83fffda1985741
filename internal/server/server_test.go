package server

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"

	"github.com/frsc-ops/edashboard/internal/dashboard"
	"github.com/frsc-ops/edashboard/internal/export"
	"github.com/frsc-ops/edashboard/internal/session"
	"github.com/frsc-ops/edashboard/internal/storage"
	"github.com/frsc-ops/edashboard/internal/types"
	"github.com/frsc-ops/edashboard/internal/validation"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := zaptest.NewLogger(t)
	adapter := storage.NewAdapter(storage.NewMemoryKV(0),
		storage.WithLatency(time.Millisecond), storage.WithLogger(log))
	d, err := dashboard.New(context.Background(), dashboard.Options{
		Adapter: adapter,
		Logger:  log,
		Now:     func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	t.Cleanup(d.Flush)

	sessions := session.NewManager(session.Authenticator{Username: "frsc", Password: "admin123"})
	return New(d, sessions, log)
}

func do(s *Server, method, uri, body, token string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	if body != "" {
		req.SetBodyString(body)
	}
	if token != "" {
		req.Header.SetCookie(CookieName, token)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.Handler(ctx)
	return ctx
}

func signIn(t *testing.T, s *Server) string {
	t.Helper()
	ctx := do(s, fasthttp.MethodPost, "/api/signin", `{"username":"frsc","password":"admin123"}`, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(CookieName)
	require.True(t, ctx.Response.Header.Cookie(cookie))
	assert.True(t, cookie.HTTPOnly())
	return string(cookie.Value())
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), v), string(ctx.Response.Body()))
}

func fillForm(t *testing.T, s *Server, token string) {
	t.Helper()
	ctx := do(s, fasthttp.MethodPost, "/api/header", `{"teamLeader":"RC OS ODEKUNLE","route":"OS - ILESA"}`, token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	for _, f := range types.OffenderScalarFields {
		ctx = do(s, fasthttp.MethodPost, "/api/offenders/0/field", `{"field":"`+f+`","value":"x-`+f+`"}`, token)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), f)
	}

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/0/offence", `{"name":"SEAT BELT VIOLATION","selected":true}`, token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestRequiresSession(t *testing.T) {
	s := newTestServer(t)

	ctx := do(s, fasthttp.MethodGet, "/api/state", "", "")
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodGet, "/api/state", "", "forged-token")
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())

	var resp ErrorResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, ErrorResponse{Status: 401, Message: "Authentication required"}, resp)
}

func TestSignInRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t)

	ctx := do(s, fasthttp.MethodPost, "/api/signin", `{"username":"frsc","password":"nope"}`, "")

	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	var resp ErrorResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, session.MessageInvalidCredentials, resp.Message)
	assert.Nil(t, ctx.Response.Header.PeekCookie(CookieName))
}

func TestSignInBadBody(t *testing.T) {
	s := newTestServer(t)

	ctx := do(s, fasthttp.MethodPost, "/api/signin", `{`, "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestSignOutEndsSession(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodPost, "/api/signout", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodGet, "/api/state", "", token)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestStateDefaults(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodGet, "/api/state", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var state dashboard.State
	decodeBody(t, ctx, &state)
	assert.Equal(t, "2024-05-01", state.Header.DateOfEntry)
	assert.Equal(t, dashboard.SyncIdle, state.SyncStatus)
	require.Len(t, state.FormData.Offenders, 1)
}

func TestSubmitFlow(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodPost, "/api/submit", "", token)
	require.Equal(t, fasthttp.StatusUnprocessableEntity, ctx.Response.StatusCode())
	var invalid ErrorResponse
	decodeBody(t, ctx, &invalid)
	assert.Equal(t, "This field is required", invalid.Errors[validation.KeyTeamLeader])

	fillForm(t, s, token)

	ctx = do(s, fasthttp.MethodPost, "/api/draft", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var state dashboard.State
	decodeBody(t, ctx, &state)
	assert.Equal(t, dashboard.SyncSaved, state.SyncStatus)

	ctx = do(s, fasthttp.MethodPost, "/api/submit", "", token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	var report types.Report
	decodeBody(t, ctx, &report)
	assert.Equal(t, "C-07287", report.TeamLeaderPin)
	assert.Equal(t, []string{"SEAT BELT VIOLATION"}, report.FormData.Offenders[0].Offence)

	ctx = do(s, fasthttp.MethodGet, "/api/reports?start=2024-05-01&end=2024-05-31", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var reports []types.Report
	decodeBody(t, ctx, &reports)
	require.Len(t, reports, 1)
	assert.Equal(t, report.ID, reports[0].ID)

	ctx = do(s, fasthttp.MethodGet, "/api/reports?start=2024-06-01", "", token)
	decodeBody(t, ctx, &reports)
	assert.Empty(t, reports)
}

func TestExportDownload(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodGet, "/api/export/xls", "", token)
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())

	fillForm(t, s, token)
	ctx = do(s, fasthttp.MethodPost, "/api/submit", "", token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodGet, "/api/export/xls?columns=route,offence", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, `"OS - ILESA","SUV"`, string(ctx.Response.Body()))
	assert.Equal(t, "text/csv;charset=utf-8", string(ctx.Response.Header.ContentType()))
	disposition := string(ctx.Response.Header.Peek(fasthttp.HeaderContentDisposition))
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="FRSC_Reports_`), disposition)
	assert.True(t, strings.HasSuffix(disposition, `.xls"`), disposition)

	ctx = do(s, fasthttp.MethodGet, "/api/export/doc", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.True(t, strings.HasPrefix(string(ctx.Response.Body()), export.BOM+"<!DOCTYPE html>"))

	ctx = do(s, fasthttp.MethodGet, "/api/export/pdf", "", token)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodGet, "/api/export/xls?columns=colour", "", token)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestCurrencyDetailRoutes(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodPost, "/api/offenders/0/currency", "", token)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/0/offence", `{"name":"`+types.TriggeringOffence+`","selected":true}`, token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var state dashboard.State
	decodeBody(t, ctx, &state)
	require.Len(t, state.FormData.Offenders[0].CurrencyDetails, 1)
	seeded := state.FormData.Offenders[0].CurrencyDetails[0].ID

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/0/currency", "", token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/0/currency/1", `{"field":"amountOffered","value":"5000"}`, token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	decodeBody(t, ctx, &state)
	assert.Equal(t, "5000", state.FormData.Offenders[0].CurrencyDetails[1].AmountOffered)

	ctx = do(s, fasthttp.MethodDelete, "/api/offenders/0/currency/"+strconv.FormatInt(seeded, 10), "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	decodeBody(t, ctx, &state)
	require.Len(t, state.FormData.Offenders[0].CurrencyDetails, 1)
	assert.Equal(t, "5000", state.FormData.Offenders[0].CurrencyDetails[0].AmountOffered)

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/7/field", `{"field":"fullName","value":"x"}`, token)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestOffenderRoutes(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodDelete, "/api/offenders/0", "", token)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodPost, "/api/offenders", "", token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"index":1}`, string(ctx.Response.Body()))

	ctx = do(s, fasthttp.MethodDelete, "/api/offenders/0", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var state dashboard.State
	decodeBody(t, ctx, &state)
	assert.Len(t, state.FormData.Offenders, 1)

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/0/field", `{"field":"offence","value":"x"}`, token)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodPost, "/api/catalog/routes", `{"name":"OS - EDE"}`, token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"name":"OS - EDE"}`, string(ctx.Response.Body()))

	ctx = do(s, fasthttp.MethodPost, "/api/catalog/routes", `{"name":"OS - EDE"}`, token)
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	var resp ErrorResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, "This route already exists.", resp.Message)

	ctx = do(s, fasthttp.MethodPost, "/api/catalog/team-leaders", `{"name":"ACC NEW"}`, token)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodPost, "/api/catalog/offences", `{"code":"ipk","name":"ILLEGAL PARKING"}`, token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"code":"IPK","name":"ILLEGAL PARKING"}`, string(ctx.Response.Body()))

	ctx = do(s, fasthttp.MethodPost, "/api/catalog/planets", `{"name":"x"}`, token)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodGet, "/api/catalog", "", token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var cat struct {
		Routes            []string `json:"routes"`
		VehicleCategories []string `json:"vehicleCategories"`
	}
	decodeBody(t, ctx, &cat)
	assert.Contains(t, cat.Routes, "OS - EDE")
	assert.Equal(t, types.VehicleCategories, cat.VehicleCategories)
}

func TestUnknownRoutes(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	assert.Equal(t, fasthttp.StatusNotFound, do(s, fasthttp.MethodGet, "/api/nothing", "", token).Response.StatusCode())
	assert.Equal(t, fasthttp.StatusNotFound, do(s, fasthttp.MethodGet, "/index.html", "", token).Response.StatusCode())
	assert.Equal(t, fasthttp.StatusNotFound, do(s, fasthttp.MethodDelete, "/api/offenders/abc", "", token).Response.StatusCode())
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, do(s, fasthttp.MethodGet, "/api/signin", "", "").Response.StatusCode())

	ctx := do(s, fasthttp.MethodGet, "/api/submit", "", token)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.Peek(fasthttp.HeaderAllow)), fasthttp.MethodPost)
	var resp ErrorResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, ErrorResponse{Status: 405, Message: "Method not allowed"}, resp)

	// Unknown routes answer 404 before the session is checked.
	ctx = do(s, fasthttp.MethodGet, "/api/nothing", "", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	decodeBody(t, ctx, &resp)
	assert.Equal(t, ErrorResponse{Status: 404, Message: "Not found"}, resp)
}

func TestPathParams(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	ctx := do(s, fasthttp.MethodPost, "/api/offenders", "", token)
	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/1/field", `{"field":"fullName","value":"ADE"}`, token)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var state dashboard.State
	decodeBody(t, ctx, &state)
	assert.Empty(t, state.FormData.Offenders[0].FullName)
	assert.Equal(t, "ADE", state.FormData.Offenders[1].FullName)

	ctx = do(s, fasthttp.MethodPost, "/api/offenders/1/currency/x", `{"field":"amountOffered","value":"1"}`, token)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestAuthedContextDerivesFromRequest(t *testing.T) {
	s := newTestServer(t)
	token := signIn(t, s)

	var got context.Context
	h := s.authed(func(_ *fasthttp.RequestCtx, sctx context.Context) { got = sctx })

	var req fasthttp.Request
	req.Header.SetCookie(CookieName, token)
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	ctx.SetUserValue("requestID", "r-1")
	h(ctx)

	require.NotNil(t, got)
	assert.Equal(t, "r-1", got.Value("requestID"))
	assert.Equal(t, ctx.Done(), got.Done())
	assert.True(t, session.FromContext(got).Authenticated)
}
