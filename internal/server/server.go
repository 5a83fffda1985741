// =============================================================================
// FRSC Operations E-Dashboard - HTTP Server
// =============================================================================
//
// The server exposes the dashboard over a small JSON API. Every route except
// sign-in requires the session cookie handed out by a successful sign-in.
//
// ROUTES:
//   POST   /api/signin                          open a session
//   POST   /api/signout                         close the session
//   GET    /api/state                           form, header, sync status
//   POST   /api/header                          header selections
//   POST   /api/offenders                       add offender
//   DELETE /api/offenders/{i}                   remove offender
//   POST   /api/offenders/{i}/field             set a scalar field
//   POST   /api/offenders/{i}/offence           toggle an offence
//   POST   /api/offenders/{i}/currency          add currency detail
//   POST   /api/offenders/{i}/currency/{j}      set a currency detail field (index)
//   DELETE /api/offenders/{i}/currency/{id}     remove currency detail
//   POST   /api/draft                           save draft
//   POST   /api/submit                          submit report
//   GET    /api/reports?start&end               list reports
//   GET    /api/catalog                         reference lists
//   POST   /api/catalog/{kind}                  add a catalog entry
//   GET    /api/export/{format}?start&end&columns
//
// =============================================================================

package server

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/dashboard"
	"github.com/frsc-ops/edashboard/internal/session"
)

// CookieName is the session cookie.
const CookieName = "edash_session"

// authedHandler serves a route behind the session check. sctx is derived
// from the request and carries the session.
type authedHandler func(ctx *fasthttp.RequestCtx, sctx context.Context)

// Server serves the dashboard API.
type Server struct {
	dash     *dashboard.Dashboard
	sessions *session.Manager
	log      *zap.Logger
	router   *router.Router
	http     *fasthttp.Server
}

// New creates a server. A nil logger disables logging.
func New(dash *dashboard.Dashboard, sessions *session.Manager, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{dash: dash, sessions: sessions, log: log}
	s.router = s.routes()
	s.http = &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "edash",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.log.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	return s.http.Serve(ln)
}

// Shutdown stops accepting connections and waits for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.ShutdownWithContext(ctx)
}

// Handler is the fasthttp entry point.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	s.router.Handler(ctx)
	s.log.Debug("Request served",
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
}

// =============================================================================
// ROUTING
// =============================================================================

func (s *Server) routes() *router.Router {
	r := router.New()
	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		s.writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
	r.MethodNotAllowed = func(ctx *fasthttp.RequestCtx) {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}

	api := r.Group("/api")
	api.POST("/signin", s.handleSignIn)
	api.POST("/signout", s.authed(s.handleSignOut))

	api.GET("/state", s.authed(s.handleState))
	api.POST("/header", s.authed(s.handleHeader))
	api.POST("/offenders", s.authed(s.handleAddOffender))
	api.DELETE("/offenders/{i}", s.authed(s.handleRemoveOffender))
	api.POST("/offenders/{i}/field", s.authed(s.handleOffenderField))
	api.POST("/offenders/{i}/offence", s.authed(s.handleOffence))
	api.POST("/offenders/{i}/currency", s.authed(s.handleAddCurrencyDetail))
	api.POST("/offenders/{i}/currency/{j}", s.authed(s.handleCurrencyField))
	api.DELETE("/offenders/{i}/currency/{id}", s.authed(s.handleRemoveCurrencyDetail))

	api.POST("/draft", s.authed(s.handleSaveDraft))
	api.POST("/submit", s.authed(s.handleSubmit))
	api.GET("/reports", s.authed(s.handleReports))

	api.GET("/catalog", s.authed(s.handleCatalog))
	api.POST("/catalog/{kind}", s.authed(s.handleAddCatalog))

	api.GET("/export/{format}", s.authed(s.handleExport))
	return r
}

// authed rejects requests without a live session before h runs.
func (s *Server) authed(h authedHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		sess := s.sessions.Resume(string(ctx.Request.Header.Cookie(CookieName)))
		if !sess.Authenticated {
			s.writeError(ctx, fasthttp.StatusUnauthorized, "Authentication required")
			return
		}
		h(ctx, session.WithSession(ctx, sess))
	}
}

// param returns a captured path segment.
func param(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

// intParam parses a numeric path parameter, answering 404 when it is not one.
func (s *Server) intParam(ctx *fasthttp.RequestCtx, name string) (int64, bool) {
	n, err := strconv.ParseInt(param(ctx, name), 10, 64)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusNotFound, "Not found")
		return 0, false
	}
	return n, true
}
