// Package router builds the echo instance: global middleware, the /api
// route groups and the system endpoints.
package router

import (
	"net/http"

	"github.com/deppfellow/gocrud/internal/handler"
	"github.com/deppfellow/gocrud/internal/middleware"
	"github.com/deppfellow/gocrud/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		m.Global.CORS(),
		m.Global.Secure(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)

	api := router.Group("/api")
	registerAuthRoutes(api, h.Auth, m)
	registerUserRoutes(api, h.Users, m)

	return router
}

func registerAuthRoutes(g *echo.Group, h *handler.AuthHandler, m *middleware.Middlewares) {
	limited := m.RateLimit.Limit(middleware.AuthRate, middleware.AuthBurst)

	g.POST("/register", handler.Handle(h.Handler, h.Register, http.StatusCreated,
		func() *handler.RegisterRequest { return &handler.RegisterRequest{} }), limited)
	g.POST("/login", handler.Handle(h.Handler, h.Login, http.StatusOK,
		func() *handler.LoginRequest { return &handler.LoginRequest{} }), limited)
	g.POST("/forgot", handler.HandleNoContent(h.Handler, h.Forgot, http.StatusNoContent,
		func() *handler.ForgotRequest { return &handler.ForgotRequest{} }), limited)

	// The sealed email may arrive as a path segment or in the body.
	reset := handler.Handle(h.Handler, h.Reset, http.StatusOK,
		func() *handler.ResetRequest { return &handler.ResetRequest{} })
	g.PUT("/reset/:token", reset, limited)
	g.PUT("/reset/:token/:email", reset, limited)

	g.POST("/logout", handler.Handle(h.Handler, h.Logout, http.StatusOK, newEmpty), m.Auth.RequireAuth)
	g.GET("/user", handler.Handle(h.Handler, h.Me, http.StatusOK, newEmpty), m.Auth.RequireAuth)
}

func registerUserRoutes(g *echo.Group, h *handler.UserHandler, m *middleware.Middlewares) {
	users := g.Group("/users", m.Auth.RequireAuth)

	users.GET("", handler.Handle(h.Handler, h.List, http.StatusOK,
		func() *handler.ListRequest { return &handler.ListRequest{} }))
	users.POST("", handler.Handle(h.Handler, h.Create, http.StatusCreated,
		func() *handler.CreateUserRequest { return &handler.CreateUserRequest{} }))
	users.GET("/:id", handler.Handle(h.Handler, h.Retrieve, http.StatusOK, newID))
	users.PUT("/:id", handler.Handle(h.Handler, h.Update, http.StatusOK,
		func() *handler.UpdateUserRequest { return &handler.UpdateUserRequest{} }))
	users.DELETE("/:id", handler.Handle(h.Handler, h.Delete, http.StatusOK, newID))
}

func newEmpty() *handler.EmptyRequest { return &handler.EmptyRequest{} }

func newID() *handler.IDRequest { return &handler.IDRequest{} }
