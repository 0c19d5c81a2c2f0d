package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/config"
	"github.com/openkcm/blog-client/internal/guard"
	"github.com/openkcm/blog-client/internal/navigation"
	"github.com/openkcm/blog-client/internal/posts"
	"github.com/openkcm/blog-client/internal/session"
)

// Deps are the collaborators of the views.
type Deps struct {
	Backend  Backend
	Profiles Profiles
	Session  Session
}

func newRouter(cfg *config.Config, deps Deps) http.Handler {
	perPage := cfg.Views.PostsPerPage
	if perPage <= 0 {
		perPage = posts.DefaultPerPage
	}

	v := &views{
		backend:  deps.Backend,
		profiles: deps.Profiles,
		sess:     deps.Session,
		perPage:  perPage,
	}

	r := chi.NewRouter()
	// The trace middleware wraps the writer, so it must run before the
	// navigation binding captures it.
	r.Use(newTraceMiddleware(cfg))
	r.Use(navigation.Middleware)

	r.Get("/session", v.getSession)

	r.Group(func(r chi.Router) {
		r.Use(guard.ReadyMiddleware(deps.Session))

		r.Get(session.LoginPath, v.getLogin)
		r.Post(session.LoginPath, v.postLogin)
		r.Get("/register", v.getRegister)
		r.Post("/register", v.postRegister)
		r.Post("/logout", v.postLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(deps.Session, session.LoginPath))

		r.Get(session.HomePath, v.getHome)
		r.Get("/post/{id}", v.getPost)
		r.Post("/post/{id}/comments", v.postComment)
		r.Get("/create", v.getCreate)
		r.Post("/create", v.postCreate)
		r.Get(myBlogsPath, v.getMyBlogs)
		r.Post(myBlogsPath+"/{postId}/delete", v.postDelete)
		r.Get("/edit/{postId}", v.getEdit)
		r.Post("/edit/{postId}", v.postEdit)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, session.HomePath, http.StatusSeeOther)
	})

	return r
}

// createHTTPServer creates the views http server using the given config
func createHTTPServer(_ context.Context, cfg *config.Config, deps Deps) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, deps),
	}
}

// StartHTTPServer serves the views until ctx is done.
func StartHTTPServer(ctx context.Context, cfg *config.Config, deps Deps) error {
	if err := initMeters(ctx, cfg); err != nil {
		return err
	}

	server := createHTTPServer(ctx, cfg, deps)

	slogctx.Info(ctx, "Starting a listener", "address", server.Addr)

	// Parse network if the address if provided in the format of network://address.
	// Otherwise use tcp network by default.
	network := "tcp"
	if idx := strings.IndexRune(server.Addr, ':'); idx != -1 && len(server.Addr) > idx+3 && server.Addr[idx:idx+3] == "://" {
		network = server.Addr[:idx]
		server.Addr = server.Addr[idx+3:]
	}

	listener, err := new(net.ListenConfig).Listen(ctx, network, server.Addr)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed to create a listener")
	}

	slogctx.Info(ctx, "A listener started", "address", listener.Addr().String())

	go func() {
		slogctx.Info(ctx, "Serving an HTTP server", "address", listener.Addr().String())
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogctx.Error(ctx, "Failed to serve an HTTP server", "error", err)
		}

		slogctx.Info(ctx, "Stopped an HTTP server")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	slogctx.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}
