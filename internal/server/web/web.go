// Package web serves the auxiliary read-only view of posts and profiles over
// HTTP. It shares the storage engine with the messaging server and never
// mutates anything.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"distsocial/internal/common"
	"distsocial/internal/logging"
	"distsocial/internal/server/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	address string
	logger  logging.Logger
	store   *storage.Store
	tmpl    *template.Template
}

func NewServer(address string, l logging.Logger, store *storage.Store) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		address: address,
		logger:  l.With("module", "web_server"),
		store:   store,
		tmpl:    tmpl,
	}, nil
}

// Router builds the route table. Split out of Run for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/posts", s.handlePosts).Methods("GET")
	r.HandleFunc("/user/{username}", s.handleProfile).Methods("GET")
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Handler:      s.Router(),
		Addr:         s.address,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping web server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting web server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/posts", http.StatusFound)
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.store.GlobalFeed()
	if err != nil {
		s.logger.Error(r.Context(), "feed read failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", map[string]any{"Posts": posts}); err != nil {
		s.logger.Error(r.Context(), "template render failed", "error", err)
	}
}

type profileView struct {
	Username string
	Bio      storage.Bio
	Posts    []storage.Post
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	u, err := s.store.GetUser(username)
	if errors.Is(err, common.ErrUnknownUser) {
		http.Error(w, "User not found...", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "profile read failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	view := profileView{Username: username, Bio: u.Bio, Posts: u.Posts}
	if err := s.tmpl.ExecuteTemplate(w, "user_profile.html", view); err != nil {
		s.logger.Error(r.Context(), "template render failed", "error", err)
	}
}
