package handler

import (
	"go-success-stories/internal/middleware"
	"go-success-stories/internal/session"
	"go-success-stories/web"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router.
func NewRouter(
	storyHandler *StoryHandler,
	boxHandler *BoxHandler,
	seoHandler *SeoHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
	sessionManager session.Manager,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/success-stories/", http.StatusFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(authzMiddleware)

		r.Get("/robots.txt", seoHandler.robotsHandler)
		r.Get("/sitemap.xml", seoHandler.sitemapHandler)

		r.Method(http.MethodGet, "/success-stories/", errorMiddleware(storyHandler.listHandler))
		r.Method(http.MethodGet, "/success-stories/category/{slug}/", errorMiddleware(storyHandler.categoryHandler))
		r.Method(http.MethodGet, "/success-stories/submit/", errorMiddleware(storyHandler.submitFormHandler))
		r.Method(http.MethodPost, "/success-stories/submit/", errorMiddleware(storyHandler.submitHandler))
		r.Method(http.MethodGet, "/success-stories/{slug}/", errorMiddleware(storyHandler.detailHandler))
		r.Method(http.MethodGet, "/box/{label}/", errorMiddleware(boxHandler.boxHandler))

		r.Method(http.MethodGet, "/editor/stories", errorMiddleware(storyHandler.editorListHandler))
		r.Method(http.MethodPost, "/editor/stories/{slug}", errorMiddleware(storyHandler.editorUpdateHandler))
	})

	return r
}
