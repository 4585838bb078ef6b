package handler

import (
	"encoding/xml"
	"fmt"
	"go-success-stories/internal/service"
	"net/http"
	"strings"
	"time"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	stories    service.StoryServicer
	categories service.CategoryServicer
	siteURL    string
}

// NewSeoHandler creates a new SeoHandler. siteURL is the public origin used in absolute links.
func NewSeoHandler(ss service.StoryServicer, cs service.CategoryServicer, siteURL string) *SeoHandler {
	return &SeoHandler{stories: ss, categories: cs, siteURL: strings.TrimRight(siteURL, "/")}
}

// robotsHandler serves robots.txt pointing at the sitemap.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "Disallow: /editor/")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Sitemap: %s/sitemap.xml\n", h.siteURL)
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler lists the story index, categories and every published story.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	stories, err := h.stories.ListPublished(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve stories for sitemap", http.StatusInternalServerError)
		return
	}
	categories, err := h.categories.List(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve categories for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(stories)+len(categories)+1),
	}
	sitemap.URLs = append(sitemap.URLs, sitemapURL{Loc: h.siteURL + "/success-stories/"})
	for _, category := range categories {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     h.siteURL + category.AbsoluteURL(),
			LastMod: lastMod(category.UpdatedAt),
		})
	}
	for _, story := range stories {
		sitemap.URLs = append(sitemap.URLs, sitemapURL{
			Loc:     h.siteURL + story.AbsoluteURL(),
			LastMod: lastMod(story.UpdatedAt),
		})
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		http.Error(w, "Failed to generate sitemap XML", http.StatusInternalServerError)
		return
	}
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(sitemapDateFormat)
}
