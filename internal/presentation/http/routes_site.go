package httppresentation

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

func (h *Handler) handleSitemap(w http.ResponseWriter, r *http.Request) {
	base := h.baseURL(r)
	set := urlSet{
		XMLNS: sitemapNS,
		URLs: []sitemapURL{
			{Loc: base, ChangeFreq: "weekly", Priority: "1.0"},
			{Loc: base + "cart", ChangeFreq: "monthly", Priority: "0.5"},
		},
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(set)
}

func (h *Handler) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /webhook\nSitemap: %ssitemap.xml\n", h.baseURL(r))
}
