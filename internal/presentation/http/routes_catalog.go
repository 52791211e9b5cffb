package httppresentation

import (
	"errors"
	"net/http"

	appcatalog "github.com/delus-studio/storefront/internal/application/catalog"
	"github.com/delus-studio/storefront/internal/domain/catalog"
)

type productSummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type playlistEntry struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Cover  string `json:"cover"`
	URL    string `json:"url"`
}

type homeResponse struct {
	Products      []*catalog.Product `json:"products"`
	FeaturedTrack *catalog.Track     `json:"featured_track"`
	Releases      []*catalog.Track   `json:"releases"`
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := h.deps.Catalog.Home(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Products:      home.Products,
		FeaturedTrack: home.FeaturedTrack,
		Releases:      home.Releases,
	})
}

func (h *Handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		out = append(out, productSummary{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.ImageURL})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.deps.Catalog.ListTracks(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]playlistEntry, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, playlistEntry{ID: t.ID, Title: t.Title, Artist: t.Artist, Cover: t.CoverURL, URL: t.AudioURL})
	}
	writeJSON(w, http.StatusOK, out)
}

var (
	errNoFilePart     = errors.New("No file part")
	errNoSelectedFile = errors.New("No selected file")
	errFileType       = errors.New("File type not allowed")
)

type uploadResponse struct {
	Message string         `json:"message"`
	Track   *catalog.Track `json:"track"`
}

func (h *Handler) handleUploadTrack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errNoFilePart)
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, errNoSelectedFile)
		return
	}

	res, err := h.deps.UploadTrack.Execute(r.Context(), appcatalog.UploadTrackInput{
		FileName: header.Filename,
		Content:  file,
		Title:    r.FormValue("title"),
		Artist:   r.FormValue("artist"),
		CoverURL: r.FormValue("cover_url"),
	})
	if err != nil {
		if errors.Is(err, catalog.ErrUnsupportedFile) {
			writeError(w, http.StatusBadRequest, errFileType)
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: "Track uploaded successfully", Track: res.Track})
}
