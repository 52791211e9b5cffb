package catalog

import (
	"context"
	"fmt"

	domain "github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/observability"
)

type productSeed struct {
	name, description, image string
	price                    float64
	stock                    int
}

var starterProducts = []productSeed{
	{name: "Delus Trucker Hat", description: "Essential Delus trucker", image: "images/collection/item1.jpg", price: 49.99, stock: 25},
	{name: "Delus Trucker II", description: "Second Edition Delus trucker", image: "images/collection/item2.jpg", price: 49.99, stock: 25},
}

func seedProducts() ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(starterProducts))
	for _, ps := range starterProducts {
		p, err := domain.NewProduct(ps.name, ps.description, ps.price, ps.image, "Clothing", ps.stock)
		if err != nil {
			return nil, fmt.Errorf("catalog: seed product %q: %w", ps.name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func seedTracks() []*domain.Track {
	return []*domain.Track{
		{
			Title:      "Games (Remastered)",
			Artist:     "German Brigante",
			CoverURL:   "featured-track.jpg",
			AudioURL:   "https://soundcloud.com/german-brigante/german-brigante-games-pura",
			SourceType: domain.SourceSoundCloud,
			Featured:   true,
		},
		{
			Title:      "Kettenkarussell - Maybe",
			Artist:     "Da Brøski",
			CoverURL:   "featured-track.jpg",
			AudioURL:   "https://api.soundcloud.com/tracks/470610045",
			SourceType: domain.SourceSoundCloud,
		},
		{
			Title:      "Delus Feature: Traxler",
			Artist:     "Traxler",
			CoverURL:   "featured-track.jpg",
			AudioURL:   "https://api.soundcloud.com/tracks/1825112544",
			SourceType: domain.SourceSoundCloud,
		},
		{
			Title:      "Delus Feature: Traxler",
			Artist:     "Traxler",
			CoverURL:   "featured-track.jpg",
			AudioURL:   "https://api.soundcloud.com/tracks/1825112544",
			SourceType: domain.SourceSoundCloud,
			IsRelease:  true,
		},
	}
}

// Seed inserts the starter catalog when the products table is empty.
// It reports whether anything was written.
func Seed(ctx context.Context, products domain.ProductRepository, tracks domain.TrackRepository, log observability.Logger) (bool, error) {
	if log == nil {
		log = observability.NopLogger()
	}
	n, err := products.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("catalog: seed: count products: %w", err)
	}
	if n > 0 {
		log.Debug("catalog_seed_skipped", observability.F("products", n))
		return false, nil
	}

	seed, err := seedProducts()
	if err != nil {
		return false, err
	}
	for _, p := range seed {
		if err := products.Create(ctx, p); err != nil {
			return false, fmt.Errorf("catalog: seed product %q: %w", p.Name, err)
		}
	}
	for _, t := range seedTracks() {
		if err := tracks.Create(ctx, t); err != nil {
			return false, fmt.Errorf("catalog: seed track %q: %w", t.Title, err)
		}
	}
	log.Info("catalog_seeded",
		observability.F("products", len(seed)),
		observability.F("tracks", len(seedTracks())),
	)
	return true, nil
}
