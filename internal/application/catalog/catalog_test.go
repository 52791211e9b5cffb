package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	domain "github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/infrastructure/memory"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMedia struct {
	saved map[string]string
	err   error
}

func (m *fakeMedia) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[name] = string(b)
	return "music/" + name, nil
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyTable", func(t *testing.T) {
		products, tracks := memory.NewProductRepository(), memory.NewTrackRepository()
		seeded, err := Seed(ctx, products, tracks, nil)
		require.NoError(t, err)
		assert.True(t, seeded)

		n, _ := products.Count(ctx)
		assert.Equal(t, int64(2), n)
		tn, _ := tracks.Count(ctx)
		assert.Equal(t, int64(4), tn)

		hat, err := products.FindByName(ctx, "Delus Trucker Hat")
		require.NoError(t, err)
		assert.Equal(t, 25, hat.Stock)
		assert.Equal(t, "Clothing", hat.Category)
		assert.False(t, hat.CreatedAt.IsZero())
	})

	t.Run("SkipsWhenProductsExist", func(t *testing.T) {
		products, tracks := memory.NewProductRepository(), memory.NewTrackRepository()
		require.NoError(t, products.Create(ctx, &domain.Product{Name: "Existing"}))

		seeded, err := Seed(ctx, products, tracks, observability.NopLogger())
		require.NoError(t, err)
		assert.False(t, seeded)

		tn, _ := tracks.Count(ctx)
		assert.Zero(t, tn)
	})
}

func TestServiceHome(t *testing.T) {
	ctx := context.Background()
	products, tracks := memory.NewProductRepository(), memory.NewTrackRepository()
	for i := 0; i < 6; i++ {
		require.NoError(t, products.Create(ctx, &domain.Product{Name: fmt.Sprintf("p%d", i)}))
	}

	svc := NewService(products, tracks)

	home, err := svc.Home(ctx)
	require.NoError(t, err)
	assert.Len(t, home.Products, 4)
	assert.Nil(t, home.FeaturedTrack)
	assert.Empty(t, home.Releases)

	_, err = Seed(ctx, memory.NewProductRepository(), tracks, nil)
	require.NoError(t, err)

	home, err = svc.Home(ctx)
	require.NoError(t, err)
	require.NotNil(t, home.FeaturedTrack)
	assert.Equal(t, "Games (Remastered)", home.FeaturedTrack.Title)
	assert.Len(t, home.Releases, 1)

	_, err = svc.GetProduct(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("Regular", func(t *testing.T) {
		tracks := memory.NewTrackRepository()
		media := &fakeMedia{}
		uc := NewUploadTrackUseCase(tracks, media, nil)

		res, err := uc.Execute(ctx, UploadTrackInput{FileName: "set.mp3", Content: strings.NewReader("ID3")})
		require.NoError(t, err)
		assert.Equal(t, "music/set.mp3", res.Track.AudioURL)
		assert.Equal(t, "Untitled", res.Track.Title)
		assert.Equal(t, "Unknown", res.Track.Artist)
		assert.Equal(t, "default-cover.jpg", res.Track.CoverURL)
		assert.Equal(t, domain.SourceLocal, res.Track.SourceType)
		assert.Equal(t, "ID3", media.saved["set.mp3"])

		all, _ := tracks.List(ctx)
		assert.Len(t, all, 1)
	})

	t.Run("MissingFile", func(t *testing.T) {
		uc := NewUploadTrackUseCase(memory.NewTrackRepository(), &fakeMedia{}, nil)
		_, err := uc.Execute(ctx, UploadTrackInput{})
		assert.ErrorIs(t, err, domain.ErrMissingFile)
	})

	t.Run("RejectedType", func(t *testing.T) {
		tracks := memory.NewTrackRepository()
		uc := NewUploadTrackUseCase(tracks, &fakeMedia{err: domain.ErrUnsupportedFile}, nil)
		_, err := uc.Execute(ctx, UploadTrackInput{FileName: "x.exe", Content: strings.NewReader("")})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFile)

		n, _ := tracks.Count(ctx)
		assert.Zero(t, n)
	})
}
