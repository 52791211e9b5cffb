package gormstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(Config{Type: TypeSQLite, DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)}, nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(openTestDB(t))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 5; i++ {
		p := &catalog.Product{Name: fmt.Sprintf("Hat %d", i), Price: 49.99, Stock: 20, Category: "Clothing"}
		require.NoError(t, repo.Create(ctx, p))
		assert.Equal(t, int64(i), p.ID)
	}

	t.Run("ListLimit", func(t *testing.T) {
		ps, err := repo.ListLimit(ctx, 4)
		require.NoError(t, err)
		require.Len(t, ps, 4)
		assert.Equal(t, "Hat 1", ps[0].Name)
		assert.Equal(t, 49.99, ps[0].Price)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("GetAndFind", func(t *testing.T) {
		p, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Hat 2", p.Name)

		_, err = repo.Get(ctx, 404)
		assert.ErrorIs(t, err, catalog.ErrNotFound)

		p, err = repo.FindByName(ctx, "Hat 3")
		require.NoError(t, err)
		assert.Equal(t, int64(3), p.ID)

		_, err = repo.FindByName(ctx, "Vinyl")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})

	t.Run("DecrementStock", func(t *testing.T) {
		left, err := repo.DecrementStock(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, 15, left)

		left, err = repo.DecrementStock(ctx, 1, 25)
		require.NoError(t, err)
		assert.Equal(t, 0, left)

		_, err = repo.DecrementStock(ctx, 404, 1)
		assert.ErrorIs(t, err, catalog.ErrNotFound)

		_, err = repo.DecrementStock(ctx, 1, 0)
		assert.ErrorIs(t, err, catalog.ErrInvalidQuantity)
	})

	t.Run("ConcurrentDecrementsNeverNegative", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.DecrementStock(ctx, 2, 3)
			}()
		}
		wg.Wait()
		p, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
	})
}

func TestTrackRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTrackRepository(openTestDB(t))

	_, err := repo.Featured(ctx)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	require.NoError(t, repo.Create(ctx, &catalog.Track{Title: "Games", Artist: "GB", SourceType: catalog.SourceSoundCloud, Featured: true}))
	require.NoError(t, repo.Create(ctx, &catalog.Track{Title: "Traxler", Artist: "Traxler", SourceType: catalog.SourceSoundCloud, IsRelease: true}))
	require.NoError(t, repo.Create(ctx, &catalog.Track{Title: "Upload", Artist: "Unknown", SourceType: catalog.SourceLocal, AudioURL: "music/a.mp3"}))

	f, err := repo.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Games", f.Title)

	rel, err := repo.Releases(ctx)
	require.NoError(t, err)
	require.Len(t, rel, 1)
	assert.Equal(t, "Traxler", rel[0].Title)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, catalog.SourceLocal, all[2].SourceType)
	assert.Equal(t, "music/a.mp3", all[2].AudioURL)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t))

	o := order.New("9f1c2d4e-0000-4000-8000-000000000001", "cs_1", "evt_1", "fan@delus.example", []order.Line{
		{Description: "Delus Trucker Hat", ProductID: 1, Quantity: 2, Matched: true},
		{Description: "Mystery", Quantity: 1},
	})
	require.NoError(t, repo.Insert(ctx, o))

	got, err := repo.FindBySession(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, order.StatusPartiallyFulfilled, got.Status)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, int64(2), got.Lines[0].Quantity)
	assert.False(t, got.Lines[1].Matched)

	dup := order.New("9f1c2d4e-0000-4000-8000-000000000002", "cs_1", "evt_2", "", nil)
	assert.ErrorIs(t, repo.Insert(ctx, dup), order.ErrConflict)

	_, err = repo.FindBySession(ctx, "cs_unknown")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open(Config{Type: "oracle"}, nil)
	assert.Error(t, err)
}

func TestOrderRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTestDB(t))

	o := order.New("9f1c2d4e-0000-4000-8000-000000000010", "cs_upd", "evt_1", "", []order.Line{
		{Description: "Delus Trucker Hat", ProductID: 1, Quantity: 2, Matched: true},
		{Description: "Delus Trucker II", ProductID: 2, Quantity: 1, Matched: true},
	})
	require.NoError(t, repo.Insert(ctx, o))

	o.MarkUnfulfilled(1)
	require.NoError(t, repo.Update(ctx, o))

	got, err := repo.FindBySession(ctx, "cs_upd")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPartiallyFulfilled, got.Status)
	require.Len(t, got.Lines, 2)
	assert.True(t, got.Lines[0].Matched)
	assert.False(t, got.Lines[1].Matched)

	missing := order.New("9f1c2d4e-0000-4000-8000-000000000011", "cs_none", "evt_2", "", nil)
	assert.ErrorIs(t, repo.Update(ctx, missing), order.ErrNotFound)
}
