package catalog

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/delus-studio/storefront/internal/domain/catalog"
)

const homeProductLimit = 4

var ErrNotFound = domain.ErrNotFound

// Service serves read-only catalog queries.
type Service struct {
	products domain.ProductRepository
	tracks   domain.TrackRepository
}

func NewService(products domain.ProductRepository, tracks domain.TrackRepository) *Service {
	return &Service{products: products, tracks: tracks}
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products: %w", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog: get product %d: %w", id, err)
	}
	return p, nil
}

func (s *Service) ListTracks(ctx context.Context) ([]*domain.Track, error) {
	tracks, err := s.tracks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list tracks: %w", err)
	}
	return tracks, nil
}

// FeaturedTrack returns nil without error when no track is featured.
func (s *Service) FeaturedTrack(ctx context.Context) (*domain.Track, error) {
	t, err := s.tracks.Featured(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: featured track: %w", err)
	}
	return t, nil
}

func (s *Service) ListReleases(ctx context.Context) ([]*domain.Track, error) {
	releases, err := s.tracks.Releases(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: list releases: %w", err)
	}
	return releases, nil
}

type HomeView struct {
	Products      []*domain.Product
	FeaturedTrack *domain.Track
	Releases      []*domain.Track
}

// Home gathers the landing page: the first few products, the featured track and the releases.
func (s *Service) Home(ctx context.Context) (*HomeView, error) {
	products, err := s.products.ListLimit(ctx, homeProductLimit)
	if err != nil {
		return nil, fmt.Errorf("catalog: home products: %w", err)
	}
	featured, err := s.FeaturedTrack(ctx)
	if err != nil {
		return nil, err
	}
	releases, err := s.ListReleases(ctx)
	if err != nil {
		return nil, err
	}
	return &HomeView{Products: products, FeaturedTrack: featured, Releases: releases}, nil
}
