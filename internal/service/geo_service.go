package service

import (
	"context"

	"frota/internal/geo"
	"frota/internal/logging"

	"go.uber.org/zap"
)

// GeoService backs the state and city pickers. Lookup failures degrade to an
// empty list so the forms still render.
type GeoService interface {
	States(ctx context.Context) []geo.Place
	Cities(ctx context.Context, uf string) []geo.Place
}

type geoService struct {
	lookup geo.Lookup
}

func NewGeoService(lookup geo.Lookup) GeoService {
	return &geoService{lookup: lookup}
}

func (s *geoService) States(ctx context.Context) []geo.Place {
	places, err := s.lookup.States(ctx)
	if err != nil {
		logging.Warn("state lookup failed", zap.Error(err))
		return []geo.Place{}
	}
	return orEmpty(places)
}

func (s *geoService) Cities(ctx context.Context, uf string) []geo.Place {
	places, err := s.lookup.Cities(ctx, uf)
	if err != nil {
		logging.Warn("city lookup failed", zap.String("uf", uf), zap.Error(err))
		return []geo.Place{}
	}
	return orEmpty(places)
}

func orEmpty(places []geo.Place) []geo.Place {
	if places == nil {
		return []geo.Place{}
	}
	return places
}
