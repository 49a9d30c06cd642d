package repository

import (
	"context"

	"frota/internal/model"

	"gorm.io/gorm"
)

type RouteRepository interface {
	Create(ctx context.Context, route *model.Route) error
	Update(ctx context.Context, route *model.Route) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Route, error)
	List(ctx context.Context, clientID uint, page, limit int) ([]model.Route, int64, error)
	ListActiveByClient(ctx context.Context, clientID uint) ([]model.Route, error)
}

type routeRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) RouteRepository {
	return &routeRepository{db: db}
}

func (r *routeRepository) Create(ctx context.Context, route *model.Route) error {
	return GetDB(ctx, r.db).Omit("Client").Create(route).Error
}

func (r *routeRepository) Update(ctx context.Context, route *model.Route) error {
	return GetDB(ctx, r.db).Model(&model.Route{ID: route.ID}).
		Select("client_id", "name", "origin_description", "destination_description", "fixed_price", "status").
		Updates(route).Error
}

func (r *routeRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Route{}).Error
}

func (r *routeRepository) FindByID(ctx context.Context, id uint) (*model.Route, error) {
	var route model.Route
	if err := GetDB(ctx, r.db).Preload("Client").First(&route, "id = ?", id).Error; err != nil {
		return nil, translate(err, "route")
	}
	return &route, nil
}

func (r *routeRepository) List(ctx context.Context, clientID uint, page, limit int) ([]model.Route, int64, error) {
	var routes []model.Route
	var total int64

	filtered := func() *gorm.DB {
		query := GetDB(ctx, r.db).Model(&model.Route{})
		if clientID > 0 {
			query = query.Where("client_id = ?", clientID)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := filtered().Preload("Client").Order("name asc").Offset(offset).Limit(limit).Find(&routes).Error; err != nil {
		return nil, 0, err
	}

	return routes, total, nil
}

func (r *routeRepository) ListActiveByClient(ctx context.Context, clientID uint) ([]model.Route, error) {
	var routes []model.Route
	err := GetDB(ctx, r.db).
		Where("client_id = ? AND status = ?", clientID, model.StatusActive).
		Order("name asc").
		Find(&routes).Error
	return routes, err
}
