package repository

import (
	"context"
	"time"

	"frota/internal/model"

	"gorm.io/gorm"
)

// RideFilter narrows ride listings. From and To bound scheduled_at inclusively.
type RideFilter struct {
	From     time.Time
	To       time.Time
	ClientID uint
	UnitID   uint
	Status   model.RideStatus
	Page     int
	Limit    int
}

type RideRepository interface {
	Create(ctx context.Context, ride *model.Ride) error
	// Update writes the ride when the stored version matches and bumps it.
	Update(ctx context.Context, ride *model.Ride) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Ride, error)
	// FindDetailed loads every association needed to describe the ride.
	FindDetailed(ctx context.Context, id uint) (*model.Ride, error)
	List(ctx context.Context, filter RideFilter) ([]model.Ride, int64, error)
	// ListForReport returns all matching rides ordered by scheduled time, unpaginated.
	ListForReport(ctx context.Context, from, to time.Time, clientID uint) ([]model.Ride, error)

	ReferencesCostCenter(ctx context.Context, id uint) (bool, error)
	ReferencesAuthorizedUser(ctx context.Context, id uint) (bool, error)
	ReferencesRoute(ctx context.Context, id uint) (bool, error)
	ReferencesUnit(ctx context.Context, id uint) (bool, error)
	ReferencesClient(ctx context.Context, id uint) (bool, error)
}

type rideRepository struct {
	db *gorm.DB
}

func NewRideRepository(db *gorm.DB) RideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) Create(ctx context.Context, ride *model.Ride) error {
	ride.Version = 1
	return GetDB(ctx, r.db).
		Omit("Client", "Requester", "Rider", "Route", "Unit", "CostCenter").
		Create(ride).Error
}

func (r *rideRepository) Update(ctx context.Context, ride *model.Ride) error {
	db := GetDB(ctx, r.db)
	values := map[string]interface{}{
		"client_id":      ride.ClientID,
		"requester_id":   ride.RequesterID,
		"rider_id":       ride.RiderID,
		"fare_type":      ride.FareType,
		"start_address":  ride.StartAddress,
		"end_address":    ride.EndAddress,
		"start_km":       ride.StartKm,
		"end_km":         ride.EndKm,
		"route_id":       ride.RouteID,
		"scheduled_at":   ride.ScheduledAt,
		"unit_id":        ride.UnitID,
		"price":          ride.Price,
		"note":           ride.Note,
		"status":         ride.Status,
		"cost_center_id": ride.CostCenterID,
		"version":        gorm.Expr("version + 1"),
		"updated_at":     time.Now(),
	}
	res := db.Model(&model.Ride{}).Where("id = ? AND version = ?", ride.ID, ride.Version).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return versionMiss(db, &model.Ride{}, ride.ID, "ride")
	}
	ride.Version++
	return nil
}

func (r *rideRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Ride{}).Error
}

func (r *rideRepository) FindByID(ctx context.Context, id uint) (*model.Ride, error) {
	var ride model.Ride
	if err := GetDB(ctx, r.db).First(&ride, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ride")
	}
	return &ride, nil
}

func (r *rideRepository) FindDetailed(ctx context.Context, id uint) (*model.Ride, error) {
	var ride model.Ride
	if err := withDetails(GetDB(ctx, r.db)).First(&ride, "id = ?", id).Error; err != nil {
		return nil, translate(err, "ride")
	}
	return &ride, nil
}

func (r *rideRepository) List(ctx context.Context, filter RideFilter) ([]model.Ride, int64, error) {
	var rides []model.Ride
	var total int64

	filtered := func() *gorm.DB {
		query := GetDB(ctx, r.db).Model(&model.Ride{})
		if !filter.From.IsZero() {
			query = query.Where("scheduled_at >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			query = query.Where("scheduled_at <= ?", filter.To)
		}
		if filter.ClientID > 0 {
			query = query.Where("client_id = ?", filter.ClientID)
		}
		if filter.UnitID > 0 {
			query = query.Where("unit_id = ?", filter.UnitID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := withDetails(filtered()).Order("scheduled_at desc").Offset(offset).Limit(filter.Limit).Find(&rides).Error; err != nil {
		return nil, 0, err
	}

	return rides, total, nil
}

func (r *rideRepository) ListForReport(ctx context.Context, from, to time.Time, clientID uint) ([]model.Ride, error) {
	var rides []model.Ride
	query := withDetails(GetDB(ctx, r.db)).Where("scheduled_at >= ? AND scheduled_at <= ?", from, to)
	if clientID > 0 {
		query = query.Where("client_id = ?", clientID)
	}
	if err := query.Order("scheduled_at asc").Find(&rides).Error; err != nil {
		return nil, err
	}
	return rides, nil
}

func (r *rideRepository) ReferencesCostCenter(ctx context.Context, id uint) (bool, error) {
	return r.referenced(ctx, "cost_center_id", id)
}

// ReferencesAuthorizedUser checks both the requester and the rider columns.
func (r *rideRepository) ReferencesAuthorizedUser(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Ride{}).
		Where("requester_id = ? OR rider_id = ?", id, id).
		Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *rideRepository) ReferencesRoute(ctx context.Context, id uint) (bool, error) {
	return r.referenced(ctx, "route_id", id)
}

func (r *rideRepository) ReferencesUnit(ctx context.Context, id uint) (bool, error) {
	return r.referenced(ctx, "unit_id", id)
}

func (r *rideRepository) ReferencesClient(ctx context.Context, id uint) (bool, error) {
	return r.referenced(ctx, "client_id", id)
}

func (r *rideRepository) referenced(ctx context.Context, column string, id uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Ride{}).Where(column+" = ?", id).Limit(1).Count(&count).Error
	return count > 0, err
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Client").
		Preload("Requester").
		Preload("Rider").
		Preload("Route").
		Preload("Unit").
		Preload("CostCenter")
}
