package repository

import (
	"context"

	"frota/internal/model"

	"gorm.io/gorm"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	Update(ctx context.Context, unit *model.Unit) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Unit, error)
	List(ctx context.Context, search string, status model.RecordStatus, page, limit int) ([]model.Unit, int64, error)
}

type unitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *model.Unit) error {
	return GetDB(ctx, r.db).Create(unit).Error
}

func (r *unitRepository) Update(ctx context.Context, unit *model.Unit) error {
	return GetDB(ctx, r.db).Model(&model.Unit{ID: unit.ID}).
		Select("name", "tax_id", "nickname", "phone", "status", "vehicle_description", "plate", "device_id", "commission_percent").
		Updates(unit).Error
}

func (r *unitRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Unit{}).Error
}

func (r *unitRepository) FindByID(ctx context.Context, id uint) (*model.Unit, error) {
	var unit model.Unit
	if err := GetDB(ctx, r.db).First(&unit, "id = ?", id).Error; err != nil {
		return nil, translate(err, "unit")
	}
	return &unit, nil
}

func (r *unitRepository) List(ctx context.Context, search string, status model.RecordStatus, page, limit int) ([]model.Unit, int64, error) {
	var units []model.Unit
	var total int64

	filtered := func() *gorm.DB {
		query := GetDB(ctx, r.db).Model(&model.Unit{})
		if status != "" {
			query = query.Where("status = ?", status)
		}
		if search != "" {
			like := "%" + search + "%"
			query = query.Where("name ILIKE ? OR nickname ILIKE ? OR plate ILIKE ?", like, like, like)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := filtered().Order("name asc").Offset(offset).Limit(limit).Find(&units).Error; err != nil {
		return nil, 0, err
	}

	return units, total, nil
}
