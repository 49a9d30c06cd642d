package repository

import (
	"context"
	"time"

	"frota/internal/model"

	"gorm.io/gorm"
)

// ClientFilter narrows the client list.
type ClientFilter struct {
	Search string
	Status model.RecordStatus
	Page   int
	Limit  int
}

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	// Update writes the client's own columns when the stored version matches and bumps it.
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]model.Client, int64, error)

	ListCostCenters(ctx context.Context, clientID uint) ([]model.CostCenter, error)
	CreateCostCenter(ctx context.Context, cc *model.CostCenter) error
	UpdateCostCenter(ctx context.Context, cc *model.CostCenter) error
	DeleteCostCenter(ctx context.Context, id uint) error

	ListAuthorizedUsers(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error)
	CreateAuthorizedUser(ctx context.Context, u *model.AuthorizedUser) error
	UpdateAuthorizedUser(ctx context.Context, u *model.AuthorizedUser) error
	DeleteAuthorizedUser(ctx context.Context, id uint) error

	// ListRequesters returns active authorized users allowed to book rides.
	ListRequesters(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error)
	// ListRiders returns active authorized users allowed to ride.
	ListRiders(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error)
	FindAuthorizedUser(ctx context.Context, id uint) (*model.AuthorizedUser, error)
	FindCostCenter(ctx context.Context, id uint) (*model.CostCenter, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	client.Version = 1
	return GetDB(ctx, r.db).Omit("CostCenters", "AuthorizedUsers", "Routes").Create(client).Error
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	db := GetDB(ctx, r.db)
	res := db.Model(&model.Client{}).
		Where("id = ? AND version = ?", client.ID, client.Version).
		Updates(map[string]interface{}{
			"name":        client.Name,
			"tax_id":      client.TaxID,
			"email":       client.Email,
			"status":      client.Status,
			"phone1":      client.Phone1,
			"phone2":      client.Phone2,
			"street":      client.Street,
			"number":      client.Number,
			"complement":  client.Complement,
			"district":    client.District,
			"postal_code": client.PostalCode,
			"state":       client.State,
			"city":        client.City,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return versionMiss(db, &model.Client{}, client.ID, "client")
	}
	client.Version++
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	err := GetDB(ctx, r.db).
		Preload("CostCenters", func(db *gorm.DB) *gorm.DB { return db.Order("code asc") }).
		Preload("AuthorizedUsers", func(db *gorm.DB) *gorm.DB { return db.Order("name asc") }).
		First(&client, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "client")
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	filtered := func() *gorm.DB {
		query := GetDB(ctx, r.db).Model(&model.Client{})
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			query = query.Where("name ILIKE ? OR tax_id ILIKE ? OR email ILIKE ?", like, like, like)
		}
		return query
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := filtered().Order("name asc").Offset(offset).Limit(filter.Limit).Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

func (r *clientRepository) ListCostCenters(ctx context.Context, clientID uint) ([]model.CostCenter, error) {
	var rows []model.CostCenter
	err := GetDB(ctx, r.db).Where("client_id = ?", clientID).Order("code asc").Find(&rows).Error
	return rows, err
}

func (r *clientRepository) CreateCostCenter(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Create(cc).Error
}

func (r *clientRepository) UpdateCostCenter(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Model(&model.CostCenter{ID: cc.ID}).
		Select("code", "description").
		Updates(cc).Error
}

func (r *clientRepository) DeleteCostCenter(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CostCenter{}).Error
}

func (r *clientRepository) ListAuthorizedUsers(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	var rows []model.AuthorizedUser
	err := GetDB(ctx, r.db).Where("client_id = ?", clientID).Order("name asc").Find(&rows).Error
	return rows, err
}

func (r *clientRepository) CreateAuthorizedUser(ctx context.Context, u *model.AuthorizedUser) error {
	return GetDB(ctx, r.db).Create(u).Error
}

func (r *clientRepository) UpdateAuthorizedUser(ctx context.Context, u *model.AuthorizedUser) error {
	return GetDB(ctx, r.db).Model(&model.AuthorizedUser{ID: u.ID}).
		Select("name", "employee_code", "requester_type", "status", "phone1", "phone2", "email").
		Updates(u).Error
}

func (r *clientRepository) DeleteAuthorizedUser(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.AuthorizedUser{}).Error
}

func (r *clientRepository) ListRequesters(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	return r.listByType(ctx, clientID, model.RequesterTypeRequester, model.RequesterTypeBoth)
}

func (r *clientRepository) ListRiders(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	return r.listByType(ctx, clientID, model.RequesterTypeRider, model.RequesterTypeBoth)
}

func (r *clientRepository) listByType(ctx context.Context, clientID uint, types ...model.RequesterType) ([]model.AuthorizedUser, error) {
	var rows []model.AuthorizedUser
	err := GetDB(ctx, r.db).
		Where("client_id = ? AND status = ? AND requester_type IN ?", clientID, model.StatusActive, types).
		Order("name asc").
		Find(&rows).Error
	return rows, err
}

func (r *clientRepository) FindAuthorizedUser(ctx context.Context, id uint) (*model.AuthorizedUser, error) {
	var u model.AuthorizedUser
	if err := GetDB(ctx, r.db).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "authorized user")
	}
	return &u, nil
}

func (r *clientRepository) FindCostCenter(ctx context.Context, id uint) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := GetDB(ctx, r.db).First(&cc, "id = ?", id).Error; err != nil {
		return nil, translate(err, "cost center")
	}
	return &cc, nil
}
