package service

import (
	"context"
	"strings"

	"frota/internal/apperr"
	"frota/internal/model"
	"frota/internal/repository"

	"github.com/shopspring/decimal"
)

var maxCommission = decimal.NewFromInt(100)

type UnitRequest struct {
	Name               string          `json:"name" binding:"required,max=50"`
	TaxID              string          `json:"tax_id" binding:"max=14"`
	Nickname           string          `json:"nickname" binding:"max=10"`
	Phone              string          `json:"phone" binding:"max=15"`
	Status             string          `json:"status"`
	VehicleDescription string          `json:"vehicle_description" binding:"max=20"`
	Plate              string          `json:"plate" binding:"max=8"`
	DeviceID           string          `json:"device_id" binding:"max=50"`
	CommissionPercent  decimal.Decimal `json:"commission_percent"`
}

type UnitService interface {
	ListUnits(ctx context.Context, search, status string, page, limit int) ([]model.Unit, int64, error)
	GetUnit(ctx context.Context, id uint) (*model.Unit, error)
	CreateUnit(ctx context.Context, req UnitRequest) (*model.Unit, error)
	UpdateUnit(ctx context.Context, id uint, req UnitRequest) (*model.Unit, error)
	DeleteUnit(ctx context.Context, id uint) error
}

type unitService struct {
	repo      repository.UnitRepository
	rides     repository.RideRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
}

func NewUnitService(repo repository.UnitRepository, rides repository.RideRepository, audit repository.AuditRepository, txManager repository.TransactionManager) UnitService {
	return &unitService{repo: repo, rides: rides, audit: audit, txManager: txManager}
}

func (s *unitService) ListUnits(ctx context.Context, search, status string, page, limit int) ([]model.Unit, int64, error) {
	page, limit = normalizePage(page, limit, 20)
	var parsed model.RecordStatus
	if status != "" {
		if parsed = model.ParseRecordStatus(status); parsed == "" {
			return nil, 0, apperr.Validation("unknown status %q", status)
		}
	}
	return s.repo.List(ctx, strings.TrimSpace(search), parsed, page, limit)
}

func (s *unitService) GetUnit(ctx context.Context, id uint) (*model.Unit, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *unitService) CreateUnit(ctx context.Context, req UnitRequest) (*model.Unit, error) {
	unit := &model.Unit{}
	if err := applyUnitFields(unit, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, unit); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionCreateUnit, unit.ID, unit.DisplayName(), nil)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *unitService) UpdateUnit(ctx context.Context, id uint, req UnitRequest) (*model.Unit, error) {
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyUnitFields(unit, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, unit); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionUpdateUnit, unit.ID, unit.DisplayName(), nil)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *unitService) DeleteUnit(ctx context.Context, id uint) error {
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.rides.ReferencesUnit(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.Blocked("unit %q has rides and cannot be deleted; set it inactive instead", unit.DisplayName())
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionDeleteUnit, id, unit.DisplayName(), nil)
	})
}

func applyUnitFields(unit *model.Unit, req UnitRequest) error {
	status, ok := statusOrDefault(req.Status)
	if !ok {
		return apperr.Validation("unknown status %q", req.Status)
	}
	if req.CommissionPercent.IsNegative() || req.CommissionPercent.GreaterThan(maxCommission) {
		return apperr.Validation("commission must be between 0 and 100")
	}

	unit.Name = strings.TrimSpace(req.Name)
	unit.TaxID = strings.TrimSpace(req.TaxID)
	unit.Nickname = strings.TrimSpace(req.Nickname)
	unit.Phone = strings.TrimSpace(req.Phone)
	unit.Status = status
	unit.VehicleDescription = strings.TrimSpace(req.VehicleDescription)
	unit.Plate = strings.ToUpper(strings.TrimSpace(req.Plate))
	unit.DeviceID = strings.TrimSpace(req.DeviceID)
	unit.CommissionPercent = req.CommissionPercent.Round(2)
	return nil
}
