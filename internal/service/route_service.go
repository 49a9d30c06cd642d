package service

import (
	"context"
	"errors"
	"strings"

	"frota/internal/apperr"
	"frota/internal/model"
	"frota/internal/repository"

	"github.com/shopspring/decimal"
)

type RouteRequest struct {
	ClientID               uint            `json:"client_id" binding:"required"`
	Name                   string          `json:"name" binding:"required,max=15"`
	OriginDescription      string          `json:"origin_description" binding:"required,max=100"`
	DestinationDescription string          `json:"destination_description" binding:"required,max=100"`
	FixedPrice             decimal.Decimal `json:"fixed_price"`
	Status                 string          `json:"status"`
}

type RouteService interface {
	ListRoutes(ctx context.Context, clientID uint, page, limit int) ([]model.Route, int64, error)
	GetRoute(ctx context.Context, id uint) (*model.Route, error)
	CreateRoute(ctx context.Context, req RouteRequest) (*model.Route, error)
	UpdateRoute(ctx context.Context, id uint, req RouteRequest) (*model.Route, error)
	DeleteRoute(ctx context.Context, id uint) error
}

type routeService struct {
	repo      repository.RouteRepository
	clients   repository.ClientRepository
	rides     repository.RideRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
}

func NewRouteService(repo repository.RouteRepository, clients repository.ClientRepository, rides repository.RideRepository, audit repository.AuditRepository, txManager repository.TransactionManager) RouteService {
	return &routeService{repo: repo, clients: clients, rides: rides, audit: audit, txManager: txManager}
}

func (s *routeService) ListRoutes(ctx context.Context, clientID uint, page, limit int) ([]model.Route, int64, error) {
	page, limit = normalizePage(page, limit, 20)
	return s.repo.List(ctx, clientID, page, limit)
}

func (s *routeService) GetRoute(ctx context.Context, id uint) (*model.Route, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *routeService) CreateRoute(ctx context.Context, req RouteRequest) (*model.Route, error) {
	route := &model.Route{}
	if err := s.applyFields(ctx, route, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, route); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionCreateRoute, route.ID, route.Name, map[string]interface{}{
			"client_id":   route.ClientID,
			"fixed_price": route.FixedPrice.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return route, nil
}

// UpdateRoute changes the route. Rides already saved keep their price until they are saved again.
func (s *routeService) UpdateRoute(ctx context.Context, id uint, req RouteRequest) (*model.Route, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyFields(ctx, route, req); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, route); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionUpdateRoute, route.ID, route.Name, map[string]interface{}{
			"client_id":   route.ClientID,
			"fixed_price": route.FixedPrice.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return route, nil
}

func (s *routeService) DeleteRoute(ctx context.Context, id uint) error {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.rides.ReferencesRoute(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.Blocked("route %q is used by rides and cannot be deleted; set it inactive instead", route.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionDeleteRoute, id, route.Name, nil)
	})
}

func (s *routeService) applyFields(ctx context.Context, route *model.Route, req RouteRequest) error {
	status, ok := statusOrDefault(req.Status)
	if !ok {
		return apperr.Validation("unknown status %q", req.Status)
	}
	if req.FixedPrice.IsNegative() {
		return apperr.Validation("fixed price cannot be negative")
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("client %d does not exist", req.ClientID)
		}
		return err
	}

	route.ClientID = req.ClientID
	route.Name = strings.TrimSpace(req.Name)
	route.OriginDescription = strings.TrimSpace(req.OriginDescription)
	route.DestinationDescription = strings.TrimSpace(req.DestinationDescription)
	route.FixedPrice = req.FixedPrice.Round(2)
	route.Status = status
	return nil
}
