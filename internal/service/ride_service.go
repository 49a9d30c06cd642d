package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"frota/internal/apperr"
	"frota/internal/logging"
	"frota/internal/model"
	"frota/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ride events pushed to the live board.
const (
	RideEventCreated   = "ride.created"
	RideEventUpdated   = "ride.updated"
	RideEventCompleted = "ride.completed"
	RideEventDeleted   = "ride.deleted"
)

type SaveRideRequest struct {
	ClientID     uint             `json:"client_id" binding:"required"`
	RequesterID  uint             `json:"requester_id" binding:"required"`
	RiderID      *uint            `json:"rider_id"`
	FareType     string           `json:"fare_type" binding:"required"`
	StartAddress *string          `json:"start_address" binding:"omitempty,max=200"`
	EndAddress   *string          `json:"end_address" binding:"omitempty,max=200"`
	StartKm      *decimal.Decimal `json:"start_km"`
	EndKm        *decimal.Decimal `json:"end_km"`
	RouteID      *uint            `json:"route_id"`
	ScheduledAt  time.Time        `json:"scheduled_at" binding:"required"`
	UnitID       uint             `json:"unit_id" binding:"required"`
	Price        decimal.Decimal  `json:"price"`
	Note         *string          `json:"note"`
	Status       string           `json:"status"`
	CostCenterID *uint            `json:"cost_center_id"`
	Version      int              `json:"version"`
}

type RideResponse struct {
	ID                    uint             `json:"id"`
	ClientID              uint             `json:"client_id"`
	ClientName            string           `json:"client_name,omitempty"`
	RequesterID           uint             `json:"requester_id"`
	RequesterName         string           `json:"requester_name,omitempty"`
	RiderID               *uint            `json:"rider_id"`
	RiderName             string           `json:"rider_name,omitempty"`
	FareType              model.FareType   `json:"fare_type"`
	StartAddress          *string          `json:"start_address"`
	EndAddress            *string          `json:"end_address"`
	StartKm               *decimal.Decimal `json:"start_km"`
	EndKm                 *decimal.Decimal `json:"end_km"`
	RouteID               *uint            `json:"route_id"`
	RouteName             string           `json:"route_name,omitempty"`
	ScheduledAt           string           `json:"scheduled_at"`
	UnitID                uint             `json:"unit_id"`
	UnitName              string           `json:"unit_name,omitempty"`
	Price                 decimal.Decimal  `json:"price"`
	Note                  *string          `json:"note"`
	Status                model.RideStatus `json:"status"`
	CostCenterID          *uint            `json:"cost_center_id"`
	CostCenterDescription string           `json:"cost_center_description,omitempty"`
	Version               int              `json:"version"`
	CreatedAt             string           `json:"created_at"`
	UpdatedAt             string           `json:"updated_at"`
}

type RideListFilter struct {
	From     time.Time
	To       time.Time
	ClientID uint
	UnitID   uint
	Status   string
	Page     int
	Limit    int
}

type RideService interface {
	ListRides(ctx context.Context, filter RideListFilter) ([]RideResponse, int64, error)
	GetRide(ctx context.Context, id uint) (*RideResponse, error)
	CreateRide(ctx context.Context, req SaveRideRequest) (*RideResponse, error)
	UpdateRide(ctx context.Context, id uint, req SaveRideRequest) (*RideResponse, error)
	MarkCompleted(ctx context.Context, id uint) (*RideResponse, error)
	DeleteRide(ctx context.Context, id uint) error
}

type rideService struct {
	repo      repository.RideRepository
	clients   repository.ClientRepository
	routes    repository.RouteRepository
	units     repository.UnitRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
	notifier  RideCompletionNotifier
	publisher RideEventPublisher
	now       func() time.Time
}

func NewRideService(
	repo repository.RideRepository,
	clients repository.ClientRepository,
	routes repository.RouteRepository,
	units repository.UnitRepository,
	audit repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier RideCompletionNotifier,
	publisher RideEventPublisher,
) RideService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &rideService{
		repo:      repo,
		clients:   clients,
		routes:    routes,
		units:     units,
		audit:     audit,
		txManager: txManager,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

func toRideResponse(ride *model.Ride) RideResponse {
	res := RideResponse{
		ID:           ride.ID,
		ClientID:     ride.ClientID,
		RequesterID:  ride.RequesterID,
		RiderID:      ride.RiderID,
		FareType:     ride.FareType,
		StartAddress: ride.StartAddress,
		EndAddress:   ride.EndAddress,
		StartKm:      ride.StartKm,
		EndKm:        ride.EndKm,
		RouteID:      ride.RouteID,
		ScheduledAt:  ride.ScheduledAt.Format(timeLayout),
		UnitID:       ride.UnitID,
		Price:        ride.Price,
		Note:         ride.Note,
		Status:       ride.Status,
		CostCenterID: ride.CostCenterID,
		Version:      ride.Version,
		CreatedAt:    ride.CreatedAt.Format(timeLayout),
		UpdatedAt:    ride.UpdatedAt.Format(timeLayout),
	}
	if ride.Client != nil {
		res.ClientName = ride.Client.Name
	}
	if ride.Requester != nil {
		res.RequesterName = ride.Requester.Name
	}
	if ride.Rider != nil {
		res.RiderName = ride.Rider.Name
	}
	if ride.Route != nil {
		res.RouteName = ride.Route.Name
	}
	if ride.Unit != nil {
		res.UnitName = ride.Unit.DisplayName()
	}
	if ride.CostCenter != nil {
		res.CostCenterDescription = ride.CostCenter.Description
	}
	return res
}

// ListRides defaults to the current month up to the end of today.
func (s *rideService) ListRides(ctx context.Context, filter RideListFilter) ([]RideResponse, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 50)
	now := s.now()
	from, to := filter.From, filter.To
	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	if to.IsZero() {
		to = endOfDay(now)
	}
	if to.Before(from) {
		return nil, 0, apperr.Validation("end date must not be before start date")
	}

	var status model.RideStatus
	if filter.Status != "" {
		if status = model.ParseRideStatus(filter.Status); status == "" {
			return nil, 0, apperr.Validation("unknown ride status %q", filter.Status)
		}
	}

	rides, total, err := s.repo.List(ctx, repository.RideFilter{
		From:     from,
		To:       to,
		ClientID: filter.ClientID,
		UnitID:   filter.UnitID,
		Status:   status,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]RideResponse, 0, len(rides))
	for i := range rides {
		out = append(out, toRideResponse(&rides[i]))
	}
	return out, total, nil
}

func (s *rideService) GetRide(ctx context.Context, id uint) (*RideResponse, error) {
	ride, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		return nil, err
	}
	res := toRideResponse(ride)
	return &res, nil
}

func (s *rideService) CreateRide(ctx context.Context, req SaveRideRequest) (*RideResponse, error) {
	ride := &model.Ride{}
	if err := s.applyFields(ctx, ride, req); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, ride); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionCreateRide, ride.ID, "", rideAuditDetails(ride))
	})
	if err != nil {
		return nil, err
	}

	return s.afterSave(ctx, ride.ID, RideEventCreated, ride.Status == model.RideStatusCompleted)
}

// UpdateRide saves the ride. The receipt goes out only when this save moves
// the ride into Completed.
func (s *rideService) UpdateRide(ctx context.Context, id uint, req SaveRideRequest) (*RideResponse, error) {
	if req.Version < 1 {
		return nil, apperr.Validation("version is required when updating a ride")
	}
	ride, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := ride.Status
	ride.Version = req.Version
	if err := s.applyFields(ctx, ride, req); err != nil {
		return nil, err
	}
	if previous == model.RideStatusCompleted && ride.Status != model.RideStatusCompleted {
		return nil, apperr.Validation("a completed ride cannot go back to scheduled")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, ride); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionUpdateRide, ride.ID, "", rideAuditDetails(ride))
	})
	if err != nil {
		return nil, err
	}

	completedNow := previous != ride.Status && ride.Status == model.RideStatusCompleted
	event := RideEventUpdated
	if completedNow {
		event = RideEventCompleted
	}
	return s.afterSave(ctx, ride.ID, event, completedNow)
}

// MarkCompleted is idempotent: a ride already completed is returned as is
// and no second receipt is sent.
func (s *rideService) MarkCompleted(ctx context.Context, id uint) (*RideResponse, error) {
	ride, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride.Status == model.RideStatusCompleted {
		return s.GetRide(ctx, id)
	}

	ride.Status = model.RideStatusCompleted
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, ride); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionCompleteRide, ride.ID, "", nil)
	})
	if errors.Is(err, apperr.ErrConcurrencyConflict) {
		current, findErr := s.repo.FindByID(ctx, id)
		if findErr == nil && current.Status == model.RideStatusCompleted {
			return s.GetRide(ctx, id)
		}
	}
	if err != nil {
		return nil, err
	}

	return s.afterSave(ctx, ride.ID, RideEventCompleted, true)
}

func (s *rideService) DeleteRide(ctx context.Context, id uint) error {
	ride, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionDeleteRide, id, "", rideAuditDetails(ride))
	})
	if err != nil {
		return err
	}

	s.publisher.PublishRideEvent(RideEventDeleted, toRideResponse(ride))
	return nil
}

// afterSave runs once the transaction has committed: reload, notify, publish.
func (s *rideService) afterSave(ctx context.Context, id uint, event string, notify bool) (*RideResponse, error) {
	saved, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		return nil, err
	}

	if notify && s.notifier != nil {
		if err := s.notifier.RideCompleted(context.WithoutCancel(ctx), saved); err != nil {
			logging.Warn("ride saved without receipt", zap.Uint("ride_id", id), zap.Error(err))
		}
	}

	res := toRideResponse(saved)
	s.publisher.PublishRideEvent(event, res)
	return &res, nil
}

func (s *rideService) applyFields(ctx context.Context, ride *model.Ride, req SaveRideRequest) error {
	fareType := model.ParseFareType(req.FareType)
	if fareType == "" {
		return apperr.Validation("unknown fare type %q", req.FareType)
	}
	status := model.RideStatusScheduled
	if req.Status != "" {
		if status = model.ParseRideStatus(req.Status); status == "" {
			return apperr.Validation("unknown ride status %q", req.Status)
		}
	}
	if req.ScheduledAt.IsZero() {
		return apperr.Validation("scheduled_at is required")
	}
	if (req.StartKm != nil && req.StartKm.IsNegative()) || (req.EndKm != nil && req.EndKm.IsNegative()) {
		return apperr.Validation("odometer readings cannot be negative")
	}
	if req.StartKm != nil && req.EndKm != nil && req.EndKm.LessThan(*req.StartKm) {
		return apperr.Validation("end km must not be less than start km")
	}
	if req.Price.IsNegative() {
		return apperr.Validation("price cannot be negative")
	}

	if err := s.checkParticipants(ctx, req); err != nil {
		return err
	}
	if _, err := s.units.FindByID(ctx, req.UnitID); err != nil {
		return asValidation(err, "unit %d does not exist", req.UnitID)
	}

	ride.ClientID = req.ClientID
	ride.RequesterID = req.RequesterID
	ride.RiderID = nonZero(req.RiderID)
	ride.FareType = fareType
	ride.StartAddress = trimmed(req.StartAddress)
	ride.EndAddress = trimmed(req.EndAddress)
	ride.StartKm = req.StartKm
	ride.EndKm = req.EndKm
	ride.RouteID = nonZero(req.RouteID)
	ride.ScheduledAt = req.ScheduledAt
	ride.UnitID = req.UnitID
	ride.Note = trimmed(req.Note)
	ride.Status = status
	ride.CostCenterID = nonZero(req.CostCenterID)

	price, err := s.resolveFare(ctx, ride, req.Price)
	if err != nil {
		return err
	}
	ride.Price = price
	return nil
}

// resolveFare returns the route's current fixed price for route fares and
// the submitted price otherwise.
func (s *rideService) resolveFare(ctx context.Context, ride *model.Ride, submitted decimal.Decimal) (decimal.Decimal, error) {
	if ride.FareType != model.FareTypeRoute || ride.RouteID == nil {
		return submitted.Round(2), nil
	}

	route, err := s.routes.FindByID(ctx, *ride.RouteID)
	if err != nil {
		return decimal.Zero, asValidation(err, "route %d does not exist", *ride.RouteID)
	}
	if route.ClientID != ride.ClientID {
		return decimal.Zero, apperr.Validation("route %q does not belong to the ride's client", route.Name)
	}
	return route.FixedPrice, nil
}

// checkParticipants verifies that requester, rider and cost center all belong
// to the ride's client and that each person may play their part.
func (s *rideService) checkParticipants(ctx context.Context, req SaveRideRequest) error {
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		return asValidation(err, "client %d does not exist", req.ClientID)
	}

	requester, err := s.clients.FindAuthorizedUser(ctx, req.RequesterID)
	if err != nil {
		return asValidation(err, "requester %d does not exist", req.RequesterID)
	}
	if requester.ClientID != req.ClientID {
		return apperr.Validation("requester %q does not belong to the ride's client", requester.Name)
	}
	if !requester.RequesterType.CanRequest() {
		return apperr.Validation("%q is not allowed to request rides", requester.Name)
	}

	if id := nonZero(req.RiderID); id != nil {
		rider, err := s.clients.FindAuthorizedUser(ctx, *id)
		if err != nil {
			return asValidation(err, "rider %d does not exist", *id)
		}
		if rider.ClientID != req.ClientID {
			return apperr.Validation("rider %q does not belong to the ride's client", rider.Name)
		}
		if !rider.RequesterType.CanRide() {
			return apperr.Validation("%q is not allowed to ride", rider.Name)
		}
	}

	if id := nonZero(req.CostCenterID); id != nil {
		cc, err := s.clients.FindCostCenter(ctx, *id)
		if err != nil {
			return asValidation(err, "cost center %d does not exist", *id)
		}
		if cc.ClientID != req.ClientID {
			return apperr.Validation("cost center %q does not belong to the ride's client", cc.Code)
		}
	}
	return nil
}

func rideAuditDetails(ride *model.Ride) map[string]interface{} {
	return map[string]interface{}{
		"client_id": ride.ClientID,
		"status":    ride.Status,
		"fare_type": ride.FareType,
		"price":     ride.Price.StringFixed(2),
	}
}

// asValidation turns a missing reference into a validation error.
func asValidation(err error, format string, args ...interface{}) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation(format, args...)
	}
	return err
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
