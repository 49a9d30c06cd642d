package service

import (
	"context"
	"strings"

	"frota/internal/apperr"
	"frota/internal/logging"
	"frota/internal/model"
	"frota/internal/reconcile"
	"frota/internal/repository"

	"go.uber.org/zap"
)

const (
	collectionCostCenters     = "cost_centers"
	collectionAuthorizedUsers = "authorized_users"
)

type CostCenterPayload struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type AuthorizedUserPayload struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	EmployeeCode  string `json:"employee_code"`
	RequesterType string `json:"requester_type"`
	Status        string `json:"status"`
	Phone1        string `json:"phone1"`
	Phone2        string `json:"phone2"`
	Email         string `json:"email"`
}

// ClientRequest is the full client form. Child rows are validated one by one
// during reconciliation, so they carry no binding tags.
type ClientRequest struct {
	Name            string                  `json:"name" binding:"required,max=100"`
	TaxID           string                  `json:"tax_id" binding:"max=18"`
	Email           string                  `json:"email" binding:"omitempty,email,max=100"`
	Status          string                  `json:"status"`
	Phone1          string                  `json:"phone1" binding:"max=20"`
	Phone2          string                  `json:"phone2" binding:"max=20"`
	Street          string                  `json:"street" binding:"max=200"`
	Number          string                  `json:"number" binding:"max=10"`
	Complement      string                  `json:"complement" binding:"max=50"`
	District        string                  `json:"district" binding:"max=100"`
	PostalCode      string                  `json:"postal_code" binding:"max=9"`
	State           string                  `json:"state" binding:"max=2"`
	City            string                  `json:"city" binding:"max=100"`
	Version         int                     `json:"version"`
	CostCenters     []CostCenterPayload     `json:"cost_centers"`
	AuthorizedUsers []AuthorizedUserPayload `json:"authorized_users"`
}

type ClientResponse struct {
	*model.Client
	Warnings []ChildWarning `json:"warnings,omitempty"`
}

type ClientListFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

type ClientService interface {
	ListClients(ctx context.Context, filter ClientListFilter) ([]model.Client, int64, error)
	GetClient(ctx context.Context, id uint) (*model.Client, error)
	CreateClient(ctx context.Context, req ClientRequest) (*ClientResponse, error)
	UpdateClient(ctx context.Context, id uint, req ClientRequest) (*ClientResponse, error)
	DeleteClient(ctx context.Context, id uint) error

	Requesters(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error)
	Riders(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error)
	CostCenters(ctx context.Context, clientID uint) ([]model.CostCenter, error)
	ActiveRoutes(ctx context.Context, clientID uint) ([]model.Route, error)
}

type clientService struct {
	repo      repository.ClientRepository
	rides     repository.RideRepository
	routes    repository.RouteRepository
	audit     repository.AuditRepository
	txManager repository.TransactionManager
}

func NewClientService(repo repository.ClientRepository, rides repository.RideRepository, routes repository.RouteRepository, audit repository.AuditRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{repo: repo, rides: rides, routes: routes, audit: audit, txManager: txManager}
}

func (s *clientService) ListClients(ctx context.Context, filter ClientListFilter) ([]model.Client, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 20)
	var status model.RecordStatus
	if filter.Status != "" {
		status = model.ParseRecordStatus(filter.Status)
		if status == "" {
			return nil, 0, apperr.Validation("unknown status %q", filter.Status)
		}
	}
	return s.repo.List(ctx, repository.ClientFilter{
		Search: strings.TrimSpace(filter.Search),
		Status: status,
		Page:   page,
		Limit:  limit,
	})
}

func (s *clientService) GetClient(ctx context.Context, id uint) (*model.Client, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *clientService) CreateClient(ctx context.Context, req ClientRequest) (*ClientResponse, error) {
	client := &model.Client{}
	if err := applyClientFields(client, req); err != nil {
		return nil, err
	}

	var warnings []ChildWarning
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, client); err != nil {
			return err
		}

		w, err := s.reconcileChildren(txCtx, client.ID, req)
		if err != nil {
			return err
		}
		warnings = w

		return recordAudit(txCtx, s.audit, model.ActionCreateClient, client.ID, client.Name, auditChildWarnings(warnings))
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, client.ID, warnings)
}

// UpdateClient saves the client under optimistic locking and reconciles both
// child collections in the same transaction.
func (s *clientService) UpdateClient(ctx context.Context, id uint, req ClientRequest) (*ClientResponse, error) {
	if req.Version < 1 {
		return nil, apperr.Validation("version is required when updating a client")
	}
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client.Version = req.Version
	if err := applyClientFields(client, req); err != nil {
		return nil, err
	}

	var warnings []ChildWarning
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, client); err != nil {
			return err
		}

		w, err := s.reconcileChildren(txCtx, client.ID, req)
		if err != nil {
			return err
		}
		warnings = w

		return recordAudit(txCtx, s.audit, model.ActionUpdateClient, client.ID, client.Name, auditChildWarnings(warnings))
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, client.ID, warnings)
}

func (s *clientService) DeleteClient(ctx context.Context, id uint) error {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.rides.ReferencesClient(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperr.Blocked("client %q has rides and cannot be deleted; set it inactive instead", client.Name)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return err
		}
		return recordAudit(txCtx, s.audit, model.ActionDeleteClient, id, client.Name, nil)
	})
}

func (s *clientService) Requesters(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	return s.repo.ListRequesters(ctx, clientID)
}

func (s *clientService) Riders(ctx context.Context, clientID uint) ([]model.AuthorizedUser, error) {
	return s.repo.ListRiders(ctx, clientID)
}

func (s *clientService) CostCenters(ctx context.Context, clientID uint) ([]model.CostCenter, error) {
	return s.repo.ListCostCenters(ctx, clientID)
}

func (s *clientService) ActiveRoutes(ctx context.Context, clientID uint) ([]model.Route, error) {
	return s.routes.ListActiveByClient(ctx, clientID)
}

func (s *clientService) reload(ctx context.Context, id uint, warnings []ChildWarning) (*ClientResponse, error) {
	saved, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientResponse{Client: saved, Warnings: warnings}, nil
}

func (s *clientService) reconcileChildren(ctx context.Context, clientID uint, req ClientRequest) ([]ChildWarning, error) {
	ccWarnings, err := s.reconcileCostCenters(ctx, clientID, req.CostCenters)
	if err != nil {
		return nil, err
	}
	auWarnings, err := s.reconcileAuthorizedUsers(ctx, clientID, req.AuthorizedUsers)
	if err != nil {
		return nil, err
	}
	return append(ccWarnings, auWarnings...), nil
}

func (s *clientService) reconcileCostCenters(ctx context.Context, clientID uint, posted []CostCenterPayload) ([]ChildWarning, error) {
	stored, err := s.repo.ListCostCenters(ctx, clientID)
	if err != nil {
		return nil, err
	}

	existing := make([]reconcile.PersistedRow[reconcile.CostCenterRow], 0, len(stored))
	for _, cc := range stored {
		existing = append(existing, reconcile.PersistedRow[reconcile.CostCenterRow]{ID: cc.ID, Values: reconcile.CostCenterRowOf(cc)})
	}

	rows := make([]reconcile.RowInput[reconcile.CostCenterRow], 0, len(posted))
	for _, p := range posted {
		rows = append(rows, reconcile.RowInput[reconcile.CostCenterRow]{
			ID: p.ID,
			Values: reconcile.CostCenterRow{
				Code:        strings.TrimSpace(p.Code),
				Description: strings.TrimSpace(p.Description),
			},
		})
	}

	plan, err := reconcile.Reconcile(ctx, rows, existing, s.rides.ReferencesCostCenter)
	if err != nil {
		return nil, err
	}

	return applyPlan(ctx, s.txManager, collectionCostCenters, plan,
		func(ctx context.Context, row reconcile.RowInput[reconcile.CostCenterRow]) error {
			cc := &model.CostCenter{ID: row.ID, ClientID: clientID}
			row.Values.Apply(cc)
			return s.repo.UpdateCostCenter(ctx, cc)
		},
		func(ctx context.Context, values reconcile.CostCenterRow) error {
			cc := &model.CostCenter{ClientID: clientID}
			values.Apply(cc)
			return s.repo.CreateCostCenter(ctx, cc)
		},
		s.repo.DeleteCostCenter,
	), nil
}

func (s *clientService) reconcileAuthorizedUsers(ctx context.Context, clientID uint, posted []AuthorizedUserPayload) ([]ChildWarning, error) {
	stored, err := s.repo.ListAuthorizedUsers(ctx, clientID)
	if err != nil {
		return nil, err
	}

	existing := make([]reconcile.PersistedRow[reconcile.AuthorizedUserRow], 0, len(stored))
	for _, u := range stored {
		existing = append(existing, reconcile.PersistedRow[reconcile.AuthorizedUserRow]{ID: u.ID, Values: reconcile.AuthorizedUserRowOf(u)})
	}

	rows := make([]reconcile.RowInput[reconcile.AuthorizedUserRow], 0, len(posted))
	for _, p := range posted {
		rows = append(rows, reconcile.RowInput[reconcile.AuthorizedUserRow]{
			ID: p.ID,
			Values: reconcile.AuthorizedUserRow{
				Name:          strings.TrimSpace(p.Name),
				EmployeeCode:  strings.TrimSpace(p.EmployeeCode),
				RequesterType: model.ParseRequesterType(p.RequesterType),
				Status:        model.ParseRecordStatus(p.Status),
				Phone1:        strings.TrimSpace(p.Phone1),
				Phone2:        strings.TrimSpace(p.Phone2),
				Email:         strings.TrimSpace(p.Email),
			},
		})
	}

	plan, err := reconcile.Reconcile(ctx, rows, existing, s.rides.ReferencesAuthorizedUser)
	if err != nil {
		return nil, err
	}

	return applyPlan(ctx, s.txManager, collectionAuthorizedUsers, plan,
		func(ctx context.Context, row reconcile.RowInput[reconcile.AuthorizedUserRow]) error {
			u := &model.AuthorizedUser{ID: row.ID, ClientID: clientID}
			row.Values.Apply(u)
			return s.repo.UpdateAuthorizedUser(ctx, u)
		},
		func(ctx context.Context, values reconcile.AuthorizedUserRow) error {
			u := &model.AuthorizedUser{ClientID: clientID}
			values.Apply(u)
			return s.repo.CreateAuthorizedUser(ctx, u)
		},
		s.repo.DeleteAuthorizedUser,
	), nil
}

// applyPlan runs every child write in its own savepoint. A failed write is
// rolled back alone and reported as a warning; the parent save goes on.
func applyPlan[T any](
	ctx context.Context,
	txManager repository.TransactionManager,
	collection string,
	plan reconcile.Plan[T],
	update func(context.Context, reconcile.RowInput[T]) error,
	insert func(context.Context, T) error,
	remove func(context.Context, uint) error,
) []ChildWarning {
	var warnings []ChildWarning

	for _, sk := range plan.Skipped {
		index := sk.Index
		logging.Warn("child row skipped",
			zap.String("collection", collection), zap.Int("index", sk.Index),
			zap.Uint("id", sk.ID), zap.String("reason", sk.Reason))
		warnings = append(warnings, ChildWarning{Collection: collection, Index: &index, ID: sk.ID, Reason: sk.Reason})
	}

	fail := func(op string, id uint, err error) {
		logging.Warn("child row write failed",
			zap.String("collection", collection), zap.String("op", op),
			zap.Uint("id", id), zap.Error(err))
		warnings = append(warnings, ChildWarning{Collection: collection, ID: id, Reason: op + " failed"})
	}

	for _, row := range plan.Updates {
		err := txManager.RunInTx(ctx, func(spCtx context.Context) error { return update(spCtx, row) })
		if err != nil {
			fail("update", row.ID, err)
		}
	}
	for _, values := range plan.Inserts {
		err := txManager.RunInTx(ctx, func(spCtx context.Context) error { return insert(spCtx, values) })
		if err != nil {
			fail("insert", 0, err)
		}
	}
	for _, id := range plan.Deletions {
		err := txManager.RunInTx(ctx, func(spCtx context.Context) error { return remove(spCtx, id) })
		if err != nil {
			fail("delete", id, err)
		}
	}
	for _, id := range plan.Retained {
		logging.Debug("child row kept, referenced by rides", zap.String("collection", collection), zap.Uint("id", id))
	}

	return warnings
}

func applyClientFields(client *model.Client, req ClientRequest) error {
	status, ok := statusOrDefault(req.Status)
	if !ok {
		return apperr.Validation("unknown status %q", req.Status)
	}

	client.Name = strings.TrimSpace(req.Name)
	client.TaxID = strings.TrimSpace(req.TaxID)
	client.Email = strings.TrimSpace(req.Email)
	client.Status = status
	client.Phone1 = strings.TrimSpace(req.Phone1)
	client.Phone2 = strings.TrimSpace(req.Phone2)
	client.Street = strings.TrimSpace(req.Street)
	client.Number = strings.TrimSpace(req.Number)
	client.Complement = strings.TrimSpace(req.Complement)
	client.District = strings.TrimSpace(req.District)
	client.PostalCode = strings.TrimSpace(req.PostalCode)
	client.State = strings.ToUpper(strings.TrimSpace(req.State))
	client.City = strings.TrimSpace(req.City)
	return nil
}

func auditChildWarnings(warnings []ChildWarning) interface{} {
	if len(warnings) == 0 {
		return nil
	}
	return map[string]interface{}{"warnings": warnings}
}
