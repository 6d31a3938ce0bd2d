package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/reorder"
)

const (
	msgDiscountLoadFailed   = "Error al cargar los descuentos"
	msgDiscountToggleFailed = "Error al actualizar el estado del descuento"
)

// DiscountService serves the discounts of one branch. Their priority order is
// kept in the gateway only; the backend has no endpoint for it.
type DiscountService struct {
	Client     *client.Client
	SucursalID int64
	audit      *AuditService
	store      *reorder.Store[models.Descuento]
}

func NewDiscountService(c *client.Client, sucursalID int64, audit *AuditService) *DiscountService {
	store := reorder.NewStore[models.Descuento]("descuentos", nil, nil)
	store.Success = func(models.Descuento) string { return "Prioridad de descuentos actualizada" }
	return &DiscountService{Client: c, SucursalID: sucursalID, audit: audit, store: store}
}

// List fetches every discount, active or not, in local priority order.
func (s *DiscountService) List(ctx context.Context, creds client.Credentials) ([]models.Descuento, error) {
	fresh, err := s.Client.Discounts(ctx, creds, s.SucursalID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", msgDiscountLoadFailed, err)
	}
	return s.store.Sync(fresh), nil
}

func (s *DiscountService) SetActive(ctx context.Context, creds client.Credentials, id int64, activo bool) (models.Descuento, models.Notice, error) {
	d, err := s.Client.SetDiscountActive(ctx, creds, id, activo)
	s.audit.Record(ctx, AuditToggle, "descuentos", strconv.FormatInt(id, 10), strconv.FormatBool(activo), err == nil)
	if err != nil {
		return d, models.ErrorNotice(msgDiscountToggleFailed), err
	}

	state := "desactivado"
	if activo {
		state = "activado"
	}
	return d, models.SuccessNotice("Descuento " + state + " exitosamente"), nil
}

// Reorder changes the local priority of a discount.
func (s *DiscountService) Reorder(ctx context.Context, creds client.Credentials, activeID, overID int64) (*models.Notice, []models.Descuento, error) {
	if len(s.store.Items()) == 0 {
		if _, err := s.List(ctx, creds); err != nil {
			return nil, nil, err
		}
	}
	notice, err := s.store.Move(ctx, creds, activeID, overID)
	if notice != nil {
		s.audit.Record(ctx, AuditReorder, "descuentos", strconv.FormatInt(activeID, 10), fmt.Sprintf("%d -> %d", activeID, overID), err == nil)
	}
	return notice, s.store.Items(), err
}
