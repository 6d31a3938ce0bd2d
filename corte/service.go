package corte

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-backoffice/client"
	"github.com/yeremiapane/restaurant-backoffice/history"
	"github.com/yeremiapane/restaurant-backoffice/models"
	"github.com/yeremiapane/restaurant-backoffice/utils"
)

const (
	reportLimit     = 1000
	dateLayout      = "2006-01-02"
	msgReportFailed = "Error al cargar datos del corte"
)

var (
	ErrInvalidDate       = errors.New("fecha must be YYYY-MM-DD")
	ErrReportUnavailable = errors.New("day report unavailable")
)

type HistoryBackend interface {
	OrderHistory(ctx context.Context, creds client.Credentials, query url.Values) (models.HistoryPage, error)
}

// Report is the corte of one day. On failure KPIs stay at zero and Error is set.
type Report struct {
	Fecha   string         `json:"fecha"`
	KPIs    KPIs           `json:"kpis"`
	Ordenes []models.Order `json:"ordenes"`
	Error   string         `json:"error,omitempty"`
	// Err is the cause behind Error.
	Err error `json:"-"`
}

type Service struct {
	Backend HistoryBackend
	DB      *gorm.DB
	Now     func() time.Time
}

func NewService(backend HistoryBackend, db *gorm.DB) *Service {
	return &Service{Backend: backend, DB: db, Now: time.Now}
}

// Today is the default report date.
func (s *Service) Today() string {
	return s.Now().Format(dateLayout)
}

func (s *Service) normalizeDate(fecha string) (string, error) {
	if fecha == "" {
		return s.Today(), nil
	}
	if _, err := time.Parse(dateLayout, fecha); err != nil {
		return "", ErrInvalidDate
	}
	return fecha, nil
}

func (s *Service) Report(ctx context.Context, creds client.Credentials, fecha string) Report {
	fecha, err := s.normalizeDate(fecha)
	if err != nil {
		return Report{Fecha: fecha, KPIs: Compute(nil), Ordenes: []models.Order{}, Error: err.Error(), Err: err}
	}

	q := history.DefaultQuery()
	q.Limit = reportLimit
	q.Order = history.OrderAsc
	q.Filters.Fecha = fecha

	page, err := s.Backend.OrderHistory(ctx, creds, q.Values())
	if err == nil && !page.Success {
		err = fmt.Errorf("%w: %s", ErrReportUnavailable, page.Error)
	}
	if err != nil {
		utils.Error().WithError(err).WithField("fecha", fecha).Error("corte report failed")
		return Report{Fecha: fecha, KPIs: Compute(nil), Ordenes: []models.Order{}, Error: msgReportFailed, Err: err}
	}

	orders := page.Data
	if orders == nil {
		orders = []models.Order{}
	}
	return Report{Fecha: fecha, KPIs: Compute(orders), Ordenes: orders}
}

// RecordCount stores a cash count against the day's gross sales.
func (s *Service) RecordCount(ctx context.Context, creds client.Credentials, fecha string, efectivo models.Money, usuario string) (models.CashCount, Reconciliation, error) {
	report := s.Report(ctx, creds, fecha)
	if report.Err != nil {
		return models.CashCount{}, Reconciliation{}, report.Err
	}

	rec := Difference(efectivo, report.KPIs.VentaTotal)
	count := models.CashCount{
		ID:         uuid.New().String(),
		Fecha:      report.Fecha,
		Efectivo:   rec.Efectivo,
		VentaBruta: rec.VentaTotal,
		Diferencia: rec.Diferencia,
		Usuario:    usuario,
		CreatedAt:  s.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&count).Error; err != nil {
		return models.CashCount{}, rec, fmt.Errorf("save cash count: %w", err)
	}

	utils.Info().WithField("fecha", count.Fecha).WithField("diferencia", count.Diferencia.String()).Info("cash count recorded")
	return count, rec, nil
}

// Counts lists the cash counts of a day, newest first.
func (s *Service) Counts(ctx context.Context, fecha string) ([]models.CashCount, error) {
	fecha, err := s.normalizeDate(fecha)
	if err != nil {
		return nil, err
	}
	var counts []models.CashCount
	if err := s.DB.WithContext(ctx).Where("fecha = ?", fecha).Order("created_at DESC").Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("list cash counts: %w", err)
	}
	return counts, nil
}
