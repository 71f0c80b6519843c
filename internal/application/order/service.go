// Package order takes restaurant orders and moves them from the kitchen to the bill.
package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"buffr-host/internal/application/menu"
	"buffr-host/internal/application/property"
	"buffr-host/internal/application/room"
	"buffr-host/internal/domain"
	"buffr-host/internal/infrastructure/events"
	"buffr-host/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("Order not found")
	ErrNotRestaurant      = errors.New("Orders can only be placed at restaurant properties")
	ErrDestinationMissing = errors.New("table_number or room_id is required")
	ErrNoItems            = errors.New("items must contain at least one item")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrItemUnavailable    = errors.New("Menu item is not available")
	ErrInvalidOrderStatus = errors.New("status must be one of preparing, ready, served, paid, cancelled")
)

// TransitionError reports a status change the order lifecycle does not allow.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Cannot move a %s order to %s", e.From, e.To)
}

// next lists the statuses reachable from each status.
var next = map[string][]string{
	domain.OrderPending:   {domain.OrderPreparing, domain.OrderCancelled},
	domain.OrderPreparing: {domain.OrderReady, domain.OrderCancelled},
	domain.OrderReady:     {domain.OrderServed},
	domain.OrderServed:    {domain.OrderPaid},
}

var targets = []string{domain.OrderPreparing, domain.OrderReady, domain.OrderServed, domain.OrderPaid, domain.OrderCancelled}

// Service holds order dependencies. Events and Metrics may be nil.
type Service struct {
	DB      *gorm.DB
	Events  events.Publisher
	Metrics *metrics.Metrics
}

type ItemInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Notes      *string   `json:"notes"`
}

type CreateInput struct {
	PropertyID  uuid.UUID
	TableNumber *string
	RoomID      *uuid.UUID
	Items       []ItemInput
	Notes       *string
	ActorID     uuid.UUID
}

// Create prices the items at their current menu price and stores the order.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (*domain.Order, error) {
	table := ""
	if in.TableNumber != nil {
		table = strings.TrimSpace(*in.TableNumber)
	}
	if table == "" && in.RoomID == nil {
		return nil, ErrDestinationMissing
	}
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var o *domain.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := property.Find(tx, tenantID, in.PropertyID)
		if err != nil {
			return err
		}
		if p.IsLodging() {
			return ErrNotRestaurant
		}
		if in.RoomID != nil {
			if _, err := room.Find(tx, tenantID, *in.RoomID); err != nil {
				return err
			}
		}

		o = &domain.Order{
			TenantID:   tenantID,
			PropertyID: p.PropertyID,
			RoomID:     in.RoomID,
			Status:     domain.OrderPending,
			Currency:   p.Currency,
			Notes:      in.Notes,
		}
		if table != "" {
			o.TableNumber = &table
		}
		if in.ActorID != uuid.Nil {
			o.CreatedBy = &in.ActorID
		}

		total := 0.0
		for _, it := range in.Items {
			m, err := menu.Find(tx, tenantID, it.MenuItemID)
			if err != nil {
				return err
			}
			if m.PropertyID != p.PropertyID || !m.Available {
				return ErrItemUnavailable
			}
			line := roundCents(m.Price * float64(it.Quantity))
			total += line
			o.Items = append(o.Items, domain.OrderItem{
				MenuItemID: m.MenuItemID,
				Name:       m.Name,
				Quantity:   it.Quantity,
				UnitPrice:  m.Price,
				LineTotal:  line,
				Notes:      it.Notes,
			})
		}
		o.TotalAmount = roundCents(total)
		return tx.Create(o).Error
	})
	if err != nil {
		return nil, err
	}

	channel := "table"
	if o.RoomID != nil {
		channel = "room"
	}
	events.Emit(ctx, s.Events, events.Subject(tenantID.String(), "order", "created"), o)
	s.Metrics.OrderCreated(channel)
	return o, nil
}

type ListFilter struct {
	PropertyID *uuid.UUID
	Status     string
}

// List returns the tenant's orders, newest first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f ListFilter) ([]domain.Order, error) {
	q := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if f.PropertyID != nil {
		q = q.Where("property_id = ?", *f.PropertyID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	out := []domain.Order{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*domain.Order, error) {
	return find(s.DB.WithContext(ctx).Preload("Items"), tenantID, orderID)
}

func find(db *gorm.DB, tenantID, orderID uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := db.Where("tenant_id = ? AND order_id = ?", tenantID, orderID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves an order to status if its lifecycle allows it.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, status string) (*domain.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !slices.Contains(targets, status) {
		return nil, ErrInvalidOrderStatus
	}
	db := s.DB.WithContext(ctx)
	o, err := find(db, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(next[o.Status], status) {
		return nil, &TransitionError{From: o.Status, To: status}
	}
	res := db.Model(&domain.Order{}).
		Where("order_id = ? AND status = ?", o.OrderID, o.Status).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &TransitionError{From: o.Status, To: status}
	}

	o, err = s.Get(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.Events, events.Subject(tenantID.String(), "order", status), o)
	s.Metrics.OrderTransition(status)
	return o, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
