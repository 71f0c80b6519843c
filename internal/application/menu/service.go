// Package menu manages the menu items of restaurant properties.
package menu

import (
	"context"
	"errors"
	"math"
	"strings"

	"buffr-host/internal/application/property"
	"buffr-host/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMenuItemNotFound   = errors.New("Menu item not found")
	ErrMenuFieldsRequired = errors.New("name and category are required")
	ErrInvalidPrice       = errors.New("price must be greater than 0")
	ErrNotRestaurant      = errors.New("Menu items can only be added to restaurant properties")
	ErrNoMenuUpdateFields = errors.New("No update fields provided")
)

type Service struct {
	DB *gorm.DB
}

type CreateItemInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Available   *bool   `json:"available"`
}

type UpdateItemInput struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Available   *bool    `json:"available"`
}

// Create adds an item to a restaurant menu. Items are available unless stated otherwise.
func (s *Service) Create(ctx context.Context, tenantID, propertyID uuid.UUID, in CreateItemInput) (*domain.MenuItem, error) {
	name, category := strings.TrimSpace(in.Name), strings.TrimSpace(in.Category)
	if name == "" || category == "" {
		return nil, ErrMenuFieldsRequired
	}
	if in.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	p, err := property.Find(s.DB.WithContext(ctx), tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	if p.IsLodging() {
		return nil, ErrNotRestaurant
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	item := &domain.MenuItem{
		TenantID:    tenantID,
		PropertyID:  propertyID,
		Name:        name,
		Category:    strings.ToLower(category),
		Description: in.Description,
		Price:       math.Round(in.Price*100) / 100,
		Available:   available,
	}
	// Select keeps an explicit false from being replaced by the column default.
	if err := s.DB.WithContext(ctx).Select("*").Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// List returns a property's menu grouped by category then name.
func (s *Service) List(ctx context.Context, tenantID, propertyID uuid.UUID, onlyAvailable bool) ([]domain.MenuItem, error) {
	db := s.DB.WithContext(ctx)
	if _, err := property.Find(db, tenantID, propertyID); err != nil {
		return nil, err
	}
	q := db.Where("tenant_id = ? AND property_id = ?", tenantID, propertyID)
	if onlyAvailable {
		q = q.Where("available = ?", true)
	}
	out := []domain.MenuItem{}
	if err := q.Order("category ASC, name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Find loads a tenant menu item with db, which may be a transaction.
func Find(db *gorm.DB, tenantID, itemID uuid.UUID) (*domain.MenuItem, error) {
	var m domain.MenuItem
	if err := db.Where("tenant_id = ? AND menu_item_id = ?", tenantID, itemID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Update(ctx context.Context, tenantID, itemID uuid.UUID, in UpdateItemInput) (*domain.MenuItem, error) {
	db := s.DB.WithContext(ctx)
	m, err := Find(db, tenantID, itemID)
	if err != nil {
		return nil, err
	}
	upd := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, ErrMenuFieldsRequired
		}
		upd["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return nil, ErrMenuFieldsRequired
		}
		upd["category"] = strings.ToLower(strings.TrimSpace(*in.Category))
	}
	if in.Description != nil {
		upd["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		upd["price"] = math.Round(*in.Price*100) / 100
	}
	if in.Available != nil {
		upd["available"] = *in.Available
	}
	if len(upd) == 0 {
		return nil, ErrNoMenuUpdateFields
	}
	if err := db.Model(m).Updates(upd).Error; err != nil {
		return nil, err
	}
	return Find(db, tenantID, itemID)
}

// Delete soft-deletes an item. Past orders keep their captured name and price.
func (s *Service) Delete(ctx context.Context, tenantID, itemID uuid.UUID) error {
	db := s.DB.WithContext(ctx)
	m, err := Find(db, tenantID, itemID)
	if err != nil {
		return err
	}
	return db.Delete(m).Error
}
