// Package property manages the hotels, guesthouses, lodges and restaurants of a tenant.
package property

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"slices"
	"strings"

	"buffr-host/internal/domain"
	"buffr-host/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPropertyNotFound       = errors.New("Property not found")
	ErrNameAndTypeRequired    = errors.New("name and type are required")
	ErrInvalidPropertyType    = errors.New("type must be one of hotel, guesthouse, lodge, restaurant")
	ErrInvalidPropertyStatus  = errors.New("status must be active or inactive")
	ErrInvalidClock           = errors.New("check_in_time and check_out_time must be HH:MM")
	ErrInvalidCurrency        = errors.New("currency must be a 3-letter code")
	ErrInvalidPropertyEmail   = errors.New("Invalid email format")
	ErrPropertyNameTaken      = errors.New("A property with this name already exists")
	ErrPropertyHasActiveStays = errors.New("Property has active bookings")
	ErrNoUpdateFields         = errors.New("No update fields provided")
)

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

const defaultCurrency = "NAD"

// Service encapsulates property operations. Every call is scoped to one tenant.
type Service struct {
	DB *gorm.DB
}

type CreatePropertyInput struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Description  *string  `json:"description"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	Country      *string  `json:"country"`
	Phone        *string  `json:"phone"`
	Email        *string  `json:"email"`
	CheckInTime  string   `json:"check_in_time"`
	CheckOutTime string   `json:"check_out_time"`
	Currency     string   `json:"currency"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
}

// UpdatePropertyInput holds optional fields; nil means unchanged.
type UpdatePropertyInput struct {
	Name         *string   `json:"name"`
	Status       *string   `json:"status"`
	Description  *string   `json:"description"`
	Address      *string   `json:"address"`
	City         *string   `json:"city"`
	Country      *string   `json:"country"`
	Phone        *string   `json:"phone"`
	Email        *string   `json:"email"`
	CheckInTime  *string   `json:"check_in_time"`
	CheckOutTime *string   `json:"check_out_time"`
	Currency     *string   `json:"currency"`
	Amenities    *[]string `json:"amenities"`
	Images       *[]string `json:"images"`
}

type ListFilter struct {
	Type   string
	Status string
}

func jsonList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

// Create adds a property to the tenant. The slug is derived from the name and unique per tenant.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreatePropertyInput) (*domain.Property, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Type == "" {
		return nil, ErrNameAndTypeRequired
	}
	typ := strings.ToLower(in.Type)
	if !slices.Contains(domain.PropertyTypes, typ) {
		return nil, ErrInvalidPropertyType
	}
	checkIn := orDefault(in.CheckInTime, "14:00")
	checkOut := orDefault(in.CheckOutTime, "10:00")
	if !validation.IsValidClock(checkIn) || !validation.IsValidClock(checkOut) {
		return nil, ErrInvalidClock
	}
	currency := strings.ToUpper(orDefault(in.Currency, defaultCurrency))
	if !currencyRe.MatchString(currency) {
		return nil, ErrInvalidCurrency
	}
	if in.Email != nil && !validation.IsValidEmail(*in.Email) {
		return nil, ErrInvalidPropertyEmail
	}

	p := &domain.Property{
		TenantID:     tenantID,
		Name:         name,
		Slug:         validation.Slugify(name),
		Type:         typ,
		Status:       domain.PropertyActive,
		Description:  in.Description,
		Address:      in.Address,
		City:         in.City,
		Country:      in.Country,
		Phone:        in.Phone,
		Email:        in.Email,
		CheckInTime:  checkIn,
		CheckOutTime: checkOut,
		Currency:     currency,
		Amenities:    jsonList(in.Amenities),
		Images:       jsonList(in.Images),
	}
	if err := s.ensureSlugFree(ctx, tenantID, p.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ensureSlugFree(ctx context.Context, tenantID uuid.UUID, slug string, except uuid.UUID) error {
	var count int64
	q := s.DB.WithContext(ctx).Unscoped().Model(&domain.Property{}).Where("tenant_id = ? AND slug = ?", tenantID, slug)
	if except != uuid.Nil {
		q = q.Where("property_id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrPropertyNameTaken
	}
	return nil
}

// List returns the tenant's properties ordered by name.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, f ListFilter) ([]domain.Property, error) {
	q := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if f.Type != "" {
		q = q.Where("type = ?", strings.ToLower(f.Type))
	}
	if f.Status != "" {
		q = q.Where("status = ?", strings.ToLower(f.Status))
	}
	var out []domain.Property
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one property of the tenant. Other tenants' ids are reported as not found.
func (s *Service) Get(ctx context.Context, tenantID, propertyID uuid.UUID) (*domain.Property, error) {
	return Find(s.DB.WithContext(ctx), tenantID, propertyID)
}

// Find loads a tenant property with db, which may be a transaction.
func Find(db *gorm.DB, tenantID, propertyID uuid.UUID) (*domain.Property, error) {
	var p domain.Property
	if err := db.Where("tenant_id = ? AND property_id = ?", tenantID, propertyID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update applies the non-nil fields of in.
func (s *Service) Update(ctx context.Context, tenantID, propertyID uuid.UUID, in UpdatePropertyInput) (*domain.Property, error) {
	p, err := s.Get(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	upd := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameAndTypeRequired
		}
		slug := validation.Slugify(name)
		if err := s.ensureSlugFree(ctx, tenantID, slug, propertyID); err != nil {
			return nil, err
		}
		upd["name"] = name
		upd["slug"] = slug
	}
	if in.Status != nil {
		st := strings.ToLower(*in.Status)
		if st != domain.PropertyActive && st != domain.PropertyInactive {
			return nil, ErrInvalidPropertyStatus
		}
		upd["status"] = st
	}
	for col, v := range map[string]*string{
		"description": in.Description, "address": in.Address, "city": in.City, "country": in.Country, "phone": in.Phone,
	} {
		if v != nil {
			upd[col] = *v
		}
	}
	if in.Email != nil {
		if !validation.IsValidEmail(*in.Email) {
			return nil, ErrInvalidPropertyEmail
		}
		upd["email"] = *in.Email
	}
	if in.CheckInTime != nil {
		if !validation.IsValidClock(*in.CheckInTime) {
			return nil, ErrInvalidClock
		}
		upd["check_in_time"] = *in.CheckInTime
	}
	if in.CheckOutTime != nil {
		if !validation.IsValidClock(*in.CheckOutTime) {
			return nil, ErrInvalidClock
		}
		upd["check_out_time"] = *in.CheckOutTime
	}
	if in.Currency != nil {
		if !currencyRe.MatchString(*in.Currency) {
			return nil, ErrInvalidCurrency
		}
		upd["currency"] = strings.ToUpper(*in.Currency)
	}
	if in.Amenities != nil {
		upd["amenities"] = jsonList(*in.Amenities)
	}
	if in.Images != nil {
		upd["images"] = jsonList(*in.Images)
	}
	if len(upd) == 0 {
		return nil, ErrNoUpdateFields
	}
	if err := s.DB.WithContext(ctx).Model(p).Updates(upd).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, propertyID)
}

// Delete soft-deletes the property. Refused while it has active bookings.
func (s *Service) Delete(ctx context.Context, tenantID, propertyID uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := Find(tx, tenantID, propertyID)
		if err != nil {
			return err
		}
		var active int64
		if err := tx.Model(&domain.Booking{}).
			Where("property_id = ? AND status IN ?", p.PropertyID, domain.ActiveBookingStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrPropertyHasActiveStays
		}
		if err := tx.Where("property_id = ?", p.PropertyID).Delete(&domain.Room{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", p.PropertyID).Delete(&domain.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(p).Error
	})
}
