// Package room manages the rentable rooms of lodging properties and answers availability queries.
package room

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"buffr-host/internal/application/property"
	"buffr-host/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/hints"
)

var (
	ErrRoomNotFound       = errors.New("Room not found")
	ErrRoomFieldsRequired = errors.New("room_number and room_type are required")
	ErrInvalidCapacity    = errors.New("capacity must be at least 1")
	ErrInvalidRate        = errors.New("nightly_rate must be greater than 0")
	ErrInvalidRoomStatus  = errors.New("status must be one of available, maintenance, out_of_service")
	ErrNotLodging         = errors.New("Rooms can only be added to lodging properties")
	ErrRoomNumberTaken    = errors.New("Room number already exists for this property")
	ErrInvalidStayDates   = errors.New("check_out must be after check_in")
	ErrInvalidGuests      = errors.New("guests must be at least 1")
	ErrNoRoomUpdateFields = errors.New("No update fields provided")
)

var roomStatuses = []string{domain.RoomAvailable, domain.RoomMaintenance, domain.RoomOutOfService}

// Service encapsulates room operations, scoped to one tenant per call.
type Service struct {
	DB *gorm.DB
}

type CreateRoomInput struct {
	RoomNumber  string  `json:"room_number"`
	RoomType    string  `json:"room_type"`
	Capacity    int     `json:"capacity"`
	NightlyRate float64 `json:"nightly_rate"`
}

type UpdateRoomInput struct {
	RoomType    *string  `json:"room_type"`
	Capacity    *int     `json:"capacity"`
	NightlyRate *float64 `json:"nightly_rate"`
	Status      *string  `json:"status"`
}

func validStatus(s string) bool {
	for _, st := range roomStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Create adds a room to a lodging property.
func (s *Service) Create(ctx context.Context, tenantID, propertyID uuid.UUID, in CreateRoomInput) (*domain.Room, error) {
	number := strings.TrimSpace(in.RoomNumber)
	roomType := strings.TrimSpace(in.RoomType)
	if number == "" || roomType == "" {
		return nil, ErrRoomFieldsRequired
	}
	if in.Capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	if in.NightlyRate <= 0 {
		return nil, ErrInvalidRate
	}

	var r *domain.Room
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := property.Find(tx, tenantID, propertyID)
		if err != nil {
			return err
		}
		if !p.IsLodging() {
			return ErrNotLodging
		}
		var count int64
		if err := tx.Unscoped().Model(&domain.Room{}).
			Where("property_id = ? AND room_number = ?", propertyID, number).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrRoomNumberTaken
		}
		r = &domain.Room{
			TenantID:    tenantID,
			PropertyID:  propertyID,
			RoomNumber:  number,
			RoomType:    roomType,
			Capacity:    in.Capacity,
			NightlyRate: roundCents(in.NightlyRate),
			Status:      domain.RoomAvailable,
		}
		return tx.Create(r).Error
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// List returns the rooms of a property ordered by room number, optionally filtered by status.
func (s *Service) List(ctx context.Context, tenantID, propertyID uuid.UUID, status string) ([]domain.Room, error) {
	if _, err := property.Find(s.DB.WithContext(ctx), tenantID, propertyID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("tenant_id = ? AND property_id = ?", tenantID, propertyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []domain.Room{}
	if err := q.Order("room_number ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a tenant room.
func (s *Service) Get(ctx context.Context, tenantID, roomID uuid.UUID) (*domain.Room, error) {
	return Find(s.DB.WithContext(ctx), tenantID, roomID)
}

// Find loads a tenant room with db, which may be a transaction.
func Find(db *gorm.DB, tenantID, roomID uuid.UUID) (*domain.Room, error) {
	var r domain.Room
	if err := db.Where("tenant_id = ? AND room_id = ?", tenantID, roomID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Update changes type, capacity, rate or status of a room.
func (s *Service) Update(ctx context.Context, tenantID, roomID uuid.UUID, in UpdateRoomInput) (*domain.Room, error) {
	r, err := s.Get(ctx, tenantID, roomID)
	if err != nil {
		return nil, err
	}
	upd := map[string]interface{}{}
	if in.RoomType != nil {
		if strings.TrimSpace(*in.RoomType) == "" {
			return nil, ErrRoomFieldsRequired
		}
		upd["room_type"] = strings.TrimSpace(*in.RoomType)
	}
	if in.Capacity != nil {
		if *in.Capacity < 1 {
			return nil, ErrInvalidCapacity
		}
		upd["capacity"] = *in.Capacity
	}
	if in.NightlyRate != nil {
		if *in.NightlyRate <= 0 {
			return nil, ErrInvalidRate
		}
		upd["nightly_rate"] = roundCents(*in.NightlyRate)
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, ErrInvalidRoomStatus
		}
		upd["status"] = *in.Status
	}
	if len(upd) == 0 {
		return nil, ErrNoRoomUpdateFields
	}
	if err := s.DB.WithContext(ctx).Model(r).Updates(upd).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, roomID)
}

// AvailabilityQuery asks for rooms free over the half-open stay [CheckIn, CheckOut).
type AvailabilityQuery struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// Available lists rooms of the property that are in service, fit the party and
// have no active booking overlapping the stay.
func (s *Service) Available(ctx context.Context, tenantID, propertyID uuid.UUID, q AvailabilityQuery) ([]domain.Room, error) {
	if !q.CheckOut.After(q.CheckIn) {
		return nil, ErrInvalidStayDates
	}
	if q.Guests < 1 {
		return nil, ErrInvalidGuests
	}
	db := s.DB.WithContext(ctx)
	p, err := property.Find(db, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.IsLodging() {
		return []domain.Room{}, nil
	}

	busy := db.Model(&domain.Booking{}).
		Select("room_id").
		Where("property_id = ? AND status IN ? AND check_in < ? AND check_out > ?",
			propertyID, domain.ActiveBookingStatuses, q.CheckOut.UTC(), q.CheckIn.UTC())

	out := []domain.Room{}
	err = db.Clauses(hints.Comment("select", "availability")).
		Where("tenant_id = ? AND property_id = ? AND status = ? AND capacity >= ?",
			tenantID, propertyID, domain.RoomAvailable, q.Guests).
		Where("room_id NOT IN (?)", busy).
		Order("nightly_rate ASC, room_number ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Overlaps reports whether room has an active booking intersecting [checkIn, checkOut),
// ignoring the booking with id except. db may be a transaction.
func Overlaps(db *gorm.DB, roomID uuid.UUID, checkIn, checkOut time.Time, except uuid.UUID) (bool, error) {
	q := db.Model(&domain.Booking{}).
		Where("room_id = ? AND status IN ? AND check_in < ? AND check_out > ?",
			roomID, domain.ActiveBookingStatuses, checkOut.UTC(), checkIn.UTC())
	if except != uuid.Nil {
		q = q.Where("booking_id <> ?", except)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
