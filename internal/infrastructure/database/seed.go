package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"buffr-host/internal/domain"
	"buffr-host/internal/pkg/constants"
	"buffr-host/internal/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed seed/etuna.yaml
var etunaSeed []byte

// SeedFile is the YAML shape of a demo tenant.
type SeedFile struct {
	Tenant struct {
		Name         string `yaml:"name"`
		Slug         string `yaml:"slug"`
		CountryCode  string `yaml:"country_code"`
		ContactEmail string `yaml:"contact_email"`
		ContactPhone string `yaml:"contact_phone"`
	} `yaml:"tenant"`
	Owner struct {
		Fullname string `yaml:"fullname"`
		UserName string `yaml:"user_name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"owner"`
	Properties []SeedProperty `yaml:"properties"`
}

type SeedProperty struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	City         string   `yaml:"city"`
	Country      string   `yaml:"country"`
	Address      string   `yaml:"address"`
	Phone        string   `yaml:"phone"`
	Email        string   `yaml:"email"`
	Currency     string   `yaml:"currency"`
	CheckInTime  string   `yaml:"check_in_time"`
	CheckOutTime string   `yaml:"check_out_time"`
	Description  string   `yaml:"description"`
	Amenities    []string `yaml:"amenities"`
	Rooms        []struct {
		RoomNumber  string  `yaml:"room_number"`
		RoomType    string  `yaml:"room_type"`
		Capacity    int     `yaml:"capacity"`
		NightlyRate float64 `yaml:"nightly_rate"`
	} `yaml:"rooms"`
	Menu []struct {
		Name     string  `yaml:"name"`
		Category string  `yaml:"category"`
		Price    float64 `yaml:"price"`
	} `yaml:"menu"`
}

// SeedResult reports what Seed did.
type SeedResult struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Created    bool      `json:"created"`
	Properties int       `json:"properties"`
	Rooms      int       `json:"rooms"`
	MenuItems  int       `json:"menu_items"`
}

// ParseSeed decodes a seed YAML document.
func ParseSeed(b []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if f.Tenant.Slug == "" || f.Tenant.Name == "" {
		return nil, errors.New("parse seed: tenant name and slug are required")
	}
	return &f, nil
}

// Seed loads the embedded Etuna demo tenant.
func Seed(ctx context.Context, db *gorm.DB) (*SeedResult, error) {
	f, err := ParseSeed(etunaSeed)
	if err != nil {
		return nil, err
	}
	return SeedFrom(ctx, db, f)
}

// SeedFrom inserts the tenant described by f. It is a no-op when a tenant
// with the same slug already exists.
func SeedFrom(ctx context.Context, db *gorm.DB, f *SeedFile) (*SeedResult, error) {
	var existing domain.Tenant
	err := db.WithContext(ctx).Where("slug = ?", f.Tenant.Slug).First(&existing).Error
	if err == nil {
		return &SeedResult{TenantID: existing.TenantID, Created: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	res := &SeedResult{Created: true}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant := &domain.Tenant{
			Name:        f.Tenant.Name,
			Slug:        f.Tenant.Slug,
			CountryCode: strings.ToUpper(f.Tenant.CountryCode),
		}
		tenant.TenantID = uuid.New()
		tenant.TenantCode = TenantCode(tenant.Name, tenant.TenantID)
		tenant.ContactEmail = optional(f.Tenant.ContactEmail)
		tenant.ContactPhone = optional(f.Tenant.ContactPhone)
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		res.TenantID = tenant.TenantID

		if f.Owner.Email != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(f.Owner.Password), 10)
			if err != nil {
				return err
			}
			owner := &domain.User{
				Fullname:     f.Owner.Fullname,
				UserName:     f.Owner.UserName,
				Email:        strings.ToLower(f.Owner.Email),
				PasswordHash: string(hash),
				TenantID:     &tenant.TenantID,
				Role:         constants.Owner,
			}
			if err := tx.Create(owner).Error; err != nil {
				return err
			}
		}

		for _, sp := range f.Properties {
			p := &domain.Property{
				TenantID:     tenant.TenantID,
				Name:         sp.Name,
				Slug:         validation.Slugify(sp.Name),
				Type:         sp.Type,
				Status:       domain.PropertyActive,
				Description:  optional(sp.Description),
				Address:      optional(sp.Address),
				City:         optional(sp.City),
				Country:      optional(sp.Country),
				Phone:        optional(sp.Phone),
				Email:        optional(sp.Email),
				CheckInTime:  orDefault(sp.CheckInTime, "14:00"),
				CheckOutTime: orDefault(sp.CheckOutTime, "10:00"),
				Currency:     orDefault(sp.Currency, "NAD"),
				Amenities:    jsonList(sp.Amenities),
				Images:       jsonList(nil),
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			res.Properties++
			for _, r := range sp.Rooms {
				if err := tx.Create(&domain.Room{
					TenantID:    tenant.TenantID,
					PropertyID:  p.PropertyID,
					RoomNumber:  r.RoomNumber,
					RoomType:    r.RoomType,
					Capacity:    r.Capacity,
					NightlyRate: r.NightlyRate,
					Status:      domain.RoomAvailable,
				}).Error; err != nil {
					return err
				}
				res.Rooms++
			}
			for _, m := range sp.Menu {
				if err := tx.Create(&domain.MenuItem{
					TenantID:   tenant.TenantID,
					PropertyID: p.PropertyID,
					Name:       m.Name,
					Category:   m.Category,
					Price:      m.Price,
					Available:  true,
				}).Error; err != nil {
					return err
				}
				res.MenuItems++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TenantCode builds the short public code: two letters of the name plus six hex of the id.
func TenantCode(name string, id uuid.UUID) string {
	var letters strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters.WriteRune(r)
			if letters.Len() == 2 {
				break
			}
		}
	}
	prefix := letters.String()
	for len(prefix) < 2 {
		prefix += "X"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:6]
	return prefix + "-" + suffix
}

func jsonList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
