package stores

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
)

// defaultCountry applies when a store is created without one.
const defaultCountry = "Lithuania"

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID           uuid.UUID `json:"id"`
	BrandID      uuid.UUID `json:"brand_id"`
	Nickname     string    `json:"nickname"`
	AddressLine1 string    `json:"address_line1"`
	AddressLine2 string    `json:"address_line2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StoreList is one cursor page of stores.
type StoreList struct {
	Items      []StoreDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CreateStoreDTO holds creation-time data for a new store.
type CreateStoreDTO struct {
	BrandID      uuid.UUID
	Nickname     string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

// UpdateStoreInput captures the mutable store fields.
type UpdateStoreInput struct {
	Nickname     *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
}

// ToModel converts the DTO into a store row with trimmed fields.
func (d CreateStoreDTO) ToModel() *models.Store {
	country := strings.TrimSpace(d.Country)
	if country == "" {
		country = defaultCountry
	}
	return &models.Store{
		ID:           uuid.New(),
		BrandID:      d.BrandID,
		Nickname:     strings.TrimSpace(d.Nickname),
		AddressLine1: strings.TrimSpace(d.AddressLine1),
		AddressLine2: strings.TrimSpace(d.AddressLine2),
		City:         strings.TrimSpace(d.City),
		State:        strings.TrimSpace(d.State),
		PostalCode:   strings.TrimSpace(d.PostalCode),
		Country:      country,
	}
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:           m.ID,
		BrandID:      m.BrandID,
		Nickname:     m.Nickname,
		AddressLine1: m.AddressLine1,
		AddressLine2: m.AddressLine2,
		City:         m.City,
		State:        m.State,
		PostalCode:   m.PostalCode,
		Country:      m.Country,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func applyUpdate(store *models.Store, input UpdateStoreInput) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&store.Nickname, input.Nickname)
	set(&store.AddressLine1, input.AddressLine1)
	set(&store.AddressLine2, input.AddressLine2)
	set(&store.City, input.City)
	set(&store.State, input.State)
	set(&store.PostalCode, input.PostalCode)
	set(&store.Country, input.Country)
}
