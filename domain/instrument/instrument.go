package instrument

import (
	"context"
	"fmt"
	"math"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/fault"
)

var (
	ErrInvalidQuantity  = fmt.Errorf("%w: Quantity must be a positive integer.", fault.ErrInvalid)
	ErrNameRequired     = fmt.Errorf("%w: Instrument name is required.", fault.ErrInvalid)
	ErrQuantityTooLarge = fmt.Errorf("%w: Quantity must not exceed %d.", fault.ErrInvalid, MaxQuantity)
)

// MaxQuantity is the range of the INTEGER quantity column.
const MaxQuantity = math.MaxInt32

type Instrument struct {
	Id          int64               `json:"id"`
	Name        string              `json:"name"`
	Quantity    int                 `json:"quantity"`
	Description *string             `json:"description"`
	ImageURL    *string             `json:"imageURL"`
	Categories  []category.Category `json:"categories"`
}

func (i Instrument) Validate() error {
	if i.Name == "" {
		return ErrNameRequired
	}
	if i.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if i.Quantity > MaxQuantity {
		return ErrQuantityTooLarge
	}
	return nil
}

// Patch holds the administratively editable fields; nil means unchanged.
type Patch struct {
	Name        *string
	Quantity    *int
	Description *string
	ImageURL    *string
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Description == nil && p.ImageURL == nil
}

// Apply returns a copy of i with the patch merged over it.
func (p Patch) Apply(i Instrument) Instrument {
	merged := i
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Quantity != nil {
		merged.Quantity = *p.Quantity
	}
	if p.Description != nil {
		merged.Description = p.Description
	}
	if p.ImageURL != nil {
		merged.ImageURL = p.ImageURL
	}
	return merged
}

func NotFound(id int64) error {
	return fault.NotFound("No Instrument with id: %d", id)
}

// CapacityBelowCommitted reports a shrink that existing reservations would overrun.
func CapacityBelowCommitted(requested int, peak int) error {
	return fault.Conflict("Quantity %d is below the %d units already committed by existing reservations.", requested, peak)
}

// TotalQuantity is the ledger lookup used by the availability checks.
func TotalQuantity(ctx context.Context, repo Repository, id int64) (int, error) {
	inst, err := repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return inst.Quantity, nil
}
