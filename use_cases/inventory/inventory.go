package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/protocols"
)

// Inventory is the administrative side of the instrument ledger.
type Inventory struct {
	instrumentRepository  instrument.Repository
	categoryRepository    category.Repository
	reservationRepository reservation.Repository
	locker                protocols.InstrumentLocker
	imageStore            protocols.ImageStore
	publisher             protocols.EventPublisher
}

func NewInventory(
	instrumentRepository instrument.Repository,
	categoryRepository category.Repository,
	reservationRepository reservation.Repository,
	locker protocols.InstrumentLocker,
	imageStore protocols.ImageStore,
	publisher protocols.EventPublisher,
) *Inventory {
	return &Inventory{
		instrumentRepository:  instrumentRepository,
		categoryRepository:    categoryRepository,
		reservationRepository: reservationRepository,
		locker:                locker,
		imageStore:            imageStore,
		publisher:             publisher,
	}
}

func (i *Inventory) Create(ctx context.Context, input CreateInput) (instrument.Instrument, error) {
	inst := instrument.Instrument{
		Name:        input.Name,
		Quantity:    input.Quantity,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := inst.Validate(); err != nil {
		return instrument.Instrument{}, err
	}
	created, err := i.instrumentRepository.Create(ctx, inst)
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("create instrument: %w", err)
	}
	created.Categories = []category.Category{}
	return created, nil
}

func (i *Inventory) Get(ctx context.Context, id int64) (instrument.Instrument, error) {
	inst, err := i.instrumentRepository.Get(ctx, id)
	if err != nil {
		return instrument.Instrument{}, err
	}
	return i.withCategories(ctx, inst)
}

func (i *Inventory) List(ctx context.Context) ([]instrument.Instrument, error) {
	instruments, err := i.instrumentRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]instrument.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		inst, err = i.withCategories(ctx, inst)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Update applies patch under the instrument's lock. A quantity below the peak
// demand of existing reservations is refused.
func (i *Inventory) Update(ctx context.Context, id int64, patch instrument.Patch) (instrument.Instrument, error) {
	unlock, err := i.locker.Lock(ctx, id)
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("lock instrument %d: %w", id, err)
	}
	defer unlock()

	current, err := i.instrumentRepository.Get(ctx, id)
	if err != nil {
		return instrument.Instrument{}, err
	}
	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return instrument.Instrument{}, err
	}

	if updated.Quantity < current.Quantity {
		existing, err := i.reservationRepository.FindOverlapping(ctx, reservation.Query{InstrumentId: id})
		if err != nil {
			return instrument.Instrument{}, fmt.Errorf("find reservations of instrument %d: %w", id, err)
		}
		if peak := reservation.PeakLoad(existing); updated.Quantity < peak {
			return instrument.Instrument{}, instrument.CapacityBelowCommitted(updated.Quantity, peak)
		}
	}

	if err := i.instrumentRepository.Update(ctx, updated); err != nil {
		return instrument.Instrument{}, fmt.Errorf("update instrument %d: %w", id, err)
	}
	return i.withCategories(ctx, updated)
}

// Delete removes the instrument together with its reservations.
func (i *Inventory) Delete(ctx context.Context, actor user.Actor, id int64) error {
	removed, err := i.deleteLocked(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range removed {
		if err := i.publisher.Publish(ctx, reservation.NewEvent(reservation.EventDeleted, r, actor.UserId)); err != nil {
			slog.WarnContext(ctx, "publish reservation event", "reservation_id", r.Id, "error", err)
		}
	}
	return nil
}

func (i *Inventory) deleteLocked(ctx context.Context, id int64) ([]reservation.Reservation, error) {
	unlock, err := i.locker.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock instrument %d: %w", id, err)
	}
	defer unlock()

	if _, err := i.instrumentRepository.Get(ctx, id); err != nil {
		return nil, err
	}
	existing, err := i.reservationRepository.FindOverlapping(ctx, reservation.Query{InstrumentId: id})
	if err != nil {
		return nil, fmt.Errorf("find reservations of instrument %d: %w", id, err)
	}
	for _, r := range existing {
		if err := i.reservationRepository.Remove(ctx, r.Id); err != nil {
			return nil, fmt.Errorf("remove reservation %d: %w", r.Id, err)
		}
	}
	if err := i.instrumentRepository.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete instrument %d: %w", id, err)
	}
	return existing, nil
}

// AttachImage stores body in the image store and points the instrument at it.
func (i *Inventory) AttachImage(ctx context.Context, id int64, body io.Reader, contentType string) (instrument.Instrument, error) {
	if _, err := i.instrumentRepository.Get(ctx, id); err != nil {
		return instrument.Instrument{}, err
	}

	key := fmt.Sprintf("instruments/%d/%s", id, uuid.NewString())
	url, err := i.imageStore.Put(ctx, key, body, contentType)
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("store image for instrument %d: %w", id, err)
	}
	return i.Update(ctx, id, instrument.Patch{ImageURL: &url})
}

func (i *Inventory) withCategories(ctx context.Context, inst instrument.Instrument) (instrument.Instrument, error) {
	categories, err := i.categoryRepository.ForInstrument(ctx, inst.Id)
	if err != nil {
		return instrument.Instrument{}, fmt.Errorf("categories of instrument %d: %w", inst.Id, err)
	}
	if categories == nil {
		categories = []category.Category{}
	}
	inst.Categories = categories
	return inst, nil
}

type CreateInput struct {
	Name        string
	Quantity    int
	Description *string
	ImageURL    *string
}
