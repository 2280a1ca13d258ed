package inventory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
)

type mockInstrumentRepository struct {
	instruments map[int64]instrument.Instrument
	nextId      int64

	updated []instrument.Instrument
	deleted []int64
}

func (m *mockInstrumentRepository) Get(ctx context.Context, id int64) (instrument.Instrument, error) {
	inst, ok := m.instruments[id]
	if !ok {
		return instrument.Instrument{}, instrument.NotFound(id)
	}
	return inst, nil
}

func (m *mockInstrumentRepository) List(ctx context.Context) ([]instrument.Instrument, error) {
	var out []instrument.Instrument
	for id := int64(1); id <= m.nextId; id++ {
		if inst, ok := m.instruments[id]; ok {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (m *mockInstrumentRepository) Create(ctx context.Context, inst instrument.Instrument) (instrument.Instrument, error) {
	m.nextId++
	inst.Id = m.nextId
	m.instruments[inst.Id] = inst
	return inst, nil
}

func (m *mockInstrumentRepository) Update(ctx context.Context, inst instrument.Instrument) error {
	m.updated = append(m.updated, inst)
	m.instruments[inst.Id] = inst
	return nil
}

func (m *mockInstrumentRepository) Delete(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	delete(m.instruments, id)
	return nil
}

type mockCategoryRepository struct {
	category.Repository
	tags map[int64][]category.Category
}

func (m *mockCategoryRepository) ForInstrument(ctx context.Context, instrumentId int64) ([]category.Category, error) {
	return m.tags[instrumentId], nil
}

type mockReservationRepository struct {
	reservation.Repository
	stored  []reservation.Reservation
	removed []int64
}

func (m *mockReservationRepository) FindOverlapping(ctx context.Context, q reservation.Query) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	for _, r := range m.stored {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReservationRepository) Remove(ctx context.Context, id int64) error {
	m.removed = append(m.removed, id)
	return nil
}

type mockLocker struct {
	lockedIds []int64
	unlocked  int
}

func (m *mockLocker) Lock(ctx context.Context, instrumentId int64) (func(), error) {
	m.lockedIds = append(m.lockedIds, instrumentId)
	return func() { m.unlocked++ }, nil
}

type mockImageStore struct {
	putKey         string
	putBody        string
	putContentType string
	putErr         error
}

func (m *mockImageStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	raw, _ := io.ReadAll(body)
	m.putKey = key
	m.putBody = string(raw)
	m.putContentType = contentType
	return "https://images.example/" + key, m.putErr
}

type mockPublisher struct {
	events []reservation.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event reservation.Event) error {
	m.events = append(m.events, event)
	return nil
}

type fixture struct {
	instruments  *mockInstrumentRepository
	categories   *mockCategoryRepository
	reservations *mockReservationRepository
	locker       *mockLocker
	images       *mockImageStore
	publisher    *mockPublisher
	uc           *Inventory
}

func newFixture() *fixture {
	f := &fixture{
		instruments: &mockInstrumentRepository{instruments: map[int64]instrument.Instrument{
			1: {Id: 1, Name: "marimba", Quantity: 4},
		}, nextId: 1},
		categories: &mockCategoryRepository{tags: map[int64][]category.Category{
			1: {{Id: 2, Category: "percussion"}},
		}},
		reservations: &mockReservationRepository{stored: []reservation.Reservation{
			{Id: 10, InstrumentId: 1, Quantity: 2, StartTime: 0, EndTime: 100},
			{Id: 11, InstrumentId: 1, Quantity: 1, StartTime: 50, EndTime: 150},
			{Id: 12, InstrumentId: 1, Quantity: 3, StartTime: 150, EndTime: 200},
			{Id: 13, InstrumentId: 2, Quantity: 9, StartTime: 0, EndTime: 200},
		}},
		locker:    &mockLocker{},
		images:    &mockImageStore{},
		publisher: &mockPublisher{},
	}
	f.uc = NewInventory(f.instruments, f.categories, f.reservations, f.locker, f.images, f.publisher)
	return f
}

func ptr[T any](v T) *T { return &v }

func TestCreate(t *testing.T) {
	f := newFixture()

	created, err := f.uc.Create(context.Background(), CreateInput{Name: "oboe", Quantity: 0})
	if err != nil || created.Id != 2 || created.Categories == nil {
		t.Fatalf("expected instrument 2 with empty categories, got %+v, %v", created, err)
	}

	if _, err := f.uc.Create(context.Background(), CreateInput{Name: "oboe", Quantity: -1}); !errors.Is(err, instrument.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestGet_AttachesCategories(t *testing.T) {
	f := newFixture()

	inst, err := f.uc.Get(context.Background(), 1)
	if err != nil || len(inst.Categories) != 1 || inst.Categories[0].Category != "percussion" {
		t.Fatalf("expected percussion tag, got %+v, %v", inst, err)
	}
	if _, err := f.uc.Get(context.Background(), 5); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestList(t *testing.T) {
	f := newFixture()

	instruments, err := f.uc.List(context.Background())
	if err != nil || len(instruments) != 1 || instruments[0].Name != "marimba" {
		t.Fatalf("expected marimba, got %+v, %v", instruments, err)
	}
}

func TestUpdate_ShrinkToPeakAllowed(t *testing.T) {
	f := newFixture()

	updated, err := f.uc.Update(context.Background(), 1, instrument.Patch{Quantity: ptr(3)})
	if err != nil || updated.Quantity != 3 {
		t.Fatalf("expected shrink to peak 3 to pass, got %+v, %v", updated, err)
	}
	if len(f.locker.lockedIds) != 1 || f.locker.unlocked != 1 {
		t.Fatalf("expected one lock cycle, got %v / %d", f.locker.lockedIds, f.locker.unlocked)
	}
}

func TestUpdate_ShrinkBelowPeakRejected(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Update(context.Background(), 1, instrument.Patch{Quantity: ptr(2)})
	if !errors.Is(err, fault.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.instruments.updated) != 0 {
		t.Fatalf("expected no update")
	}
}

func TestUpdate_RenameOnly(t *testing.T) {
	f := newFixture()

	updated, err := f.uc.Update(context.Background(), 1, instrument.Patch{Name: ptr("bass marimba")})
	if err != nil || updated.Name != "bass marimba" || updated.Quantity != 4 {
		t.Fatalf("unexpected result %+v, %v", updated, err)
	}
}

func TestDelete_CascadesReservations(t *testing.T) {
	f := newFixture()

	if err := f.uc.Delete(context.Background(), user.Actor{UserId: 1, IsAdmin: true}, 1); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(f.reservations.removed) != 3 {
		t.Fatalf("expected three reservations removed, got %v", f.reservations.removed)
	}
	if len(f.instruments.deleted) != 1 || f.instruments.deleted[0] != 1 {
		t.Fatalf("expected instrument 1 deleted, got %v", f.instruments.deleted)
	}
	if len(f.publisher.events) != 3 {
		t.Fatalf("expected three deleted events, got %d", len(f.publisher.events))
	}
}

func TestDelete_Missing(t *testing.T) {
	f := newFixture()

	if err := f.uc.Delete(context.Background(), user.Actor{IsAdmin: true}, 8); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.reservations.removed) != 0 {
		t.Fatalf("expected nothing removed")
	}
}

func TestAttachImage(t *testing.T) {
	f := newFixture()

	updated, err := f.uc.AttachImage(context.Background(), 1, strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.HasPrefix(f.images.putKey, "instruments/1/") || f.images.putBody != "png-bytes" || f.images.putContentType != "image/png" {
		t.Fatalf("unexpected put: %q %q %q", f.images.putKey, f.images.putBody, f.images.putContentType)
	}
	if updated.ImageURL == nil || *updated.ImageURL != "https://images.example/"+f.images.putKey {
		t.Fatalf("expected image url set, got %+v", updated.ImageURL)
	}
}

func TestAttachImage_StoreError(t *testing.T) {
	f := newFixture()
	f.images.putErr = errors.New("access denied")

	if _, err := f.uc.AttachImage(context.Background(), 1, strings.NewReader("x"), "image/png"); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if len(f.instruments.updated) != 0 {
		t.Fatalf("expected instrument untouched")
	}
}
