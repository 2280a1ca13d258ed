package cancel

import (
	"context"
	"errors"
	"testing"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
)

type mockRepository struct {
	reservation.Repository
	getResult reservation.Reservation
	getErr    error
	removeErr error

	removeCalledWithId int64
}

func (m *mockRepository) Get(ctx context.Context, id int64) (reservation.Reservation, error) {
	return m.getResult, m.getErr
}

func (m *mockRepository) Remove(ctx context.Context, id int64) error {
	m.removeCalledWithId = id
	return m.removeErr
}

type mockPublisher struct {
	events []reservation.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event reservation.Event) error {
	m.events = append(m.events, event)
	return errors.New("broker unavailable")
}

func TestCancel_Owner(t *testing.T) {
	repo := &mockRepository{getResult: reservation.Reservation{Id: 4, UserId: 2}}
	publisher := &mockPublisher{}
	uc := NewCancel(repo, publisher)

	out, err := uc.Cancel(context.Background(), Input{Actor: user.Actor{UserId: 2}, ReservationId: 4})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Deleted != 4 || repo.removeCalledWithId != 4 {
		t.Fatalf("expected reservation 4 removed, got %+v / %d", out, repo.removeCalledWithId)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != reservation.EventDeleted {
		t.Fatalf("expected deleted event, got %+v", publisher.events)
	}
}

func TestCancel_Stranger(t *testing.T) {
	repo := &mockRepository{getResult: reservation.Reservation{Id: 4, UserId: 2}}
	uc := NewCancel(repo, &mockPublisher{})

	_, err := uc.Cancel(context.Background(), Input{Actor: user.Actor{UserId: 3}, ReservationId: 4})
	if !errors.Is(err, fault.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.removeCalledWithId != 0 {
		t.Fatalf("expected Remove not to be called")
	}
}

func TestCancel_Admin(t *testing.T) {
	repo := &mockRepository{getResult: reservation.Reservation{Id: 4, UserId: 2}}
	uc := NewCancel(repo, &mockPublisher{})

	if _, err := uc.Cancel(context.Background(), Input{Actor: user.Actor{UserId: 3, IsAdmin: true}, ReservationId: 4}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestCancel_NotFound(t *testing.T) {
	repo := &mockRepository{getErr: reservation.NotFound(4)}
	uc := NewCancel(repo, &mockPublisher{})

	if _, err := uc.Cancel(context.Background(), Input{Actor: user.Actor{UserId: 3}, ReservationId: 4}); !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancel_RemoveError(t *testing.T) {
	repo := &mockRepository{getResult: reservation.Reservation{Id: 4, UserId: 2}, removeErr: errors.New("disk full")}
	uc := NewCancel(repo, &mockPublisher{})

	_, err := uc.Cancel(context.Background(), Input{Actor: user.Actor{UserId: 2}, ReservationId: 4})
	if err == nil || fault.IsClientError(err) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}
