package user

import (
	"testing"

	"github.com/giovaniif/instrument-closet/domain/reservation"
)

func TestCanManage(t *testing.T) {
	resv := reservation.Reservation{Id: 1, UserId: 7}

	testCases := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner", Actor{UserId: 7}, true},
		{"admin", Actor{UserId: 99, IsAdmin: true}, true},
		{"someone else", Actor{UserId: 8}, false},
		{"zero actor", Actor{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanManage(tc.actor, resv); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanBookFor(t *testing.T) {
	if !CanBookFor(Actor{UserId: 3}, 3) {
		t.Fatalf("expected user to book for themselves")
	}
	if CanBookFor(Actor{UserId: 3}, 4) {
		t.Fatalf("expected user to be refused booking for someone else")
	}
	if !CanBookFor(Actor{UserId: 3, IsAdmin: true}, 4) {
		t.Fatalf("expected admin to book for anyone")
	}
}

func TestPatchApply(t *testing.T) {
	email := "new@email.com"
	u := User{Id: 1, Username: "u1", Email: "old@email.com", FirstName: "first"}
	merged := Patch{Email: &email}.Apply(u)
	if merged.Email != "new@email.com" || merged.FirstName != "first" || merged.Username != "u1" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	if u.Email != "old@email.com" {
		t.Fatalf("expected original untouched")
	}
}
