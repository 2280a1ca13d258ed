package user

import (
	"context"
	"strings"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/reservation"
)

type User struct {
	Id        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Actor is the verified caller a use case acts on behalf of.
type Actor struct {
	UserId   int64
	Username string
	IsAdmin  bool
}

func ActorOf(u User) Actor {
	return Actor{UserId: u.Id, Username: u.Username, IsAdmin: u.IsAdmin}
}

// CanManage is true for admins and for the reservation's owner.
func CanManage(actor Actor, r reservation.Reservation) bool {
	return actor.IsAdmin || actor.UserId == r.UserId
}

// CanBookFor is true when actor may create a reservation owned by userId.
func CanBookFor(actor Actor, userId int64) bool {
	return actor.IsAdmin || actor.UserId == userId
}

type Patch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

func (p Patch) Apply(u User) User {
	merged := u
	if p.FirstName != nil {
		merged.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		merged.LastName = *p.LastName
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.Phone != nil {
		merged.Phone = *p.Phone
	}
	return merged
}

func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil
}

func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fault.Invalid("Username is required.")
	}
	return username, nil
}

func NotFound(username string) error {
	return fault.NotFound("No User with username: %s", username)
}

func NotFoundById(id int64) error {
	return fault.NotFound("No User with id: %d", id)
}

func Duplicate(username string) error {
	return fault.Conflict("Duplicate username: %s", username)
}

type Repository interface {
	Create(ctx context.Context, u User, passwordHash string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetById(ctx context.Context, id int64) (User, error)
	PasswordHash(ctx context.Context, username string) (string, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, username string) error
}
