package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/user"
	"github.com/giovaniif/instrument-closet/protocols"
)

var (
	ErrUnknownUsername  = fault.Unauthorized("Username not recognized")
	ErrInvalidPassword  = fault.Unauthorized("Invalid password")
	ErrPasswordTooShort = fault.Invalid("Password must be at least 5 characters.")
)

type Accounts struct {
	userRepository user.Repository
	hasher         protocols.PasswordHasher
	issuer         protocols.TokenIssuer
}

func NewAccounts(userRepository user.Repository, hasher protocols.PasswordHasher, issuer protocols.TokenIssuer) *Accounts {
	return &Accounts{
		userRepository: userRepository,
		hasher:         hasher,
		issuer:         issuer,
	}
}

// Register creates a non-admin account and signs a token for it.
func (a *Accounts) Register(ctx context.Context, input RegisterInput) (Output, error) {
	username, err := user.NormalizeUsername(input.Username)
	if err != nil {
		return Output{}, err
	}
	if len(input.Password) < 5 {
		return Output{}, ErrPasswordTooShort
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return Output{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := a.userRepository.Create(ctx, user.User{
		Username:  username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		IsAdmin:   input.IsAdmin,
	}, hash)
	if err != nil {
		return Output{}, err
	}
	return a.sign(created)
}

func (a *Accounts) Authenticate(ctx context.Context, username string, password string) (Output, error) {
	hash, err := a.userRepository.PasswordHash(ctx, username)
	if errors.Is(err, fault.ErrNotFound) {
		return Output{}, ErrUnknownUsername
	}
	if err != nil {
		return Output{}, err
	}
	if err := a.hasher.Compare(hash, password); err != nil {
		return Output{}, ErrInvalidPassword
	}

	u, err := a.userRepository.GetByUsername(ctx, username)
	if err != nil {
		return Output{}, err
	}
	return a.sign(u)
}

// Actor resolves a verified identity to the caller the scheduling use cases act for.
func (a *Accounts) Actor(ctx context.Context, username string, isAdmin bool) (user.Actor, error) {
	u, err := a.userRepository.GetByUsername(ctx, username)
	if errors.Is(err, fault.ErrNotFound) {
		return user.Actor{}, fault.Unauthorized("Must be logged in.")
	}
	if err != nil {
		return user.Actor{}, err
	}
	actor := user.ActorOf(u)
	actor.IsAdmin = isAdmin
	return actor, nil
}

func (a *Accounts) Get(ctx context.Context, username string) (user.User, error) {
	return a.userRepository.GetByUsername(ctx, username)
}

func (a *Accounts) List(ctx context.Context) ([]user.User, error) {
	users, err := a.userRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}

func (a *Accounts) Update(ctx context.Context, username string, patch user.Patch) (user.User, error) {
	current, err := a.userRepository.GetByUsername(ctx, username)
	if err != nil {
		return user.User{}, err
	}
	if patch.Empty() {
		return current, nil
	}
	updated := patch.Apply(current)
	if err := a.userRepository.Update(ctx, updated); err != nil {
		return user.User{}, fmt.Errorf("update user %s: %w", username, err)
	}
	return updated, nil
}

func (a *Accounts) Delete(ctx context.Context, username string) error {
	return a.userRepository.Delete(ctx, username)
}

func (a *Accounts) sign(u user.User) (Output, error) {
	token, err := a.issuer.Issue(u)
	if err != nil {
		return Output{}, fmt.Errorf("issue token: %w", err)
	}
	return Output{Token: token, User: u}, nil
}

type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	IsAdmin   bool
}

type Output struct {
	Token string
	User  user.User
}
