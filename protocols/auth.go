package protocols

import "github.com/giovaniif/instrument-closet/domain/user"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type TokenIssuer interface {
	Issue(u user.User) (string, error)
}
