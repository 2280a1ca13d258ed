package category

import (
	"context"
	"strings"

	"github.com/giovaniif/instrument-closet/domain/fault"
)

type Category struct {
	Id       int64  `json:"id"`
	Category string `json:"category"`
}

func Normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fault.Invalid("Category name is required.")
	}
	return name, nil
}

func NotFound(id int64) error {
	return fault.NotFound("No Category with id: %d", id)
}

func Duplicate(name string) error {
	return fault.Conflict("Duplicate category: %s", name)
}

type Repository interface {
	Create(ctx context.Context, name string) (Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Rename(ctx context.Context, id int64, name string) (Category, error)
	Delete(ctx context.Context, id int64) error
	Tag(ctx context.Context, instrumentId int64, categoryId int64) error
	Untag(ctx context.Context, instrumentId int64, categoryId int64) error
	ForInstrument(ctx context.Context, instrumentId int64) ([]Category, error)
}
