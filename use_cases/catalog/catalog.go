package catalog

import (
	"context"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/instrument"
)

type Catalog struct {
	categoryRepository   category.Repository
	instrumentRepository instrument.Repository
}

func NewCatalog(categoryRepository category.Repository, instrumentRepository instrument.Repository) *Catalog {
	return &Catalog{
		categoryRepository:   categoryRepository,
		instrumentRepository: instrumentRepository,
	}
}

func (c *Catalog) Create(ctx context.Context, name string) (category.Category, error) {
	name, err := category.Normalize(name)
	if err != nil {
		return category.Category{}, err
	}
	return c.categoryRepository.Create(ctx, name)
}

func (c *Catalog) Get(ctx context.Context, id int64) (category.Category, error) {
	return c.categoryRepository.Get(ctx, id)
}

func (c *Catalog) List(ctx context.Context) ([]category.Category, error) {
	categories, err := c.categoryRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []category.Category{}
	}
	return categories, nil
}

func (c *Catalog) Rename(ctx context.Context, id int64, name string) (category.Category, error) {
	name, err := category.Normalize(name)
	if err != nil {
		return category.Category{}, err
	}
	return c.categoryRepository.Rename(ctx, id, name)
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	return c.categoryRepository.Delete(ctx, id)
}

// Tag is idempotent: tagging twice leaves a single tag.
func (c *Catalog) Tag(ctx context.Context, instrumentId int64, categoryId int64) error {
	if err := c.exist(ctx, instrumentId, categoryId); err != nil {
		return err
	}
	return c.categoryRepository.Tag(ctx, instrumentId, categoryId)
}

func (c *Catalog) Untag(ctx context.Context, instrumentId int64, categoryId int64) error {
	if err := c.exist(ctx, instrumentId, categoryId); err != nil {
		return err
	}
	return c.categoryRepository.Untag(ctx, instrumentId, categoryId)
}

func (c *Catalog) exist(ctx context.Context, instrumentId int64, categoryId int64) error {
	if _, err := c.instrumentRepository.Get(ctx, instrumentId); err != nil {
		return err
	}
	_, err := c.categoryRepository.Get(ctx, categoryId)
	return err
}
