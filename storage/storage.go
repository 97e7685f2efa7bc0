package storage

import (
	"context"
	"errors"

	"github.com/awantoch/flowviz/model"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a render ID is unknown.
var ErrNotFound = errors.New("render not found")

// Storage persists rendered diagrams.
type Storage interface {
	SaveRender(ctx context.Context, r *model.Render) error
	GetRender(ctx context.Context, id uuid.UUID) (*model.Render, error)
	// ListRenders returns renders newest first.
	ListRenders(ctx context.Context) ([]*model.Render, error)
	DeleteRender(ctx context.Context, id uuid.UUID) error
	Close() error
}
