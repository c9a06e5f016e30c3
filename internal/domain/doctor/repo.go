package doctor

import "context"

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, doctorID string) (*Doctor, error)
	GetByUsername(ctx context.Context, username string) (*Doctor, error)
	ListByIDs(ctx context.Context, doctorIDs []string) ([]*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
	Delete(ctx context.Context, doctorID string) error
	// MaxIDAtOrAbove returns the highest doctor id >= atLeast, or "" when
	// only seeded ids below the floor exist.
	MaxIDAtOrAbove(ctx context.Context, atLeast string) (string, error)
}
