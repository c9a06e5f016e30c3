package patient

import "context"

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, patientID string) (*Patient, error)
	ListByIDs(ctx context.Context, patientIDs []string) ([]*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	// MaxID returns the highest existing patient identifier, or "" when
	// there are no patients yet.
	MaxID(ctx context.Context) (string, error)
}
