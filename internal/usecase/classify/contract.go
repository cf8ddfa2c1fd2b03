package classify

import (
	"context"

	"github.com/mobinnet/towersearch/internal/domain"
)

// LocationClassifier decides the probable install location of a material.
// Implementations return DefaultLocation themselves when the model output
// is unusable; errors mean the call could not be made at all.
type LocationClassifier interface {
	ClassifyLocation(ctx context.Context, item domain.Item) (domain.Location, error)
}
