// Package classify assigns materials a probable install location on site.
package classify

import (
	"context"
	"fmt"

	"github.com/mobinnet/towersearch/internal/domain"
)

// Service handles material location classification.
type Service struct {
	classifier LocationClassifier
}

// New creates a classification service.
func New(classifier LocationClassifier) *Service {
	return &Service{classifier: classifier}
}

// Classify determines where a material most likely lives: top of the
// tower, inside the rack, or at the rack bottom. Items without a
// description cannot be classified.
func (s *Service) Classify(ctx context.Context, item domain.Item) (domain.Location, error) {
	if item.Description() == "" {
		return "", fmt.Errorf("%w: description is required for classification", domain.ErrInvalidItem)
	}

	loc, err := s.classifier.ClassifyLocation(ctx, item)
	if err != nil {
		return "", fmt.Errorf("classify location: %w", err)
	}
	return loc, nil
}
