package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	spaceserrors "silvalley/internal/spaces/errors"
	"silvalley/internal/spaces/repository"
	"silvalley/internal/spaces/validator"
	"silvalley/pkg/config"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/model"
	"silvalley/pkg/sanitizer"
)

type SpaceService interface {
	Create(ctx context.Context, space *model.Space) error
	GetByID(ctx context.Context, id string) (*model.Space, error)
	GetAll(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, int64, error)
	Update(ctx context.Context, id string, updates *model.SpaceUpdate) error
	Delete(ctx context.Context, id string) error
}

type spaceService struct {
	repo      repository.SpaceRepository
	validator *validator.SpaceValidator
	cfg       *config.Config
}

func NewSpaceService(
	repo repository.SpaceRepository,
	validator *validator.SpaceValidator,
	cfg *config.Config,
) SpaceService {
	return &spaceService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *spaceService) Create(ctx context.Context, space *model.Space) error {
	s.sanitize(space)

	if err := s.validator.Validate(space); err != nil {
		s.cfg.Log.Warn("Space validation failed",
			"name", space.Name,
			"location", space.Location,
			"error", err,
		)
		return apperrors.Validation("Space validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, space); err != nil {
		s.cfg.Log.Error("Failed to create space",
			"name", space.Name,
			"location", space.Location,
			"error", err,
		)
		return apperrors.Internal("Failed to create space", err)
	}

	s.cfg.Log.Info("Space created successfully",
		"id", space.ID,
		"name", space.Name,
		"location", space.Location,
		"available_desks", space.AvailableDesks,
	)

	return nil
}

func (s *spaceService) GetByID(ctx context.Context, id string) (*model.Space, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Space ID cannot be empty")
	}

	space, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, spaceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Space", id)
		}
		if errors.Is(err, spaceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid space ID format")
		}
		s.cfg.Log.Error("Failed to get space by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve space", err)
	}

	space.Availability = space.AvailabilityStatus()
	return space, nil
}

func (s *spaceService) GetAll(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	if filter == nil {
		filter = &model.SpaceFilter{}
	}
	if err := s.sanitizeFilter(filter); err != nil {
		return nil, 0, err
	}

	var count int64
	var spaces []*model.Space
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count spaces", "error", err)
			errCount = apperrors.Internal("Failed to count spaces", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		spaces, err = s.repo.FindAll(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get spaces",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve spaces", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	for _, space := range spaces {
		space.Availability = space.AvailabilityStatus()
	}

	return spaces, count, nil
}

func (s *spaceService) Update(ctx context.Context, id string, updates *model.SpaceUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Space ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, spaceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Space", id)
		}
		if errors.Is(err, spaceserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid space ID format")
		}
		return apperrors.Internal("Failed to check space existence", err)
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeSpaceUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Space validation failed",
			"id", id,
			"name", merged.Name,
			"error", err,
		)
		return apperrors.Validation("Space validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update space",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update space", err)
	}

	s.cfg.Log.Info("Space updated successfully",
		"id", id,
		"name", merged.Name,
	)

	return nil
}

func (s *spaceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Space ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, spaceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Space", id)
		}
		if errors.Is(err, spaceserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid space ID format")
		}
		s.cfg.Log.Error("Failed to delete space",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete space", err)
	}

	s.cfg.Log.Info("Space deleted successfully", "id", id)

	return nil
}

func (s *spaceService) sanitize(space *model.Space) {
	space.Name = sanitizer.NormalizeName(space.Name)
	space.Location = sanitizer.NormalizeLocation(space.Location)
	space.Description = sanitizer.TrimAndNormalize(space.Description)
	space.ImageURL = sanitizer.NormalizeURL(space.ImageURL)
}

func (s *spaceService) sanitizeUpdate(updates *model.SpaceUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Location != "" {
		updates.Location = sanitizer.NormalizeLocation(updates.Location)
	}
	if updates.Description != nil {
		normalized := sanitizer.TrimAndNormalize(*updates.Description)
		updates.Description = &normalized
	}
	if updates.ImageURL != nil {
		normalized := sanitizer.NormalizeURL(*updates.ImageURL)
		updates.ImageURL = &normalized
	}
}

// sanitizeFilter normalizes free-text criteria and verifies that the
// requested amenity names exist in the catalog schema. Unknown names are
// rejected rather than silently dropped so a typo does not look like an
// empty catalog.
func (s *spaceService) sanitizeFilter(filter *model.SpaceFilter) error {
	filter.Search = sanitizer.TrimAndNormalize(filter.Search)
	filter.Location = sanitizer.TrimAndNormalize(filter.Location)
	filter.Amenities = sanitizer.NormalizeAmenities(filter.Amenities)

	if filter.MinPrice != nil && *filter.MinPrice < 0 {
		return apperrors.InvalidInput("min_price cannot be negative")
	}
	if filter.MaxPrice != nil && *filter.MaxPrice < 0 {
		return apperrors.InvalidInput("max_price cannot be negative")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return apperrors.InvalidInput("min_price cannot exceed max_price")
	}

	for _, amenity := range filter.Amenities {
		if !knownAmenity(amenity) {
			return apperrors.InvalidInput(fmt.Sprintf(
				"unknown amenity %q, valid amenities are: %s",
				amenity,
				strings.Join(model.AmenityNames, ", "),
			))
		}
	}

	return nil
}

func knownAmenity(name string) bool {
	for _, known := range model.AmenityNames {
		if name == known {
			return true
		}
	}
	return false
}

func (s *spaceService) mergeSpaceUpdates(existing *model.Space, updates *model.SpaceUpdate) *model.Space {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}

	if updates.Location != "" {
		merged.Location = updates.Location
	}

	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	if updates.PricePerDay != nil {
		merged.PricePerDay = *updates.PricePerDay
	}

	if updates.AvailableDesks != nil {
		merged.AvailableDesks = *updates.AvailableDesks
	}

	if updates.Amenities != nil {
		merged.Amenities = *updates.Amenities
	}

	if updates.Rating != nil {
		merged.Rating = *updates.Rating
	}

	if updates.ReviewCount != nil {
		merged.ReviewCount = *updates.ReviewCount
	}

	if updates.ImageURL != nil {
		merged.ImageURL = *updates.ImageURL
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
