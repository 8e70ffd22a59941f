package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// MappingCache is the sync workflow's view of the mapping repository.
//
// Misses are cached too: a stored mapping with an empty target id means a search already
// came up empty, so the workflow skips the API call until the cache is cleared or a
// remap is forced.
type MappingCache struct {
	repo *MappingRepository
}

// NewMappingCache creates a cache over the given repository
func NewMappingCache(repo *MappingRepository) *MappingCache {
	return &MappingCache{repo: repo}
}

// Lookup returns the cached mapping for a source track, or nil when none exists.
func (c *MappingCache) Lookup(sourceID string) (*models.PersistedMapping, error) {
	mapping, err := c.repo.GetBySourceID(sourceID)
	if errors.Is(err, shared.ErrMappingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

// Store caches a match result, replacing any previous mapping for the same source track.
// targetID may be empty to record a miss. An empty algorithm defaults to the basic version.
func (c *MappingCache) Store(sourceID, targetID, algorithm string, confidence float64) error {
	existing, err := c.Lookup(sourceID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.SetTargetID(targetID)
		if algorithm != "" {
			existing.SetAlgorithm(algorithm)
		}
		existing.SetConfidence(confidence)
		if err := c.repo.Update(existing); err != nil {
			return fmt.Errorf("failed to replace mapping for %s: %w", sourceID, err)
		}
		return nil
	}

	mapping := models.NewPersistedMapping(0, sourceID, targetID, algorithm, confidence)
	if err := c.repo.Create(mapping); err != nil {
		return fmt.Errorf("failed to cache mapping for %s: %w", sourceID, err)
	}
	return nil
}

// ShouldRemap reports whether a source track needs a fresh match attempt.
func (c *MappingCache) ShouldRemap(sourceID string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	mapping, err := c.Lookup(sourceID)
	if err != nil {
		return false, err
	}
	return mapping == nil, nil
}

// Count returns the number of cached mappings.
func (c *MappingCache) Count() (int, error) { return c.repo.Count() }

// ClearAll drops every cached mapping.
func (c *MappingCache) ClearAll() (int, error) { return c.repo.ClearAll() }

// ClearByAlgorithm drops mappings for one algorithm version; manual selections survive
// unless "manual" is named explicitly.
func (c *MappingCache) ClearByAlgorithm(algorithm string) (int, error) {
	return c.repo.ClearByAlgorithm(algorithm)
}
