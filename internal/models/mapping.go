package models

import (
	"fmt"
	"time"
)

// Mapping algorithm versions. AlgorithmManual marks interactive user selections so they
// survive cache clears of a superseded automatic algorithm.
const (
	AlgorithmBasic  = "basic"
	AlgorithmManual = "manual"
)

// PersistedMapping caches the correspondence between a source-library track and a Spotify
// track, keyed by the match algorithm version that produced it. A mapping with an empty
// TargetID records a search miss so repeated runs skip the API call.
type PersistedMapping struct {
	id         string
	sequence   int
	sourceID   string
	targetID   string
	algorithm  string
	confidence float64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewPersistedMapping creates a mapping entry for a source track.
// targetID may be empty to record that no match was found.
func NewPersistedMapping(sequence int, sourceID, targetID, algorithm string, confidence float64) *PersistedMapping {
	now := time.Now()
	if algorithm == "" {
		algorithm = AlgorithmBasic
	}
	return &PersistedMapping{
		sequence:   sequence,
		sourceID:   sourceID,
		targetID:   targetID,
		algorithm:  algorithm,
		confidence: confidence,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (m *PersistedMapping) ID() string           { return m.id }
func (m *PersistedMapping) CreatedAt() time.Time { return m.createdAt }
func (m *PersistedMapping) UpdatedAt() time.Time { return m.updatedAt }

func (m *PersistedMapping) Sequence() int       { return m.sequence }
func (m *PersistedMapping) SourceID() string    { return m.sourceID }
func (m *PersistedMapping) TargetID() string    { return m.targetID }
func (m *PersistedMapping) Algorithm() string   { return m.algorithm }
func (m *PersistedMapping) Confidence() float64 { return m.confidence }

// Matched reports whether this entry records a successful match.
func (m *PersistedMapping) Matched() bool { return m.targetID != "" }

func (m *PersistedMapping) SetID(id string)             { m.id = id }
func (m *PersistedMapping) SetUpdatedAt(t time.Time)    { m.updatedAt = t }
func (m *PersistedMapping) SetCreatedAt(t time.Time)    { m.createdAt = t }
func (m *PersistedMapping) SetTargetID(id string)       { m.targetID = id }
func (m *PersistedMapping) SetAlgorithm(algo string)    { m.algorithm = algo }
func (m *PersistedMapping) SetConfidence(score float64) { m.confidence = score }

// Validate checks that the mapping references a source track and an algorithm version.
func (m *PersistedMapping) Validate() error {
	if m.sourceID == "" {
		return fmt.Errorf("mapping missing source track id")
	}
	if m.algorithm == "" {
		return fmt.Errorf("mapping missing algorithm version")
	}
	if m.confidence < 0 || m.confidence > 1 {
		return fmt.Errorf("mapping confidence %f out of range [0, 1]", m.confidence)
	}
	return nil
}
