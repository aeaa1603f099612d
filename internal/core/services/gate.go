package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
	"github.com/custodia-labs/opus/internal/logger"
)

// ClassificationGate decides whether a track belongs to the target genre.
// It fails closed: a track that cannot be classified is rejected.
type ClassificationGate struct {
	classifier  driven.Classifier
	targetLabel string
	otherLabel  string
	threshold   float64
}

// NewClassificationGate creates a gate over classifier. Empty labels and a
// non-positive threshold fall back to the defaults.
func NewClassificationGate(classifier driven.Classifier, settings domain.ClassifierSettings) *ClassificationGate {
	g := &ClassificationGate{
		classifier:  classifier,
		targetLabel: settings.TargetLabel,
		otherLabel:  settings.OtherLabel,
		threshold:   settings.Threshold,
	}
	if g.targetLabel == "" {
		g.targetLabel = domain.DefaultTargetLabel
	}
	if g.otherLabel == "" {
		g.otherLabel = domain.DefaultOtherLabel
	}
	if g.threshold <= 0 {
		g.threshold = domain.DefaultAcceptThreshold
	}
	return g
}

// Accepts returns true only if the top label is the target label with a
// confidence strictly above the threshold.
func (g *ClassificationGate) Accepts(ctx context.Context, title, composer, description string) bool {
	if g.classifier == nil {
		logger.Warn("Genre classification unavailable, rejecting %s by %s", title, composer)
		return false
	}

	text := fmt.Sprintf("%s by %s. %s", title, composer, description)
	result, err := g.classifier.Classify(ctx, text, []string{g.targetLabel, g.otherLabel})
	if err != nil {
		logger.Error("Genre classification failed for %s: %v", title, err)
		return false
	}

	logger.Info("Genre prediction: %s (%.2f) for %s by %s", result.Label, result.Score, title, composer)
	return result.Label == g.targetLabel && result.Score > g.threshold
}
