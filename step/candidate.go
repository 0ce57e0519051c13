package step

import (
	"github.com/run-ci/docuserver/store"
	log "github.com/sirupsen/logrus"
)

// Candidate is a step found while searching a step that couldn't be
// resolved directly. It only lives for the duration of one scan.
type Candidate struct {
	UseCase  string
	Scenario string
	Page     string

	PageOccurrence       int
	StepInPageOccurrence int

	// MatchingLabels counts labels shared with the request.
	MatchingLabels int
}

// newCandidate scores a step node against the requested labels. The labels
// of a step are its own together with those of its scenario and use case.
// Step nodes with a malformed packed id return an error.
func newCandidate(usecase, scenario, stepnode store.ObjectTreeNode, requested labelSet) (Candidate, error) {
	page, pageocc, stepocc, err := store.UnpackStepID(stepnode.Name)
	if err != nil {
		return Candidate{}, err
	}

	labels := newLabelSet(usecase.Labels, scenario.Labels, stepnode.Labels)

	return Candidate{
		UseCase:              usecase.Name,
		Scenario:             scenario.Name,
		Page:                 page,
		PageOccurrence:       pageocc,
		StepInPageOccurrence: stepocc,
		MatchingLabels:       labels.matching(requested),
	}, nil
}

// Identifier returns the identifier of the candidate step in the build of
// from, keeping the labels of the request.
func (c Candidate) Identifier(from Identifier) Identifier {
	id := from
	id.UseCase = c.UseCase
	id.Scenario = c.Scenario
	id.Page = c.Page
	id.PageOccurrence = c.PageOccurrence
	id.StepInPageOccurrence = c.StepInPageOccurrence

	return id
}

// Scan searches an object tree for the step sharing the most labels with
// labels. The children of root are use cases, theirs are scenarios and
// theirs are steps; all are visited in storage order and the first of
// equally scored steps wins. Steps with malformed ids are skipped. If no
// step shares any label, the second return value is false.
func Scan(root store.ObjectTreeNode, labels []string) (Candidate, bool) {
	requested := newLabelSet(labels)
	if len(requested) == 0 {
		return Candidate{}, false
	}

	var best Candidate
	scanned, skipped := 0, 0

	for _, usecase := range root.Children {
		for _, scenario := range usecase.Children {
			for _, stepnode := range scenario.Children {
				c, err := newCandidate(usecase, scenario, stepnode, requested)
				if err != nil {
					logger.WithError(err).WithFields(log.Fields{
						"usecase":  usecase.Name,
						"scenario": scenario.Name,
					}).Debug("skipping step with malformed id")

					skipped++
					continue
				}

				scanned++

				if c.MatchingLabels > best.MatchingLabels {
					best = c
				}
			}
		}
	}

	logger.WithFields(log.Fields{
		"object":   root.Name,
		"scanned":  scanned,
		"skipped":  skipped,
		"matching": best.MatchingLabels,
	}).Debug("scanned for fallback candidates")

	return best, best.MatchingLabels > 0
}
