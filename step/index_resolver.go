package step

import (
	"github.com/run-ci/docuserver/store"
	log "github.com/sirupsen/logrus"
)

// IndexResolver finds the index of a step within one loaded scenario.
type IndexResolver struct{}

// ResolveStepIndex looks up the step named by id in ps.
//
// When the page is there but the occurrence or step doesn't exist anymore,
// a coordinate is corrected only if a single candidate is left for it: a
// page occurrence out of range is corrected to 0 when the page occurs
// exactly once, a step out of range is corrected to 0 when the page
// occurrence has exactly one step. Anything else is NotFoundLocally.
func (IndexResolver) ResolveStepIndex(ps store.ScenarioPageSteps, id Identifier) ResolveStepIndexResult {
	logger := logger.WithFields(log.Fields{
		"step": id.String(),
	})

	if id.PageOccurrence < 0 || id.StepInPageOccurrence < 0 {
		logger.Debug("negative occurrence")
		return notFoundLocally()
	}

	occs := ps.Occurrences(id.Page)
	if len(occs) == 0 {
		logger.Debug("page not in scenario")
		return notFoundLocally()
	}

	pageocc, ok := correct(id.PageOccurrence, len(occs))
	if !ok {
		logger.WithField("occurrences", len(occs)).
			Debug("page occurrence gone and more than one left")
		return notFoundLocally()
	}

	steps := occs[pageocc].Steps
	stepocc, ok := correct(id.StepInPageOccurrence, len(steps))
	if !ok {
		logger.WithField("steps", len(steps)).
			Debug("step gone and more than one left in page occurrence")
		return notFoundLocally()
	}

	if pageocc == id.PageOccurrence && stepocc == id.StepInPageOccurrence {
		return foundIndex(steps[stepocc].Index)
	}

	target := id
	target.PageOccurrence = pageocc
	target.StepInPageOccurrence = stepocc

	logger.WithField("target", target.String()).Debug("step moved within scenario")

	return redirectIndex(target)
}

// correct returns the requested position if it's within n, or 0 if n is
// exactly 1. The second return value is false if there's no single
// position to go to.
func correct(requested, n int) (int, bool) {
	if requested < n {
		return requested, true
	}

	if n == 1 {
		return 0, true
	}

	return 0, false
}
