package step

import (
	log "github.com/sirupsen/logrus"
)

// Loader resolves step identifiers to a step, a redirect or nothing.
type Loader struct {
	scenarios ScenarioLoader
	resolver  IndexResolver
}

// NewLoader returns a Loader using scenarios to load and search steps.
func NewLoader(scenarios ScenarioLoader) *Loader {
	return &Loader{
		scenarios: scenarios,
	}
}

// LoadStep resolves id. First the scenario is loaded and the step is
// looked up in it. If the scenario or the step within it can't be found,
// the page is searched for in all use cases. Errors are only returned when
// the store fails, never for steps that don't exist.
func (l *Loader) LoadStep(id Identifier) (LoaderResult, error) {
	logger := logger.WithFields(log.Fields{
		"step": id.String(),
	})

	logger.Debug("loading scenario")

	scenario, err := l.scenarios.LoadScenario(id)
	if err != nil {
		return LoaderResult{}, err
	}

	switch {
	case scenario.Found():
		return l.resolveStepIndex(id, scenario)
	case scenario.HasRedirect():
		return RedirectTo(*scenario.Redirect), nil
	}

	return l.findPageInAllUseCases(id)
}

func (l *Loader) resolveStepIndex(id Identifier, scenario LoadScenarioResult) (LoaderResult, error) {
	ps := *scenario.PageSteps

	res := l.resolver.ResolveStepIndex(ps, id)

	switch res.Outcome {
	case Found:
		stats := ps.StepStatistics(id.Page, id.PageOccurrence)
		return FoundStep(res.Index, id, stats), nil
	case Redirect:
		return RedirectTo(res.Target), nil
	}

	return l.findPageInAllUseCases(id)
}

func (l *Loader) findPageInAllUseCases(id Identifier) (LoaderResult, error) {
	logger.WithField("step", id.String()).Debug("searching page in all use cases")

	found, err := l.scenarios.FindPageInRequestedUseCaseAndInAllUseCases(id)
	if err != nil {
		return LoaderResult{}, err
	}

	if found.HasRedirect() {
		return RedirectTo(*found.Redirect), nil
	}

	return NotFoundStep(), nil
}
