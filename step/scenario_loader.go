package step

import (
	"github.com/run-ci/docuserver/store"
	log "github.com/sirupsen/logrus"
)

// LoadScenarioResult is either a loaded scenario, a redirect to where the
// step might be, or neither.
type LoadScenarioResult struct {
	PageSteps *store.ScenarioPageSteps
	Redirect  *Identifier
}

// Found reports whether the requested scenario was loaded.
func (r LoadScenarioResult) Found() bool {
	return r.PageSteps != nil
}

// HasRedirect reports whether the result holds a redirect.
func (r LoadScenarioResult) HasRedirect() bool {
	return r.PageSteps == nil && r.Redirect != nil
}

// ScenarioLoader loads the scenario a step identifier points into, or
// finds out where the step went. Implementations only read.
type ScenarioLoader interface {
	LoadScenario(Identifier) (LoadScenarioResult, error)
	FindPageInRequestedUseCaseAndInAllUseCases(Identifier) (LoadScenarioResult, error)
}

// scenarioStore is the part of the store a StoreScenarioLoader needs.
type scenarioStore interface {
	LoadUseCases(store.BuildIdentifier) ([]store.UseCaseScenarios, error)
	LoadScenarioPageSteps(store.ScenarioIdentifier) (store.ScenarioPageSteps, error)
	LoadObjectIndex(b store.BuildIdentifier, objtype, name string) (store.ObjectTreeNode, error)
}

// StoreScenarioLoader is a ScenarioLoader reading from a documentation
// store.
type StoreScenarioLoader struct {
	st scenarioStore
}

// NewStoreScenarioLoader returns a ScenarioLoader reading from st.
func NewStoreScenarioLoader(st scenarioStore) *StoreScenarioLoader {
	return &StoreScenarioLoader{st: st}
}

// LoadScenario loads the page steps of the requested scenario. If the
// scenario isn't in the requested use case but exactly one other use case
// has a scenario with that name showing the requested page, the result
// redirects there.
func (l *StoreScenarioLoader) LoadScenario(id Identifier) (LoadScenarioResult, error) {
	logger := logger.WithFields(log.Fields{
		"step": id.String(),
	})

	ps, err := l.st.LoadScenarioPageSteps(id.ScenarioIdentifier())
	switch err {
	case nil:
		return LoadScenarioResult{PageSteps: &ps}, nil
	case store.ErrScenarioNotFound:
	case store.ErrBuildNotFound:
		logger.Debug("build not found")
		return LoadScenarioResult{}, nil
	default:
		return LoadScenarioResult{}, err
	}

	logger.Debug("scenario not in use case, looking in other use cases")

	usecases, err := l.st.LoadUseCases(id.BuildIdentifier())
	if err != nil {
		return LoadScenarioResult{}, err
	}

	moved := []string{}
	for _, uc := range usecases {
		if uc.UseCase.Name == id.UseCase {
			continue
		}

		for _, sc := range uc.Scenarios {
			if sc == id.Scenario {
				moved = append(moved, uc.UseCase.Name)
			}
		}
	}

	if len(moved) != 1 {
		logger.WithField("candidates", len(moved)).Debug("no single use case with the scenario")
		return LoadScenarioResult{}, nil
	}

	target := id
	target.UseCase = moved[0]

	ps, err = l.st.LoadScenarioPageSteps(target.ScenarioIdentifier())
	if err != nil {
		return LoadScenarioResult{}, err
	}

	if len(ps.Occurrences(id.Page)) == 0 {
		logger.WithField("usecase", target.UseCase).Debug("moved scenario doesn't show the page")
		return LoadScenarioResult{}, nil
	}

	logger.WithField("usecase", target.UseCase).Debug("scenario moved to another use case")

	return LoadScenarioResult{Redirect: &target}, nil
}

// FindPageInRequestedUseCaseAndInAllUseCases searches every step showing
// the requested page, in all use cases of the build including the
// requested one, for the one sharing most labels with the request.
func (l *StoreScenarioLoader) FindPageInRequestedUseCaseAndInAllUseCases(id Identifier) (LoadScenarioResult, error) {
	logger := logger.WithFields(log.Fields{
		"step": id.String(),
	})

	tree, err := l.st.LoadObjectIndex(id.BuildIdentifier(), store.ObjectTypePage, id.Page)
	switch err {
	case nil:
	case store.ErrObjectIndexNotFound, store.ErrBuildNotFound:
		logger.Debug("page not in build")
		return LoadScenarioResult{}, nil
	default:
		return LoadScenarioResult{}, err
	}

	c, ok := Scan(tree, id.Labels())
	if !ok {
		logger.Debug("no step with matching labels")
		return LoadScenarioResult{}, nil
	}

	target := c.Identifier(id)

	logger.WithFields(log.Fields{
		"target":   target.String(),
		"matching": c.MatchingLabels,
	}).Debug("found fallback step")

	return LoadScenarioResult{Redirect: &target}, nil
}
