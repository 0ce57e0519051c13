package step

import (
	"github.com/run-ci/docuserver/store"
)

// StepDetails is everything shown for a found step.
type StepDetails struct {
	Step           store.Step           `json:"step"`
	Navigation     store.StepNavigation `json:"stepNavigation"`
	Statistics     store.StepStatistics `json:"stepStatistics"`
	UseCaseLabels  []string             `json:"useCaseLabels"`
	ScenarioLabels []string             `json:"scenarioLabels"`
}

// Response is a resolved step ready to be sent to a client. Details is
// set when found, Location on redirect.
type Response struct {
	Outcome  Outcome
	Details  *StepDetails
	Location string
}

// detailsStore is the part of the store needed to load step details.
type detailsStore interface {
	LoadUseCase(b store.BuildIdentifier, usecase string) (store.UseCase, error)
	LoadScenario(store.ScenarioIdentifier) (store.Scenario, error)
	LoadScenarioPageSteps(store.ScenarioIdentifier) (store.ScenarioPageSteps, error)
	LoadStep(id store.ScenarioIdentifier, index int) (store.Step, error)
}

// ResponseFactory turns loader results into responses.
type ResponseFactory struct {
	st detailsStore
}

// NewResponseFactory returns a ResponseFactory loading details from st.
func NewResponseFactory(st detailsStore) *ResponseFactory {
	return &ResponseFactory{st: st}
}

// CreateResponse builds the response for res. requested is the build the
// client asked for before aliases were resolved; redirects go there so
// that clients keep following the alias.
func (f *ResponseFactory) CreateResponse(res LoaderResult, requested store.BuildIdentifier) (Response, error) {
	switch res.Outcome {
	case Found:
		details, err := f.details(res)
		if err != nil {
			return Response{}, err
		}

		return Response{Outcome: Found, Details: &details}, nil

	case Redirect:
		target := res.Target.WithBuild(requested)
		return Response{Outcome: Redirect, Location: target.RedirectURI()}, nil
	}

	return Response{Outcome: NotFound}, nil
}

func (f *ResponseFactory) details(res LoaderResult) (StepDetails, error) {
	id := res.Identifier.ScenarioIdentifier()

	s, err := f.st.LoadStep(id, res.Index)
	if err != nil {
		return StepDetails{}, err
	}

	ps, err := f.st.LoadScenarioPageSteps(id)
	if err != nil {
		return StepDetails{}, err
	}

	nav, ok := ps.Navigation(res.Index)
	if !ok {
		return StepDetails{}, store.ErrStepNotFound
	}

	sc, err := f.st.LoadScenario(id)
	if err != nil {
		return StepDetails{}, err
	}

	uc, err := f.st.LoadUseCase(id.BuildIdentifier, id.UseCase)
	if err != nil {
		return StepDetails{}, err
	}

	return StepDetails{
		Step:           s,
		Navigation:     nav,
		Statistics:     res.Statistics,
		UseCaseLabels:  nonNil(uc.Labels),
		ScenarioLabels: nonNil(sc.Labels),
	}, nil
}

func nonNil(labels []string) []string {
	if labels == nil {
		return []string{}
	}

	return labels
}
