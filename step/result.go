package step

import (
	"github.com/run-ci/docuserver/store"
)

// Outcome is the kind of a resolution result.
type Outcome int

// The possible outcomes of resolving a step. NotFoundLocally only occurs
// while resolving within one scenario.
const (
	NotFound Outcome = iota
	Found
	Redirect
	NotFoundLocally
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Redirect:
		return "redirect"
	case NotFoundLocally:
		return "not_found_locally"
	default:
		return "not_found"
	}
}

// ResolveStepIndexResult is the outcome of looking up a step within one
// scenario.
type ResolveStepIndexResult struct {
	Outcome Outcome
	// Index is the index of the step in the scenario when found.
	Index int
	// Target is where to redirect to.
	Target Identifier
}

func foundIndex(index int) ResolveStepIndexResult {
	return ResolveStepIndexResult{Outcome: Found, Index: index}
}

func redirectIndex(target Identifier) ResolveStepIndexResult {
	return ResolveStepIndexResult{Outcome: Redirect, Target: target}
}

func notFoundLocally() ResolveStepIndexResult {
	return ResolveStepIndexResult{Outcome: NotFoundLocally}
}

// LoaderResult is the terminal outcome of loading a step: Found, Redirect
// or NotFound.
type LoaderResult struct {
	Outcome Outcome

	// Set when found.
	Index      int
	Identifier Identifier
	Statistics store.StepStatistics

	// Set on redirect.
	Target Identifier
}

// FoundStep returns a result for a step that exists where it was asked
// for.
func FoundStep(index int, id Identifier, stats store.StepStatistics) LoaderResult {
	return LoaderResult{
		Outcome:    Found,
		Index:      index,
		Identifier: id,
		Statistics: stats,
	}
}

// RedirectTo returns a result sending the client to target.
func RedirectTo(target Identifier) LoaderResult {
	return LoaderResult{Outcome: Redirect, Target: target}
}

// NotFoundStep returns a result for a step that doesn't exist anymore.
func NotFoundStep() LoaderResult {
	return LoaderResult{Outcome: NotFound}
}
