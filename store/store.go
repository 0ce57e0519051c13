package store

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry

var (
	// ErrBuildNotFound is returned when a branch/build combination
	// isn't in the store.
	ErrBuildNotFound = errors.New("build not found")
	// ErrUseCaseNotFound is returned when a use case isn't found in
	// a build.
	ErrUseCaseNotFound = errors.New("use case not found")
	// ErrScenarioNotFound is returned when a scenario isn't found in
	// a use case.
	ErrScenarioNotFound = errors.New("scenario not found")
	// ErrStepNotFound is returned when a step index is out of range
	// for a scenario.
	ErrStepNotFound = errors.New("step not found")
	// ErrObjectIndexNotFound is returned when there's no object index
	// for the requested object type and name.
	ErrObjectIndexNotFound = errors.New("object index not found")
	// ErrAliasNotFound is returned when a branch or build name is
	// neither a real name nor a known alias.
	ErrAliasNotFound = errors.New("alias not found")
	// ErrInvalidBuild is returned when saving a build that can't be
	// stored as is, see Build.Validate.
	ErrInvalidBuild = errors.New("invalid build")
)

// These are the build aliases every branch understands. They're
// resolved against the builds saved for the branch.
const (
	AliasLastSuccessful = "last successful"
	AliasMostRecent     = "most recent"
)

// ObjectTypePage is the object index type used for pages.
const ObjectTypePage = "page"

func init() {
	logger = log.WithFields(log.Fields{
		"package": "store",
	})
}

// DocuStore is the full contract of a documentation store. Consumers
// should define their own interfaces with the subset of these functions
// they're interested in.
type DocuStore interface {
	// ResolveAliases turns a possibly aliased branch and build name
	// into the real names. Unknown names return ErrAliasNotFound.
	ResolveAliases(branch, build string) (BuildIdentifier, error)

	// LoadUseCases returns the use cases of a build with the names
	// of their scenarios, both in storage order.
	LoadUseCases(BuildIdentifier) ([]UseCaseScenarios, error)
	LoadUseCase(b BuildIdentifier, usecase string) (UseCase, error)
	LoadScenario(ScenarioIdentifier) (Scenario, error)
	// LoadScenarioPageSteps returns ErrScenarioNotFound when the scenario
	// doesn't exist in the build.
	LoadScenarioPageSteps(ScenarioIdentifier) (ScenarioPageSteps, error)
	LoadStep(id ScenarioIdentifier, index int) (Step, error)

	// LoadObjectIndex returns the tree of use cases, scenarios and
	// steps referencing an object. If there's none, ErrObjectIndexNotFound
	// is returned.
	LoadObjectIndex(b BuildIdentifier, objtype, name string) (ObjectTreeNode, error)

	// SaveBuild replaces all the data of a build, deriving the object
	// indexes from it. Builds failing Validate aren't saved.
	SaveBuild(*Build) error

	// LoadBranches returns every branch ordered by name, with its builds
	// in import order.
	LoadBranches() ([]BranchBuilds, error)
	// LoadBranchAliases returns the branch aliases ordered by alias.
	LoadBranchAliases() ([]BranchAlias, error)
	// SetBranchAlias makes alias resolve to branch, replacing an
	// existing alias of the same name.
	SetBranchAlias(alias, branch string) error
}

// BuildIdentifier names one build of one branch.
type BuildIdentifier struct {
	Branch string `json:"branchName" yaml:"branch"`
	Build  string `json:"buildName" yaml:"build"`
}

// ScenarioIdentifier names one scenario of a build.
type ScenarioIdentifier struct {
	BuildIdentifier

	UseCase  string `json:"usecaseName"`
	Scenario string `json:"scenarioName"`
}

// Build is a complete snapshot of documentation, as it's imported.
type Build struct {
	BuildIdentifier `yaml:",inline"`

	Status   string        `json:"status" yaml:"status"`
	UseCases []UseCaseDocu `json:"usecases" yaml:"usecases"`
}

// UseCaseDocu is a use case with all of its scenarios.
type UseCaseDocu struct {
	UseCase `yaml:",inline"`

	Scenarios []ScenarioDocu `json:"scenarios" yaml:"scenarios"`
}

// ScenarioDocu is a scenario with all of its steps in order.
type ScenarioDocu struct {
	Scenario `yaml:",inline"`

	Steps []Step `json:"steps" yaml:"steps"`
}

// UseCase is a named grouping of scenarios.
type UseCase struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Labels      []string `json:"labels,omitempty" yaml:"labels"`
}

// Scenario is one documented flow through the application.
type Scenario struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Labels      []string `json:"labels,omitempty" yaml:"labels"`
}

// Step is one captured state of a page. Index is the position of the
// step in its scenario and is set by the store when saving.
type Step struct {
	Index  int      `json:"index" yaml:"-"`
	Page   string   `json:"page" yaml:"page"`
	Title  string   `json:"title,omitempty" yaml:"title"`
	HTML   string   `json:"html,omitempty" yaml:"html"`
	Labels []string `json:"labels,omitempty" yaml:"labels"`
}

// UseCaseScenarios is a use case with the names of its scenarios.
type UseCaseScenarios struct {
	UseCase   UseCase  `json:"usecase"`
	Scenarios []string `json:"scenarios"`
}

// BuildSummary is a build without its documentation.
type BuildSummary struct {
	Build  string `json:"buildName"`
	Status string `json:"status"`
}

// BranchBuilds is a branch with the builds saved for it.
type BranchBuilds struct {
	Branch string         `json:"branchName"`
	Builds []BuildSummary `json:"builds"`
}

// BranchAlias is another name for a branch.
type BranchAlias struct {
	Alias  string `json:"name" yaml:"name"`
	Branch string `json:"referencedBranch" yaml:"branch"`
}

// IsSuccess reports whether the build passed. Builds without a status
// count as successful.
func (b *Build) IsSuccess() bool {
	return b.Status == "" || b.Status == "success"
}
