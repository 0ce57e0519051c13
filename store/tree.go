package store

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

type rootnode struct {
	children map[string]*branchnode
	aliases  map[string]string
}

type branchnode struct {
	// Builds are kept in import order so that "most recent" is the
	// last one.
	order    []string
	children map[string]*buildnode
}

type buildnode struct {
	order    []string
	children map[string]*usecasenode
	pages    map[string]ObjectTreeNode
	data     Build
}

type usecasenode struct {
	order    []string
	children map[string]*scenarionode
	data     UseCase
}

type scenarionode struct {
	pagesteps ScenarioPageSteps
	data      ScenarioDocu
}

// Memory is a DocuStore that keeps everything in a tree in memory.
// It's safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	root rootnode
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		root: rootnode{
			children: map[string]*branchnode{},
			aliases:  map[string]string{},
		},
	}
}

// SetBranchAlias implements the DocuStore interface.
func (st *Memory) SetBranchAlias(alias, branch string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.root.aliases[alias] = branch
	return nil
}

// LoadBranches implements the DocuStore interface.
func (st *Memory) LoadBranches() ([]BranchBuilds, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	names := make([]string, 0, len(st.root.children))
	for name := range st.root.children {
		names = append(names, name)
	}
	sort.Strings(names)

	ret := []BranchBuilds{}
	for _, name := range names {
		br := st.root.children[name]

		builds := make([]BuildSummary, 0, len(br.order))
		for _, build := range br.order {
			builds = append(builds, BuildSummary{
				Build:  build,
				Status: br.children[build].data.Status,
			})
		}

		ret = append(ret, BranchBuilds{Branch: name, Builds: builds})
	}

	return ret, nil
}

// LoadBranchAliases implements the DocuStore interface.
func (st *Memory) LoadBranchAliases() ([]BranchAlias, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ret := make([]BranchAlias, 0, len(st.root.aliases))
	for alias, branch := range st.root.aliases {
		ret = append(ret, BranchAlias{Alias: alias, Branch: branch})
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Alias < ret[j].Alias
	})

	return ret, nil
}

// SaveBuild implements the DocuStore interface. Saving a build that
// already exists replaces it.
func (st *Memory) SaveBuild(b *Build) error {
	logger := logger.WithFields(log.Fields{
		"branch": b.Branch,
		"build":  b.Build,
		"store":  "memory",
	})
	logger.Debug("saving build")

	if err := b.Validate(); err != nil {
		logger.WithError(err).Debug("refusing invalid build")
		return err
	}

	bn := &buildnode{
		children: map[string]*usecasenode{},
		data:     *b,
	}

	for _, uc := range b.UseCases {
		ucn := &usecasenode{
			children: map[string]*scenarionode{},
			data:     uc.UseCase,
		}

		for _, sc := range uc.Scenarios {
			sc.Steps = indexSteps(sc.Steps)

			ucn.order = append(ucn.order, sc.Name)
			ucn.children[sc.Name] = &scenarionode{
				pagesteps: NewScenarioPageSteps(uc.UseCase, sc),
				data:      sc,
			}
		}

		bn.order = append(bn.order, uc.Name)
		bn.children[uc.Name] = ucn
	}

	bn.pages = BuildPageIndexes(b)

	st.mu.Lock()
	defer st.mu.Unlock()

	br, ok := st.root.children[b.Branch]
	if !ok {
		br = &branchnode{children: map[string]*buildnode{}}
		st.root.children[b.Branch] = br
	}

	if _, ok := br.children[b.Build]; !ok {
		br.order = append(br.order, b.Build)
	}
	br.children[b.Build] = bn

	return nil
}

// ResolveAliases implements the DocuStore interface.
func (st *Memory) ResolveAliases(branch, build string) (BuildIdentifier, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	if target, ok := st.root.aliases[branch]; ok {
		branch = target
	}

	br, ok := st.root.children[branch]
	if !ok {
		return BuildIdentifier{}, ErrAliasNotFound
	}

	builds := make([]Build, 0, len(br.order))
	for _, name := range br.order {
		builds = append(builds, br.children[name].data)
	}

	name, err := resolveBuildAlias(build, builds)
	if err != nil {
		return BuildIdentifier{}, err
	}

	return BuildIdentifier{Branch: branch, Build: name}, nil
}

// LoadUseCases implements the DocuStore interface.
func (st *Memory) LoadUseCases(id BuildIdentifier) ([]UseCaseScenarios, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	bn, err := st.build(id)
	if err != nil {
		return nil, err
	}

	ret := []UseCaseScenarios{}
	for _, name := range bn.order {
		ucn := bn.children[name]
		ret = append(ret, UseCaseScenarios{
			UseCase:   ucn.data,
			Scenarios: append([]string{}, ucn.order...),
		})
	}

	return ret, nil
}

// LoadUseCase implements the DocuStore interface.
func (st *Memory) LoadUseCase(id BuildIdentifier, usecase string) (UseCase, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	bn, err := st.build(id)
	if err != nil {
		return UseCase{}, err
	}

	ucn, ok := bn.children[usecase]
	if !ok {
		return UseCase{}, ErrUseCaseNotFound
	}

	return ucn.data, nil
}

// LoadScenario implements the DocuStore interface.
func (st *Memory) LoadScenario(id ScenarioIdentifier) (Scenario, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sn, err := st.scenario(id)
	if err != nil {
		return Scenario{}, err
	}

	return sn.data.Scenario, nil
}

// LoadScenarioPageSteps implements the DocuStore interface.
func (st *Memory) LoadScenarioPageSteps(id ScenarioIdentifier) (ScenarioPageSteps, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sn, err := st.scenario(id)
	if err != nil {
		return ScenarioPageSteps{}, err
	}

	return sn.pagesteps, nil
}

// LoadStep implements the DocuStore interface.
func (st *Memory) LoadStep(id ScenarioIdentifier, index int) (Step, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sn, err := st.scenario(id)
	if err != nil {
		return Step{}, err
	}

	if index < 0 || index >= len(sn.data.Steps) {
		return Step{}, ErrStepNotFound
	}

	return sn.data.Steps[index], nil
}

// LoadObjectIndex implements the DocuStore interface. Only page indexes
// are kept.
func (st *Memory) LoadObjectIndex(id BuildIdentifier, objtype, name string) (ObjectTreeNode, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	bn, err := st.build(id)
	if err != nil {
		return ObjectTreeNode{}, err
	}

	if objtype != ObjectTypePage {
		return ObjectTreeNode{}, ErrObjectIndexNotFound
	}

	idx, ok := bn.pages[name]
	if !ok {
		return ObjectTreeNode{}, ErrObjectIndexNotFound
	}

	return idx, nil
}

// build must be called with the lock held.
func (st *Memory) build(id BuildIdentifier) (*buildnode, error) {
	br, ok := st.root.children[id.Branch]
	if !ok {
		return nil, ErrBuildNotFound
	}

	bn, ok := br.children[id.Build]
	if !ok {
		return nil, ErrBuildNotFound
	}

	return bn, nil
}

// scenario must be called with the lock held.
func (st *Memory) scenario(id ScenarioIdentifier) (*scenarionode, error) {
	bn, err := st.build(id.BuildIdentifier)
	if err != nil {
		return nil, err
	}

	ucn, ok := bn.children[id.UseCase]
	if !ok {
		return nil, ErrScenarioNotFound
	}

	sn, ok := ucn.children[id.Scenario]
	if !ok {
		return nil, ErrScenarioNotFound
	}

	return sn, nil
}

// indexSteps returns a copy of steps with their indexes set.
func indexSteps(steps []Step) []Step {
	ret := make([]Step, len(steps))
	for i, s := range steps {
		s.Index = i
		ret[i] = s
	}

	return ret
}
