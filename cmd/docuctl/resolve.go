package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/run-ci/docuserver/step"
	"github.com/run-ci/docuserver/store"
)

// FixtureOpener opens fixture files for the resolve command.
type FixtureOpener interface {
	Open(path string) (io.ReadCloser, error)
}

type fileOpener struct{}

func (fileOpener) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// resolveOutput is the JSON output schema for the resolve command.
type resolveOutput struct {
	Outcome    string                `json:"outcome"`
	Index      *int                  `json:"index,omitempty"`
	Step       string                `json:"step,omitempty"`
	Statistics *store.StepStatistics `json:"statistics,omitempty"`
	Location   string                `json:"location,omitempty"`
}

// NewResolveCmd creates the resolve subcommand.
func NewResolveCmd(opener FixtureOpener) *cobra.Command {
	var fixture string
	var req step.Identifier
	var labels []string

	cmd := &cobra.Command{
		Use:          "resolve",
		Short:        "Resolve a step against a YAML fixture and print the outcome as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fixture == "" {
				return fmt.Errorf("--fixture is required")
			}

			f, err := opener.Open(fixture)
			if err != nil {
				return fmt.Errorf("opening fixture: %w", err)
			}
			defer f.Close()

			fx, err := store.ReadFixture(f)
			if err != nil {
				return fmt.Errorf("reading fixture: %w", err)
			}

			st := store.NewMemory()
			if err := fx.Load(st); err != nil {
				return fmt.Errorf("loading fixture: %w", err)
			}

			requested := store.BuildIdentifier{Branch: req.Branch, Build: req.Build}

			out, err := resolve(st, requested, req.WithLabels(labels...))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fixture, "fixture", "", "path of the YAML fixture")
	flags.StringVar(&req.Branch, "branch", "", "branch name or alias")
	flags.StringVar(&req.Build, "build", "", "build name or alias")
	flags.StringVar(&req.UseCase, "usecase", "", "use case name")
	flags.StringVar(&req.Scenario, "scenario", "", "scenario name")
	flags.StringVar(&req.Page, "page", "", "page name")
	flags.IntVar(&req.PageOccurrence, "page-occurrence", 0, "occurrence of the page in the scenario")
	flags.IntVar(&req.StepInPageOccurrence, "step-occurrence", 0, "step within the page occurrence")
	flags.StringSliceVar(&labels, "labels", nil, "labels used to search moved steps")

	return cmd
}

func resolve(st store.DocuStore, requested store.BuildIdentifier, id step.Identifier) (resolveOutput, error) {
	if id.PageOccurrence < 0 || id.StepInPageOccurrence < 0 {
		return resolveOutput{}, fmt.Errorf("occurrences must not be negative")
	}

	b, err := st.ResolveAliases(requested.Branch, requested.Build)
	if err != nil {
		return resolveOutput{}, fmt.Errorf("resolving build %v/%v: %w", requested.Branch, requested.Build, err)
	}

	res, err := step.NewLoader(step.NewStoreScenarioLoader(st)).LoadStep(id.WithBuild(b))
	if err != nil {
		return resolveOutput{}, fmt.Errorf("loading step: %w", err)
	}

	out := resolveOutput{Outcome: res.Outcome.String()}

	switch res.Outcome {
	case step.Found:
		index := res.Index
		stats := res.Statistics
		out.Index = &index
		out.Statistics = &stats
		out.Step = res.Identifier.PackedID()
	case step.Redirect:
		out.Step = res.Target.PackedID()
		out.Location = res.Target.WithBuild(requested).RedirectURI()
	}

	return out, nil
}
