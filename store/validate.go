package store

import (
	"fmt"
	"strings"
)

// Validate checks that b can be saved the same way by every store. Use
// case names must be unique in a build and scenario names unique in a
// use case. Labels must be non-empty, carry no surrounding whitespace
// and no commas, since requests send them as a comma separated list.
func (b *Build) Validate() error {
	if b.Branch == "" || b.Build == "" {
		return fmt.Errorf("%w: missing branch or build name", ErrInvalidBuild)
	}

	usecases := map[string]bool{}
	for _, uc := range b.UseCases {
		if usecases[uc.Name] {
			return fmt.Errorf("%w: duplicate use case %q", ErrInvalidBuild, uc.Name)
		}
		usecases[uc.Name] = true

		if err := validateLabels(uc.Labels); err != nil {
			return fmt.Errorf("%w: use case %q: %v", ErrInvalidBuild, uc.Name, err)
		}

		scenarios := map[string]bool{}
		for _, sc := range uc.Scenarios {
			if scenarios[sc.Name] {
				return fmt.Errorf("%w: duplicate scenario %q in use case %q", ErrInvalidBuild, sc.Name, uc.Name)
			}
			scenarios[sc.Name] = true

			if err := validateLabels(sc.Labels); err != nil {
				return fmt.Errorf("%w: scenario %q: %v", ErrInvalidBuild, sc.Name, err)
			}

			for i, s := range sc.Steps {
				if err := validateLabels(s.Labels); err != nil {
					return fmt.Errorf("%w: step %v of scenario %q: %v", ErrInvalidBuild, i, sc.Name, err)
				}
			}
		}
	}

	return nil
}

func validateLabels(labels []string) error {
	for _, l := range labels {
		if l == "" || strings.TrimSpace(l) != l || strings.Contains(l, ",") {
			return fmt.Errorf("label %q must be non-empty without commas or surrounding whitespace", l)
		}
	}

	return nil
}
