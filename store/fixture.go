package store

import (
	"io"
	"io/ioutil"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Fixture is a set of builds and branch aliases, as written in YAML
// files used for development and tests.
type Fixture struct {
	Aliases map[string]string `yaml:"aliases"`
	Builds  []Build           `yaml:"builds"`
}

// ReadFixture decodes a YAML fixture.
func ReadFixture(r io.Reader) (Fixture, error) {
	var f Fixture

	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return f, err
	}

	err = yaml.Unmarshal(buf, &f)
	return f, err
}

// Load saves the aliases and every build of the fixture in st, builds in
// fixture order.
func (f Fixture) Load(st DocuStore) error {
	for alias, branch := range f.Aliases {
		if err := st.SetBranchAlias(alias, branch); err != nil {
			return err
		}
	}

	for i := range f.Builds {
		b := &f.Builds[i]

		logger.WithFields(log.Fields{
			"branch": b.Branch,
			"build":  b.Build,
		}).Debug("loading fixture build")

		if err := st.SaveBuild(b); err != nil {
			return err
		}
	}

	return nil
}
