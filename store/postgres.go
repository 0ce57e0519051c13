package store

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq" // also registers the postgres driver
	log "github.com/sirupsen/logrus"
)

// Schema creates the tables the Postgres store needs.
const Schema = `
CREATE TABLE IF NOT EXISTS branch_aliases (
	alias  TEXT PRIMARY KEY,
	branch TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS builds (
	id     SERIAL PRIMARY KEY,
	branch TEXT NOT NULL,
	build  TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT '',
	UNIQUE (branch, build)
);

CREATE TABLE IF NOT EXISTS usecases (
	build_id    INTEGER NOT NULL REFERENCES builds (id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	labels      TEXT[],
	PRIMARY KEY (build_id, name)
);

CREATE TABLE IF NOT EXISTS scenarios (
	build_id    INTEGER NOT NULL REFERENCES builds (id) ON DELETE CASCADE,
	usecase     TEXT NOT NULL,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	labels      TEXT[],
	page_steps  JSONB NOT NULL,
	PRIMARY KEY (build_id, usecase, name)
);

CREATE TABLE IF NOT EXISTS steps (
	build_id   INTEGER NOT NULL REFERENCES builds (id) ON DELETE CASCADE,
	usecase    TEXT NOT NULL,
	scenario   TEXT NOT NULL,
	step_index INTEGER NOT NULL,
	page       TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	html       TEXT NOT NULL DEFAULT '',
	labels     TEXT[],
	PRIMARY KEY (build_id, usecase, scenario, step_index)
);

CREATE TABLE IF NOT EXISTS object_indexes (
	build_id INTEGER NOT NULL REFERENCES builds (id) ON DELETE CASCADE,
	type     TEXT NOT NULL,
	name     TEXT NOT NULL,
	tree     JSONB NOT NULL,
	PRIMARY KEY (build_id, type, name)
);
`

// Postgres is a PostgreSQL database that's also a DocuStore.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a DocuStore backed by PostgreSQL. It connects to the
// database using connstr.
func NewPostgres(connstr string) (*Postgres, error) {
	logger := logger.WithField("store", "postgres")

	logger.Debug("connecting to database")

	db, err := sql.Open("postgres", connstr)
	if err != nil {
		logger.WithField("error", err).Debug("unable to connect to database")
		return nil, err
	}

	return &Postgres{
		db: db,
	}, nil
}

// Migrate creates the tables if they don't exist yet.
func (st *Postgres) Migrate() error {
	_, err := st.db.Exec(Schema)
	return err
}

// SetBranchAlias implements the DocuStore interface.
func (st *Postgres) SetBranchAlias(alias, branch string) error {
	sqlupsert := `
	INSERT INTO branch_aliases (alias, branch)
	VALUES ($1, $2)
	ON CONFLICT (alias) DO UPDATE SET branch = EXCLUDED.branch;
	`

	_, err := st.db.Exec(sqlupsert, alias, branch)
	if err != nil {
		logger.WithError(err).WithField("alias", alias).
			Debug("unable to save branch alias")
	}

	return err
}

// LoadBranchAliases implements the DocuStore interface.
func (st *Postgres) LoadBranchAliases() ([]BranchAlias, error) {
	logger := logger.WithField("query", "load_branch_aliases")

	rows, err := st.db.Query(`
	SELECT alias, branch
	FROM branch_aliases
	ORDER BY alias;
	`)
	if err != nil {
		logger.WithError(err).Debug("unable to query database")
		return nil, err
	}
	defer rows.Close()

	ret := []BranchAlias{}
	for rows.Next() {
		var a BranchAlias
		if err := rows.Scan(&a.Alias, &a.Branch); err != nil {
			logger.WithError(err).Debug("unable to scan row")
			return ret, err
		}

		ret = append(ret, a)
	}

	return ret, rows.Err()
}

// LoadBranches implements the DocuStore interface.
func (st *Postgres) LoadBranches() ([]BranchBuilds, error) {
	logger := logger.WithField("query", "load_branches")

	rows, err := st.db.Query(`
	SELECT branch, build, status
	FROM builds
	ORDER BY branch, id;
	`)
	if err != nil {
		logger.WithError(err).Debug("unable to query database")
		return nil, err
	}
	defer rows.Close()

	ret := []BranchBuilds{}
	for rows.Next() {
		var branch string
		var b BuildSummary
		if err := rows.Scan(&branch, &b.Build, &b.Status); err != nil {
			logger.WithError(err).Debug("unable to scan row")
			return ret, err
		}

		if n := len(ret); n == 0 || ret[n-1].Branch != branch {
			ret = append(ret, BranchBuilds{Branch: branch, Builds: []BuildSummary{}})
		}

		last := &ret[len(ret)-1]
		last.Builds = append(last.Builds, b)
	}

	return ret, rows.Err()
}

// SaveBuild replaces the build in the database. All rows are written in
// one transaction, so readers never see a half imported build.
func (st *Postgres) SaveBuild(b *Build) error {
	logger := logger.WithFields(log.Fields{
		"branch": b.Branch,
		"build":  b.Build,
		"query":  "save_build",
	})
	logger.Debug("saving build to postgres")

	if err := b.Validate(); err != nil {
		logger.WithError(err).Debug("refusing invalid build")
		return err
	}

	tx, err := st.db.Begin()
	if err != nil {
		logger.WithError(err).Debug("unable to begin transaction")
		return err
	}

	err = st.saveBuild(tx, b)
	if err != nil {
		logger.WithError(err).Debug("unable to save build, rolling back")
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (st *Postgres) saveBuild(tx *sql.Tx, b *Build) error {
	// Replaced builds keep their id, and with it their position in the
	// branch.
	var id int
	err := tx.QueryRow(`
	INSERT INTO builds (branch, build, status)
	VALUES ($1, $2, $3)
	ON CONFLICT (branch, build) DO UPDATE SET status = EXCLUDED.status
	RETURNING id;
	`, b.Branch, b.Build, b.Status).Scan(&id)
	if err != nil {
		return err
	}

	for _, table := range []string{"object_indexes", "steps", "scenarios", "usecases"} {
		_, err := tx.Exec(`DELETE FROM `+table+` WHERE build_id = $1;`, id)
		if err != nil {
			return err
		}
	}

	for ucpos, uc := range b.UseCases {
		_, err := tx.Exec(`
		INSERT INTO usecases (build_id, position, name, description, labels)
		VALUES ($1, $2, $3, $4, $5);
		`, id, ucpos, uc.Name, uc.Description, pq.Array(uc.Labels))
		if err != nil {
			return err
		}

		for scpos, sc := range uc.Scenarios {
			sc.Steps = indexSteps(sc.Steps)

			pagesteps, err := json.Marshal(NewScenarioPageSteps(uc.UseCase, sc))
			if err != nil {
				return err
			}

			_, err = tx.Exec(`
			INSERT INTO scenarios (build_id, usecase, position, name, description, labels, page_steps)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
			`, id, uc.Name, scpos, sc.Name, sc.Description, pq.Array(sc.Labels), pagesteps)
			if err != nil {
				return err
			}

			for _, s := range sc.Steps {
				_, err := tx.Exec(`
				INSERT INTO steps (build_id, usecase, scenario, step_index, page, title, html, labels)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
				`, id, uc.Name, sc.Name, s.Index, s.Page, s.Title, s.HTML, pq.Array(s.Labels))
				if err != nil {
					return err
				}
			}
		}
	}

	for name, tree := range BuildPageIndexes(b) {
		buf, err := json.Marshal(tree)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
		INSERT INTO object_indexes (build_id, type, name, tree)
		VALUES ($1, $2, $3, $4);
		`, id, ObjectTypePage, name, buf)
		if err != nil {
			return err
		}
	}

	return nil
}

// ResolveAliases implements the DocuStore interface.
func (st *Postgres) ResolveAliases(branch, build string) (BuildIdentifier, error) {
	logger := logger.WithFields(log.Fields{
		"branch": branch,
		"build":  build,
		"query":  "resolve_aliases",
	})

	var target string
	err := st.db.QueryRow(`SELECT branch FROM branch_aliases WHERE alias = $1;`, branch).Scan(&target)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		logger.WithError(err).Debug("unable to query branch aliases")
		return BuildIdentifier{}, err
	default:
		branch = target
	}

	rows, err := st.db.Query(`
	SELECT build, status
	FROM builds
	WHERE branch = $1
	ORDER BY id;
	`, branch)
	if err != nil {
		logger.WithError(err).Debug("unable to query builds")
		return BuildIdentifier{}, err
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b := Build{BuildIdentifier: BuildIdentifier{Branch: branch}}
		if err := rows.Scan(&b.Build, &b.Status); err != nil {
			logger.WithError(err).Debug("unable to scan row")
			return BuildIdentifier{}, err
		}

		builds = append(builds, b)
	}

	if err := rows.Err(); err != nil {
		return BuildIdentifier{}, err
	}

	name, err := resolveBuildAlias(build, builds)
	if err != nil {
		return BuildIdentifier{}, err
	}

	return BuildIdentifier{Branch: branch, Build: name}, nil
}

// LoadUseCases implements the DocuStore interface.
func (st *Postgres) LoadUseCases(id BuildIdentifier) ([]UseCaseScenarios, error) {
	logger := logger.WithFields(log.Fields{
		"branch": id.Branch,
		"build":  id.Build,
		"query":  "load_usecases",
	})

	bid, err := st.buildID(id)
	if err != nil {
		return nil, err
	}

	rows, err := st.db.Query(`
	SELECT uc.name, uc.description, uc.labels, sc.name
	FROM usecases AS uc
	LEFT JOIN scenarios AS sc
	ON sc.build_id = uc.build_id AND sc.usecase = uc.name
	WHERE uc.build_id = $1
	ORDER BY uc.position, sc.position;
	`, bid)
	if err != nil {
		logger.WithError(err).Debug("unable to query database")
		return nil, err
	}
	defer rows.Close()

	ret := []UseCaseScenarios{}
	for rows.Next() {
		var uc UseCase
		var sc sql.NullString

		err := rows.Scan(&uc.Name, &uc.Description, pq.Array(&uc.Labels), &sc)
		if err != nil {
			logger.WithError(err).Debug("unable to scan row")
			return ret, err
		}

		if n := len(ret); n == 0 || ret[n-1].UseCase.Name != uc.Name {
			ret = append(ret, UseCaseScenarios{UseCase: uc, Scenarios: []string{}})
		}

		if sc.Valid {
			last := &ret[len(ret)-1]
			last.Scenarios = append(last.Scenarios, sc.String)
		}
	}

	return ret, rows.Err()
}

// LoadUseCase implements the DocuStore interface.
func (st *Postgres) LoadUseCase(id BuildIdentifier, usecase string) (UseCase, error) {
	bid, err := st.buildID(id)
	if err != nil {
		return UseCase{}, err
	}

	uc := UseCase{}
	err = st.db.QueryRow(`
	SELECT name, description, labels
	FROM usecases
	WHERE build_id = $1 AND name = $2;
	`, bid, usecase).Scan(&uc.Name, &uc.Description, pq.Array(&uc.Labels))
	if err == sql.ErrNoRows {
		err = ErrUseCaseNotFound
	}

	return uc, err
}

// LoadScenario implements the DocuStore interface.
func (st *Postgres) LoadScenario(id ScenarioIdentifier) (Scenario, error) {
	bid, err := st.buildID(id.BuildIdentifier)
	if err != nil {
		return Scenario{}, err
	}

	sc := Scenario{}
	err = st.db.QueryRow(`
	SELECT name, description, labels
	FROM scenarios
	WHERE build_id = $1 AND usecase = $2 AND name = $3;
	`, bid, id.UseCase, id.Scenario).Scan(&sc.Name, &sc.Description, pq.Array(&sc.Labels))
	if err == sql.ErrNoRows {
		err = ErrScenarioNotFound
	}

	return sc, err
}

// LoadScenarioPageSteps implements the DocuStore interface.
func (st *Postgres) LoadScenarioPageSteps(id ScenarioIdentifier) (ScenarioPageSteps, error) {
	var ps ScenarioPageSteps

	bid, err := st.buildID(id.BuildIdentifier)
	if err != nil {
		return ps, err
	}

	var buf []byte
	err = st.db.QueryRow(`
	SELECT page_steps
	FROM scenarios
	WHERE build_id = $1 AND usecase = $2 AND name = $3;
	`, bid, id.UseCase, id.Scenario).Scan(&buf)
	if err == sql.ErrNoRows {
		return ps, ErrScenarioNotFound
	}
	if err != nil {
		return ps, err
	}

	err = json.Unmarshal(buf, &ps)
	return ps, err
}

// LoadStep implements the DocuStore interface.
func (st *Postgres) LoadStep(id ScenarioIdentifier, index int) (Step, error) {
	bid, err := st.buildID(id.BuildIdentifier)
	if err != nil {
		return Step{}, err
	}

	s := Step{}
	err = st.db.QueryRow(`
	SELECT step_index, page, title, html, labels
	FROM steps
	WHERE build_id = $1 AND usecase = $2 AND scenario = $3 AND step_index = $4;
	`, bid, id.UseCase, id.Scenario, index).Scan(&s.Index, &s.Page, &s.Title, &s.HTML, pq.Array(&s.Labels))
	if err == sql.ErrNoRows {
		err = ErrStepNotFound
	}

	return s, err
}

// LoadObjectIndex implements the DocuStore interface.
func (st *Postgres) LoadObjectIndex(id BuildIdentifier, objtype, name string) (ObjectTreeNode, error) {
	var tree ObjectTreeNode

	bid, err := st.buildID(id)
	if err != nil {
		return tree, err
	}

	var buf []byte
	err = st.db.QueryRow(`
	SELECT tree
	FROM object_indexes
	WHERE build_id = $1 AND type = $2 AND name = $3;
	`, bid, objtype, name).Scan(&buf)
	if err == sql.ErrNoRows {
		return tree, ErrObjectIndexNotFound
	}
	if err != nil {
		return tree, err
	}

	err = json.Unmarshal(buf, &tree)
	return tree, err
}

func (st *Postgres) buildID(id BuildIdentifier) (int, error) {
	var bid int
	err := st.db.QueryRow(`
	SELECT id
	FROM builds
	WHERE branch = $1 AND build = $2;
	`, id.Branch, id.Build).Scan(&bid)
	if err == sql.ErrNoRows {
		err = ErrBuildNotFound
	}

	return bid, err
}
