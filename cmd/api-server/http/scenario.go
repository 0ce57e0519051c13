package http

import (
	"net/http"

	"github.com/run-ci/docuserver/store"
	"github.com/sirupsen/logrus"
)

// handleGetScenario returns the pages and steps of a scenario.
func (srv *Server) handleGetScenario(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	logger.Debug("checking mux vars for scenario identifier")

	var usecase, scenario string
	vars := []struct {
		name string
		dst  *string
	}{
		{"usecaseName", &usecase},
		{"scenarioName", &scenario},
	}

	for _, v := range vars {
		var err error
		*v.dst, err = pathVar(req, v.name)
		if err != nil {
			logger.WithError(err).Error("unable to complete request")

			writeErrResp(rw, err, http.StatusBadRequest)
			return
		}
	}

	b, ok := srv.resolveBuild(rw, req, logger)
	if !ok {
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"branch":   b.Branch,
		"build":    b.Build,
		"usecase":  usecase,
		"scenario": scenario,
	})

	logger.Debug("retrieving scenario from store")

	ps, err := srv.st.LoadScenarioPageSteps(store.ScenarioIdentifier{
		BuildIdentifier: b,
		UseCase:         usecase,
		Scenario:        scenario,
	})
	switch err {
	case nil:
	case store.ErrScenarioNotFound, store.ErrBuildNotFound:
		logger.WithError(err).Error("unable to retrieve scenario")

		writeErrResp(rw, err, http.StatusNotFound)
		return
	default:
		logger.WithError(err).Error("unable to retrieve scenario")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeJSONResp(rw, logger, ps, http.StatusOK)
}
