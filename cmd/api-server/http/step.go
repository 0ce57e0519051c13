package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/run-ci/docuserver/step"
	"github.com/run-ci/docuserver/store"
	"github.com/sirupsen/logrus"
)

var errStepNotFound = errors.New("step not found")

// handleGetStep resolves a step permalink. It answers with the step
// details, a temporary redirect to where the step moved, or a 404.
func (srv *Server) handleGetStep(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	logger.Debug("checking mux vars for step identifier")

	requested, id, err := stepIdentifier(req)
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"branch": requested.Branch,
		"build":  requested.Build,
		"step":   id.String(),
	})

	logger.Debug("resolving aliases")

	resolved, err := srv.st.ResolveAliases(requested.Branch, requested.Build)
	if err == store.ErrAliasNotFound {
		logger.WithError(err).Error("unable to resolve build")

		writeErrResp(rw, err, http.StatusNotFound)
		return
	}
	if err != nil {
		logger.WithError(err).Error("unable to resolve build")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	id = id.WithBuild(resolved)

	logger.Debug("loading step")

	res, err := srv.steps.LoadStep(id)
	if err != nil {
		logger.WithError(err).Error("unable to load step")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	resp, err := srv.responses.CreateResponse(res, requested)
	if err != nil {
		logger.WithError(err).Error("unable to load step details")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	logger = logger.WithField("outcome", resp.Outcome.String())

	switch resp.Outcome {
	case step.Found:
		writeJSONResp(rw, logger, resp.Details, http.StatusOK)
	case step.Redirect:
		logger.WithField("location", resp.Location).Info("redirecting to moved step")

		rw.Header().Set("Location", resp.Location)
		rw.WriteHeader(http.StatusTemporaryRedirect)
	default:
		logger.Info("step not found")

		writeErrResp(rw, errStepNotFound, http.StatusNotFound)
	}
}

// stepIdentifier reads the step identifier from the request. The build
// is returned separately since it may be an alias.
func stepIdentifier(req *http.Request) (store.BuildIdentifier, step.Identifier, error) {
	var b store.BuildIdentifier
	var id step.Identifier
	var err error

	strs := []struct {
		name string
		dst  *string
	}{
		{"branchName", &b.Branch},
		{"buildName", &b.Build},
		{"usecaseName", &id.UseCase},
		{"scenarioName", &id.Scenario},
		{"pageName", &id.Page},
	}

	for _, s := range strs {
		*s.dst, err = pathVar(req, s.name)
		if err != nil {
			return b, id, err
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"pageOccurrence", &id.PageOccurrence},
		{"stepInPageOccurrence", &id.StepInPageOccurrence},
	}

	for _, i := range ints {
		raw, err := pathVar(req, i.name)
		if err != nil {
			return b, id, err
		}

		*i.dst, err = strconv.Atoi(raw)
		if err != nil {
			return b, id, err
		}

		if *i.dst < 0 {
			return b, id, errors.New("parameter '" + i.name + "' must not be negative")
		}
	}

	id = id.WithBuild(b).WithLabels(step.ParseLabels(req.URL.Query().Get("labels"))...)

	return b, id, nil
}
