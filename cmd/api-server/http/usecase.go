package http

import (
	"net/http"

	"github.com/run-ci/docuserver/store"
	"github.com/sirupsen/logrus"
)

func (srv *Server) handleGetUseCases(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	b, ok := srv.resolveBuild(rw, req, logger)
	if !ok {
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"branch": b.Branch,
		"build":  b.Build,
	})

	logger.Debug("retrieving use cases from store")

	usecases, err := srv.st.LoadUseCases(b)
	switch err {
	case nil:
	case store.ErrBuildNotFound:
		logger.WithError(err).Error("unable to retrieve use cases")

		writeErrResp(rw, err, http.StatusNotFound)
		return
	default:
		logger.WithError(err).Error("unable to retrieve use cases")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeJSONResp(rw, logger, usecases, http.StatusOK)
}

func (srv *Server) handleGetUseCase(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	logger.Debug("checking mux vars for use case")

	usecase, err := pathVar(req, "usecaseName")
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	b, ok := srv.resolveBuild(rw, req, logger)
	if !ok {
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"branch":  b.Branch,
		"build":   b.Build,
		"usecase": usecase,
	})

	logger.Debug("retrieving use case from store")

	uc, err := srv.st.LoadUseCase(b, usecase)
	switch err {
	case nil:
	case store.ErrUseCaseNotFound, store.ErrBuildNotFound:
		logger.WithError(err).Error("unable to retrieve use case")

		writeErrResp(rw, err, http.StatusNotFound)
		return
	default:
		logger.WithError(err).Error("unable to retrieve use case")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeJSONResp(rw, logger, uc, http.StatusOK)
}

// resolveBuild reads the branch and build from the request and resolves
// their aliases. On failure the error response is already written.
func (srv *Server) resolveBuild(rw http.ResponseWriter, req *http.Request, logger *logrus.Entry) (store.BuildIdentifier, bool) {
	logger.Debug("checking mux vars for build")

	branch, err := pathVar(req, "branchName")
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return store.BuildIdentifier{}, false
	}

	build, err := pathVar(req, "buildName")
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return store.BuildIdentifier{}, false
	}

	b, err := srv.st.ResolveAliases(branch, build)
	if err == store.ErrAliasNotFound {
		logger.WithError(err).Error("unable to resolve build")

		writeErrResp(rw, err, http.StatusNotFound)
		return b, false
	}
	if err != nil {
		logger.WithError(err).Error("unable to resolve build")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return b, false
	}

	return b, true
}
