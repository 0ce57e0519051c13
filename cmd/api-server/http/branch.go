package http

import (
	"net/http"

	"github.com/run-ci/docuserver/store"
	"github.com/sirupsen/logrus"
)

func (srv *Server) handleGetBranches(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	logger.Debug("retrieving branches from store")

	branches, err := srv.st.LoadBranches()
	if err != nil {
		logger.WithError(err).Error("unable to retrieve branches")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeJSONResp(rw, logger, branches, http.StatusOK)
}

func (srv *Server) handleGetBranchAliases(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	logger.Debug("retrieving branch aliases from store")

	aliases, err := srv.st.LoadBranchAliases()
	if err != nil {
		logger.WithError(err).Error("unable to retrieve branch aliases")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeJSONResp(rw, logger, aliases, http.StatusOK)
}

// handleGetObject returns the object index of an object, which lists
// every step referencing it grouped by use case and scenario.
func (srv *Server) handleGetObject(rw http.ResponseWriter, req *http.Request) {
	reqID := req.Context().Value(keyReqID).(string)
	logger := logger.WithField("request_id", reqID)

	logger.Debug("checking mux vars for object")

	objtype, err := pathVar(req, "objectType")
	if err != nil {
		logger.WithError(err).Error("unable to complete request")

		writeErrResp(rw, err, http.StatusBadRequest)
		return
	}

	name, err := pathVar(req, "objectName")
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
		"branch":      b.Branch,
		"build":       b.Build,
		"object_type": objtype,
		"object_name": name,
	})

	logger.Debug("retrieving object index from store")

	idx, err := srv.st.LoadObjectIndex(b, objtype, name)
	switch err {
	case nil:
	case store.ErrObjectIndexNotFound, store.ErrBuildNotFound:
		logger.WithError(err).Error("unable to retrieve object index")

		writeErrResp(rw, err, http.StatusNotFound)
		return
	default:
		logger.WithError(err).Error("unable to retrieve object index")

		writeErrResp(rw, err, http.StatusInternalServerError)
		return
	}

	writeJSONResp(rw, logger, idx, http.StatusOK)
}
