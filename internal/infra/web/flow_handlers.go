package web

import (
	"errors"
	"net/http"

	"case-portal/internal/domain/model"
	"case-portal/internal/infra/logging"
	"case-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
)

type flowResponse struct {
	State    *model.FlowState `json:"state"`
	View     usecase.View     `json:"view"`
	Advanced *bool            `json:"advanced,omitempty"`
}

func (s *Server) respondFlow(w http.ResponseWriter, code int, st *model.FlowState) {
	writeJSON(w, code, flowResponse{State: st, View: s.flowUC.Render(st)})
}

func sessionID(r *http.Request) string { return chi.URLParam(r, "sessionID") }

func (s *Server) handleServices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": model.ServiceCatalog()})
}

func (s *Server) handleStartFlow(w http.ResponseWriter, r *http.Request) {
	st, err := s.flowUC.Start(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/flows/"+st.SessionID)
	s.respondFlow(w, http.StatusCreated, st)
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	st, err := s.flowUC.Get(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFlow(w, http.StatusOK, st)
}

func (s *Server) handleAbandonFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.flowUC.Abandon(r.Context(), sessionID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stepRequest struct {
	Step int `json:"step"`
}

func (s *Server) handleSetStep(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := s.flowUC.JumpTo(r.Context(), sessionID(r), model.Step(req.Step))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFlow(w, http.StatusOK, st)
}

// handleNext reports a blocked gate through "advanced": false, not an error status.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	st, advanced, err := s.flowUC.Advance(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flowResponse{State: st, View: s.flowUC.Render(st), Advanced: &advanced})
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	st, err := s.flowUC.Back(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFlow(w, http.StatusOK, st)
}

type serviceRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSelectService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := s.flowUC.SelectService(r.Context(), sessionID(r), req.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFlow(w, http.StatusOK, st)
}

func (s *Server) handlePersonalInfo(w http.ResponseWriter, r *http.Request) {
	var patch model.PersonalInfoPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	st, err := s.flowUC.UpdatePersonalInfo(r.Context(), sessionID(r), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFlow(w, http.StatusOK, st)
}

// handleUploadDocument records the file reference only; the content is drained and dropped.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")
	if _, ok := model.ParseDocumentSlot(slot); !ok {
		writeError(w, http.StatusBadRequest, "unknown document slot")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart form expected")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	_ = file.Close()

	ref := &model.DocumentRef{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	}
	st, err := s.flowUC.AttachDocument(r.Context(), sessionID(r), slot, ref)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	logging.With(logging.WithSessionID(r.Context(), st.SessionID), s.log).Debug().
		Str("slot", slot).Int64("size", header.Size).Msg("document attached")
	s.respondFlow(w, http.StatusOK, st)
}

func (s *Server) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	st, err := s.flowUC.RemoveDocument(r.Context(), sessionID(r), chi.URLParam(r, "slot"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondFlow(w, http.StatusOK, st)
}

type submitResponse struct {
	Case  *model.Case      `json:"case"`
	State *model.FlowState `json:"state"`
	View  usecase.View     `json:"view"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	res, err := s.flowUC.Submit(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{
		Case:  res.Case,
		State: res.State,
		View:  s.flowUC.Render(res.State),
	})
}
