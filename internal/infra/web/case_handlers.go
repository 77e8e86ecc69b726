package web

import (
	"net/http"

	"case-portal/internal/domain/model"
	"case-portal/internal/domain/ports/repository"
	"case-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// publicPage is a case page with applicant details stripped.
type publicPage struct {
	Data   []model.CaseSummary `json:"data"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

func summarize(p *usecase.CasePage) publicPage {
	out := publicPage{Data: make([]model.CaseSummary, 0, len(p.Data)), Total: p.Total, Limit: p.Limit, Offset: p.Offset}
	for _, c := range p.Data {
		out.Data = append(out.Data, c.Summary())
	}
	return out
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	page, ok := s.listCases(w, r)
	if ok {
		writeJSON(w, http.StatusOK, summarize(page))
	}
}

func (s *Server) handleAdminListCases(w http.ResponseWriter, r *http.Request) {
	page, ok := s.listCases(w, r)
	if ok {
		writeJSON(w, http.StatusOK, page)
	}
}

// listCases accepts search, status, offset and limit query parameters.
// A status of "all" or an empty one matches every case.
func (s *Server) listCases(w http.ResponseWriter, r *http.Request) (*usecase.CasePage, bool) {
	q := r.URL.Query()
	var params struct {
		Search string
		Offset int
		Limit  int
	}
	for name, dest := range map[string]any{"search": &params.Search, "offset": &params.Offset, "limit": &params.Limit} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+name+" parameter")
			return nil, false
		}
	}

	f := repository.CaseFilter{Search: params.Search, Offset: params.Offset, Limit: params.Limit}
	if raw := q.Get("status"); raw != "" && raw != "all" {
		st, err := model.ParseCaseStatus(raw)
		if err != nil {
			s.fail(w, r, err)
			return nil, false
		}
		f.Status = st
	}

	page, err := s.caseUC.List(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return page, true
}

func (s *Server) handleCaseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.caseUC.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.caseUC.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Summary())
}

func (s *Server) handleAdminGetCase(w http.ResponseWriter, r *http.Request) {
	c, err := s.caseUC.Get(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	st, err := model.ParseCaseStatus(req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.caseUC.UpdateStatus(r.Context(), chi.URLParam(r, "caseID"), st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
