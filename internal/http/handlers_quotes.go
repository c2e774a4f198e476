package http

import (
	"net/http"
	"strings"

	"github.com/phisoli/parasekreterim/internal/quotes"
)

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	q := quotes.Query{
		Filter: quotes.AssetKind(r.URL.Query().Get("filter")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Page:   parseIntParam(r, "page", 1),
	}

	result, err := s.quotes.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
