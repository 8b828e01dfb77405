package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-homedash/components/dashboard"
	"github.com/goliatone/go-homedash/components/dashboard/commands"
	"github.com/goliatone/go-homedash/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Add     gocommand.Commander[commands.AddWidgetInput]
	Remove  gocommand.Commander[commands.RemoveWidgetInput]
	Move    gocommand.Commander[commands.MoveWidgetInput]
	Toggle  gocommand.Commander[commands.ToggleEditInput]
	Refresh gocommand.Commander[commands.RefreshWidgetInput]
	Reset   gocommand.Commander[commands.ResetLayoutInput]
	Board   gocommand.Querier[queries.BoardInput, dashboard.BoardView]
	Catalog gocommand.Querier[queries.CatalogInput, []queries.CatalogEntry]
}

// HandleBoard writes the board view as JSON. The locale comes from ?locale=.
func (h *Handlers) HandleBoard(w http.ResponseWriter, r *http.Request) {
	h.writeBoard(w, r, http.StatusOK)
}

// HandleCatalog lists catalog entries. ?unused=true limits the list to
// widgets that can still be added.
func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	input := queries.CatalogInput{
		UnusedOnly: r.URL.Query().Get("unused") == "true",
		Locale:     r.URL.Query().Get("locale"),
	}
	entries, err := h.Catalog.Query(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handlers) HandleToggleEdit(w http.ResponseWriter, r *http.Request) {
	var payload commands.ToggleEditInput
	if !decodeOptional(w, r, &payload) {
		return
	}
	if err := h.Toggle.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.writeBoard(w, r, http.StatusOK)
}

func (h *Handlers) HandleAddWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.AddWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Add.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.writeBoard(w, r, http.StatusCreated)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	input := commands.RemoveWidgetInput{WidgetID: widgetID}
	if err := h.Remove.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleMoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	var payload commands.MoveWidgetInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.WidgetID = widgetID
	if err := h.Move.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.writeBoard(w, r, http.StatusOK)
}

func (h *Handlers) HandleRefreshWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	input := commands.RefreshWidgetInput{
		WidgetID: widgetID,
		Wait:     r.URL.Query().Get("wait") == "true",
	}
	if err := h.Refresh.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleResetLayout(w http.ResponseWriter, r *http.Request) {
	if err := h.Reset.Execute(r.Context(), commands.ResetLayoutInput{}); err != nil {
		writeError(w, err)
		return
	}
	h.writeBoard(w, r, http.StatusOK)
}

func (h *Handlers) writeBoard(w http.ResponseWriter, r *http.Request, status int) {
	if h.Board == nil {
		w.WriteHeader(status)
		return
	}
	view, err := h.Board.Query(r.Context(), queries.BoardInput{Locale: r.URL.Query().Get("locale")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, view)
}

// StatusFor maps dashboard errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrUnknownWidget):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrNotEditing), errors.Is(err, dashboard.ErrWidgetInert):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrRefreshUnsupported):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dashboard.ErrInvalidDirection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeOptional decodes a JSON body when one is present. An empty body,
// including an empty chunked one, leaves dst untouched.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
