package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/http/respond"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/ledger"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/models/dto"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage"
)

// MemberHandler exposes the member ledger over HTTP.
type MemberHandler struct {
	svc            *ledger.Service
	log            *logrus.Logger
	importMaxBytes int64
}

// NewMemberHandler constructs the handler. Import bodies above importMaxBytes are refused.
func NewMemberHandler(svc *ledger.Service, log *logrus.Logger, importMaxBytes int64) *MemberHandler {
	return &MemberHandler{svc: svc, log: log, importMaxBytes: importMaxBytes}
}

// Register attaches member routes to the mux, each wrapped by protect.
func (h *MemberHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"GET /api/members":               h.handleList,
		"POST /api/members":              h.handleCreate,
		"DELETE /api/members":            h.handleDeleteAll,
		"GET /api/members/{id}":          h.handleGet,
		"PUT /api/members/{id}":          h.handleUpdate,
		"DELETE /api/members/{id}":       h.handleDelete,
		"POST /api/members/{id}/consume": h.handleConsume,
		"GET /api/members/{id}/records":  h.handleRecords,
		"GET /api/stats":                 h.handleStats,
		"POST /api/import":               h.handleImport,
		"GET /api/export":                h.handleExport,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, protect(fn))
	}
}

func (h *MemberHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	members, total, err := h.svc.List(r.Context(), r.URL.Query().Get("phone"), page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.MemberPage{
		Items:    members,
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	})
}

func (h *MemberHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in models.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := h.svc.Add(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "member created", created)
}

func (h *MemberHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	member, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", member)
}

func (h *MemberHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	var in models.MemberInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.svc.Update(r.Context(), id, in); err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "member updated", nil)
}

func (h *MemberHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "member deleted", nil)
}

func (h *MemberHandler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respond.Error(w, http.StatusBadRequest, "confirm=true is required to delete all members")
		return
	}
	if err := h.svc.DeleteAll(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "all members deleted", nil)
}

func (h *MemberHandler) handleConsume(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Consume(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	member, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "consumption recorded", dto.ConsumeResponse{Record: rec, Member: member})
}

func (h *MemberHandler) handleRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(w, r)
	if !ok {
		return
	}
	page := pageFromQuery(r)
	records, err := h.svc.Records(r.Context(), id, page)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.RecordPage{Items: records, Page: page.Number, PageSize: page.Size})
}

func (h *MemberHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", stats)
}

func (h *MemberHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidMember):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrMemberNotFound):
		respond.Error(w, http.StatusNotFound, "member not found")
	case errors.Is(err, storage.ErrDuplicatePhone):
		respond.Error(w, http.StatusConflict, "phone already registered")
	case errors.Is(err, storage.ErrInsufficientBalance):
		respond.Error(w, http.StatusUnprocessableEntity, "insufficient balance")
	case errors.Is(err, storage.ErrNotInitialized):
		respond.Error(w, http.StatusServiceUnavailable, "database not initialized")
	default:
		h.log.WithError(err).Error("member request failed")
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func memberID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, "invalid member id")
		return 0, false
	}
	return id, true
}

func pageFromQuery(r *http.Request) models.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return models.Page{Number: number, Size: size}.Normalize()
}
