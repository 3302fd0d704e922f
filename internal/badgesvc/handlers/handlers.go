package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/avvvet/badge-services/internal/badgesvc/models"
	"github.com/avvvet/badge-services/internal/badgesvc/service"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	users     *service.UserService
	movements *service.MovementService
	gatherer  prometheus.Gatherer
	port      string
}

func NewHandler(users *service.UserService, movements *service.MovementService, gatherer prometheus.Gatherer, port string) *Handler {
	return &Handler{
		users:     users,
		movements: movements,
		gatherer:  gatherer,
		port:      port,
	}
}

type Response struct {
	Message string `json:"message"`
	BadgeID string `json:"badge_id,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RegisterRequest is the POST /api/users body. Older clients send the
// display name as "name".
type RegisterRequest struct {
	BadgeID      string  `json:"badge_id"`
	DisplayName  string  `json:"display_name"`
	Name         string  `json:"name"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	Role         *string `json:"role"`
	Department   *string `json:"department"`
	Phone        *string `json:"phone"`
	City         *string `json:"city"`
	Organization *string `json:"organization"`
}

type MovementRequest struct {
	BadgeID string `json:"badge_id"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("unable to encode response: %v", err)
	}
}

// Error maps the service error taxonomy to a status code. Store failures
// are logged with detail and reported generically.
func (h *Handler) Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.CreateResponse(w, http.StatusBadRequest, Response{Message: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		h.CreateResponse(w, http.StatusNotFound, Response{Message: err.Error()})
	default:
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).Errorf("request failed: %v", err)
		h.CreateResponse(w, http.StatusInternalServerError, Response{Message: "internal server error"})
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, http.StatusOK, HealthResponse{
		Status:  "OK",
		Message: "badge service is running at port " + h.port,
	})
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	name := req.DisplayName
	if strings.TrimSpace(name) == "" {
		name = req.Name
	}

	_, err := h.users.Register(r.Context(), models.User{
		BadgeID:      req.BadgeID,
		DisplayName:  name,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         req.Role,
		Department:   req.Department,
		Phone:        req.Phone,
		City:         req.City,
		Organization: req.Organization,
	})
	if err != nil {
		h.Error(w, r, err)
		return
	}

	h.CreateResponse(w, http.StatusCreated, Response{Message: "user registered"})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, users)
}

// badgeParam returns the decoded {badge_id}. chi routes on the raw path
// when one is set, so an escaped "/" arrives as %2F.
func badgeParam(r *http.Request) (string, error) {
	return url.PathUnescape(chi.URLParam(r, "badge_id"))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	badgeID, err := badgeParam(r)
	if err != nil {
		h.CreateResponse(w, http.StatusBadRequest, Response{Message: "invalid badge_id"})
		return
	}
	if err := h.users.Deregister(r.Context(), badgeID); err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, Response{Message: "user deleted", BadgeID: badgeID})
}

func (h *Handler) DeleteAllUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeregisterAll(r.Context()); err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, Response{Message: "all users deleted"})
}

func (h *Handler) ReportMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	report, err := h.movements.ReportMovement(r.Context(), req.BadgeID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, report)
}

func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	history, err := h.movements.History(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, history)
}

func (h *Handler) ClearMovements(w http.ResponseWriter, r *http.Request) {
	if err := h.movements.Clear(r.Context()); err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, Response{Message: "all movements deleted"})
}

func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	badgeID, err := badgeParam(r)
	if err != nil {
		h.CreateResponse(w, http.StatusBadRequest, Response{Message: "invalid badge_id"})
		return
	}

	p, err := h.movements.Presence(r.Context(), badgeID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.CreateResponse(w, http.StatusOK, p)
}
