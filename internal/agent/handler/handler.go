package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/agent/service"
	id "fieldforce/pkg/domain"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/httputil"
	request "fieldforce/pkg/platform/middleware/request"
)

// Service defines the agent operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	CreateAgent(ctx context.Context, cmd *service.AgentCommand) (*models.Agent, error)
	UpdateAgent(ctx context.Context, agentID id.AgentID, cmd *service.AgentCommand) (*models.Agent, error)
	GetAgent(ctx context.Context, agentID id.AgentID) (*models.Agent, error)
	ListAgents(ctx context.Context, f models.Filter) (*models.Page, error)
	DeleteAgent(ctx context.Context, agentID id.AgentID) error
	DeactivateAgent(ctx context.Context, agentID id.AgentID) (*models.Agent, error)
	ReactivateAgent(ctx context.Context, agentID id.AgentID) (*models.Agent, error)
	ValidateIdentity(ctx context.Context, t identity.Type, value string) identity.Result
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the read-only routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/identity/validate", h.HandleValidateIdentity)
	r.Get("/agents", h.HandleListAgents)
	r.Get("/agents/schema", h.HandleSchema)
	r.Get("/agents/{id}", h.HandleGetAgent)
}

// RegisterAdmin mounts the write routes. The caller wraps r with the admin token check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/agents", h.HandleCreateAgent)
	r.Put("/agents/{id}", h.HandleUpdateAgent)
	r.Delete("/agents/{id}", h.HandleDeleteAgent)
	r.Post("/agents/{id}/deactivate", h.HandleDeactivateAgent)
	r.Post("/agents/{id}/reactivate", h.HandleReactivateAgent)
}

// HandleValidateIdentity backs as-you-type validation in the capture form. An invalid
// number is a 200 with valid=false; only a malformed request or an unknown id_type is a 400.
func (h *Handler) HandleValidateIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateIdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res := h.service.ValidateIdentity(ctx, identity.Type(req.IDType), req.Value)
	if res.IsUnsupportedType() {
		httputil.WriteError(w, dErrors.NewFields(dErrors.CodeBadRequest, res.ErrorMessage,
			map[string]string{"id_type": res.ErrorMessage}))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toValidateIdentityResponse(res))
}

func (h *Handler) HandleListAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	filter, err := parseListFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.ListAgents(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list agents failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAgentListResponse(page))
}

func (h *Handler) HandleGetAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	agentID, ok := parseAgentID(w, r)
	if !ok {
		return
	}

	agent, err := h.service.GetAgent(ctx, agentID)
	if err != nil {
		h.logFailure(ctx, "get agent failed", err, requestID, "agent_id", agentID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAgentResponse(agent))
}

// HandleCreateAgent answers 400 with a per-field map when the form is invalid and 409
// when the identity number is already on record.
func (h *Handler) HandleCreateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	cmd, ok := httputil.DecodeJSON[service.AgentCommand](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	agent, err := h.service.CreateAgent(ctx, cmd)
	if err != nil {
		h.logFailure(ctx, "create agent failed", err, requestID)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/agents/"+agent.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, toAgentResponse(agent))
}

func (h *Handler) HandleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	agentID, ok := parseAgentID(w, r)
	if !ok {
		return
	}

	cmd, ok := httputil.DecodeJSON[service.AgentCommand](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	agent, err := h.service.UpdateAgent(ctx, agentID, cmd)
	if err != nil {
		h.logFailure(ctx, "update agent failed", err, requestID, "agent_id", agentID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAgentResponse(agent))
}

func (h *Handler) HandleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	agentID, ok := parseAgentID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAgent(ctx, agentID); err != nil {
		h.logFailure(ctx, "delete agent failed", err, requestID, "agent_id", agentID)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDeactivateAgent(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "deactivate agent failed", h.service.DeactivateAgent)
}

func (h *Handler) HandleReactivateAgent(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, "reactivate agent failed", h.service.ReactivateAgent)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, failure string,
	transition func(context.Context, id.AgentID) (*models.Agent, error)) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	agentID, ok := parseAgentID(w, r)
	if !ok {
		return
	}

	agent, err := transition(ctx, agentID)
	if err != nil {
		h.logFailure(ctx, failure, err, requestID, "agent_id", agentID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAgentResponse(agent))
}

// logFailure keeps client mistakes at warn so error logs stay actionable.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, requestID string, attrs ...any) {
	args := append([]any{"error", err, "request_id", requestID}, attrs...)
	switch {
	case dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeBadRequest),
		dErrors.HasCode(err, dErrors.CodeConflict),
		dErrors.HasCode(err, dErrors.CodeNotFound):
		h.logger.WarnContext(ctx, msg, args...)
	default:
		h.logger.ErrorContext(ctx, msg, args...)
	}
}

func parseAgentID(w http.ResponseWriter, r *http.Request) (id.AgentID, bool) {
	agentID, err := id.ParseAgentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid agent id"))
		return id.AgentID{}, false
	}
	return agentID, true
}
