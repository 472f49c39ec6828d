package service

import (
	"context"
	"errors"
	"time"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/platform/tracer"
	id "fieldforce/pkg/domain"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/privacy"
	"fieldforce/pkg/platform/sentinel"
	"fieldforce/pkg/requestcontext"
)

// CreateAgent validates cmd and stores a new active agent.
// Validation failures carry one message per form field; a duplicate identity number is
// a CodeConflict keyed by sa_id_no or passport_no.
func (s *Service) CreateAgent(ctx context.Context, cmd *AgentCommand) (_ *models.Agent, err error) {
	defer s.observe("create", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAgentCreate)
	defer func() { span.End(err) }()

	cmd.Normalize()
	now := requestcontext.Now(ctx)
	profile, err := cmd.Profile(now)
	if err != nil {
		return nil, err
	}
	agent, err := models.NewAgent(s.newID(), profile, now)
	if err != nil {
		return nil, profileErr(err)
	}
	span.SetAttributes(
		tracer.String(tracer.AttrAgentID, agent.ID.String()),
		tracer.String(tracer.AttrIdentityType, agent.IdentityType.String()),
	)

	if err = s.store.Create(ctx, agent); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.countConflict()
			return nil, identityConflict(agent.IdentityType)
		}
		return nil, wrapAgentErr(err, "failed to create agent")
	}

	s.logAudit(ctx, string(models.EventAgentCreated),
		"agent_id", agent.ID,
		"id_type", agent.IdentityType,
		"identity_number", privacy.MaskIdentityNumber(agent.IdentityNumber()),
		"actor", requestcontext.AdminActor(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementAgentsCreated()
	}
	s.publish(ctx, models.EventAgentCreated, agent, now)
	return agent, nil
}

// UpdateAgent replaces the profile of an existing agent. Status and CreatedAt are kept.
func (s *Service) UpdateAgent(ctx context.Context, agentID id.AgentID, cmd *AgentCommand) (_ *models.Agent, err error) {
	defer s.observe("update", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAgentUpdate, tracer.String(tracer.AttrAgentID, agentID.String()))
	defer func() { span.End(err) }()

	cmd.Normalize()
	now := requestcontext.Now(ctx)
	profile, err := cmd.Profile(now)
	if err != nil {
		return nil, err
	}

	var updated *models.Agent
	var identityChanged bool
	err = s.locks.Do(agentID.String(), func() error {
		current, err := s.store.FindByID(ctx, agentID)
		if err != nil {
			return wrapAgentErr(err, "failed to load agent")
		}
		identityChanged = current.IdentityType != profile.IdentityType ||
			current.IdentityNumber() != profile.IdentityNumber()
		if err := current.ApplyProfile(profile, now); err != nil {
			return profileErr(err)
		}
		if err := s.store.Update(ctx, current); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				s.countConflict()
				return identityConflict(current.IdentityType)
			}
			return wrapAgentErr(err, "failed to update agent")
		}
		s.invalidate(ctx, agentID)
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.AddEvent(tracer.EventCacheInvalidated)
	s.logAudit(ctx, string(models.EventAgentUpdated),
		"agent_id", agentID,
		"id_type", updated.IdentityType,
		"identity_changed", identityChanged,
		"actor", requestcontext.AdminActor(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementAgentsUpdated()
	}
	s.publish(ctx, models.EventAgentUpdated, updated, now)
	return updated, nil
}

// GetAgent reads through the profile cache. Cache failures fall back to the store.
func (s *Service) GetAgent(ctx context.Context, agentID id.AgentID) (_ *models.Agent, err error) {
	defer s.observe("get", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAgentGet, tracer.String(tracer.AttrAgentID, agentID.String()))
	defer func() { span.End(err) }()

	if s.cache != nil {
		cached, cacheErr := s.cache.Get(ctx, agentID)
		if cacheErr == nil {
			span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
			return cached, nil
		}
		if !errors.Is(cacheErr, sentinel.ErrNotFound) {
			s.logCacheErr(ctx, "failed to read cached agent", agentID, cacheErr)
		}
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	// The fill holds the agent's lock so it cannot land after a writer's invalidation.
	var agent *models.Agent
	err = s.locks.Do(agentID.String(), func() error {
		found, err := s.store.FindByID(ctx, agentID)
		if err != nil {
			return wrapAgentErr(err, "failed to load agent")
		}
		if s.cache != nil {
			if setErr := s.cache.Set(ctx, found); setErr != nil {
				s.logCacheErr(ctx, "failed to cache agent", agentID, setErr)
			}
		}
		agent = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agent, nil
}

// ListAgents returns one page of agents matching f after normalizing it.
func (s *Service) ListAgents(ctx context.Context, f models.Filter) (_ *models.Page, err error) {
	defer s.observe("list", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAgentList)
	defer func() { span.End(err) }()

	fields := map[string]string{}
	if f.Status != "" && !f.Status.IsValid() {
		fields["status"] = "status must be one of [active inactive]"
	}
	if f.IdentityType != "" && !f.IdentityType.IsValid() {
		fields["id_type"] = "id_type must be one of [sa_id passport]"
	}
	if len(fields) > 0 {
		return nil, validationError(fields)
	}
	f.Normalize()

	page, err := s.store.List(ctx, f)
	if err != nil {
		return nil, wrapAgentErr(err, "failed to list agents")
	}
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, len(page.Items)))
	return page, nil
}

// FindAgentByIdentity looks an agent up by identity document. The number is validated
// and normalized first, so a padded passport number still matches.
func (s *Service) FindAgentByIdentity(ctx context.Context, t identity.Type, number string) (*models.Agent, error) {
	res := identity.Validate(t, number)
	if !res.Valid {
		if res.IsUnsupportedType() {
			return nil, dErrors.New(dErrors.CodeBadRequest, "unsupported identification type")
		}
		return nil, dErrors.NewFields(dErrors.CodeValidation, res.ErrorMessage,
			map[string]string{t.FieldName(): res.ErrorMessage})
	}
	agent, err := s.store.FindByIdentityNumber(ctx, t, res.NormalizedValue)
	if err != nil {
		return nil, wrapAgentErr(err, "failed to find agent")
	}
	return agent, nil
}

func (s *Service) DeleteAgent(ctx context.Context, agentID id.AgentID) (err error) {
	defer s.observe("delete", time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAgentDelete, tracer.String(tracer.AttrAgentID, agentID.String()))
	defer func() { span.End(err) }()

	var deleted *models.Agent
	err = s.locks.Do(agentID.String(), func() error {
		current, err := s.store.FindByID(ctx, agentID)
		if err != nil {
			return wrapAgentErr(err, "failed to load agent")
		}
		if err := s.store.Delete(ctx, agentID); err != nil {
			return wrapAgentErr(err, "failed to delete agent")
		}
		s.invalidate(ctx, agentID)
		deleted = current
		return nil
	})
	if err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	s.logAudit(ctx, string(models.EventAgentDeleted),
		"agent_id", agentID,
		"id_type", deleted.IdentityType,
		"actor", requestcontext.AdminActor(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementAgentsDeleted()
	}
	s.publish(ctx, models.EventAgentDeleted, deleted, now)
	return nil
}

// DeactivateAgent returns CodeConflict if the agent is already inactive.
func (s *Service) DeactivateAgent(ctx context.Context, agentID id.AgentID) (*models.Agent, error) {
	return s.transition(ctx, agentID, models.EventAgentDeactivated, (*models.Agent).Deactivate)
}

// ReactivateAgent returns CodeConflict if the agent is already active.
func (s *Service) ReactivateAgent(ctx context.Context, agentID id.AgentID) (*models.Agent, error) {
	return s.transition(ctx, agentID, models.EventAgentReactivated, (*models.Agent).Reactivate)
}

func (s *Service) transition(ctx context.Context, agentID id.AgentID, event models.EventType, apply func(*models.Agent, time.Time) error) (_ *models.Agent, err error) {
	defer s.observe(string(event), time.Now())
	ctx, span := s.tracer.Start(ctx, tracer.SpanAgentTransition,
		tracer.String(tracer.AttrAgentID, agentID.String()),
		tracer.String(tracer.AttrTransition, string(event)),
	)
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)
	var agent *models.Agent
	err = s.locks.Do(agentID.String(), func() error {
		current, err := s.store.FindByID(ctx, agentID)
		if err != nil {
			return wrapAgentErr(err, "failed to load agent")
		}
		if err := apply(current, now); err != nil {
			return transitionErr(err)
		}
		if err := s.store.Update(ctx, current); err != nil {
			return wrapAgentErr(err, "failed to update agent status")
		}
		s.invalidate(ctx, agentID)
		agent = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, string(event),
		"agent_id", agentID,
		"status", agent.Status,
		"actor", requestcontext.AdminActor(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(agent.Status))
	}
	s.publish(ctx, event, agent, now)
	return agent, nil
}

// ValidateIdentity is the authoritative check behind the browser's as-you-type
// feedback. It never returns an error; unknown types fail with ReasonUnsupportedType.
func (s *Service) ValidateIdentity(ctx context.Context, t identity.Type, value string) identity.Result {
	_, span := s.tracer.Start(ctx, tracer.SpanIdentityCheck,
		tracer.String(tracer.AttrIdentityType, t.String()),
		tracer.String(tracer.AttrIdentityHash, privacy.HashIdentityNumber(value)),
	)
	res := identity.Validate(t, value)
	span.SetAttributes(tracer.Bool(tracer.AttrValid, res.Valid))
	span.End(nil)

	if s.metrics != nil {
		label := t.String()
		if !t.IsValid() {
			label = "unsupported"
		}
		s.metrics.RecordIdentityValidation(label, res.Valid)
	}
	return res
}

func (s *Service) countConflict() {
	if s.metrics != nil {
		s.metrics.IncrementConflicts()
	}
}
