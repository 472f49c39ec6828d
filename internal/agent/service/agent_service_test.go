package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"fieldforce/internal/agent/models"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/sentinel"
	"fieldforce/pkg/testutil"
)

func (s *ServiceSuite) TestCreateAgent() {
	s.Run("stores a normalized active agent and publishes", func() {
		var stored *models.Agent
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a *models.Agent) error {
				stored = a
				return nil
			})
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev models.Event) error {
				s.Equal(models.EventAgentCreated, ev.Type)
				s.Equal(testutil.TestIDs.AgentID1, ev.AgentID)
				s.Equal(identity.TypeNationalID, ev.IdentityType)
				s.Equal("req-1", ev.RequestID)
				return nil
			})

		agent, err := s.service.CreateAgent(s.ctx, validCommand())
		s.Require().NoError(err)
		s.Same(stored, agent)
		s.Equal(testutil.TestIDs.AgentID1, agent.ID)
		s.Equal(models.StatusActive, agent.Status)
		s.Equal(testutil.FixedNow, agent.CreatedAt)
		s.Equal(testutil.NationalIDFemale1990, agent.SAIDNumber)
		s.Equal(1.0, promtest.ToFloat64(s.metrics.AgentsCreated))
	})

	s.Run("validation failure never reaches the store", func() {
		cmd := validCommand()
		cmd.SAIDNumber = "9002020123087"

		_, err := s.service.CreateAgent(s.ctx, cmd)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(map[string]string{"sa_id_no": identity.MsgNationalIDChecksum}, dErrors.FieldsOf(err))
	})

	s.Run("duplicate identity number is a conflict on the identity field", func() {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("agent identity: %w", sentinel.ErrAlreadyUsed))

		_, err := s.service.CreateAgent(s.ctx, validCommand())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(dErrors.FieldsOf(err), "sa_id_no")
		s.Equal(1.0, promtest.ToFloat64(s.metrics.AgentConflicts))
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.CreateAgent(s.ctx, validCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("publish failure does not fail the request", func() {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		_, err := s.service.CreateAgent(s.ctx, validCommand())
		s.Require().NoError(err)
		s.Equal(1.0, promtest.ToFloat64(
			s.metrics.EventsPublished.WithLabelValues(string(models.EventAgentCreated), "failure")))
	})
}

func (s *ServiceSuite) TestUpdateAgent() {
	existing := testutil.NewAgentBuilder().WithID(testutil.TestIDs.AgentID2).
		CreatedAt(testutil.FixedNow.Add(-48 * time.Hour)).Build()

	s.Run("replaces the profile and invalidates the cache", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), testutil.TestIDs.AgentID2).Return(existing.Clone(), nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockCache.EXPECT().Invalidate(gomock.Any(), testutil.TestIDs.AgentID2).Return(nil)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev models.Event) error {
				s.Equal(models.EventAgentUpdated, ev.Type)
				return nil
			})

		cmd := validCommand()
		cmd.IDType = "passport"
		cmd.PassportNumber = " P1234567 "
		cmd.DateOfBirth = "1991-04-03"

		agent, err := s.service.UpdateAgent(s.ctx, testutil.TestIDs.AgentID2, cmd)
		s.Require().NoError(err)
		s.Equal(identity.TypePassport, agent.IdentityType)
		s.Equal("P1234567", agent.PassportNumber)
		s.Empty(agent.SAIDNumber)
		s.Equal(existing.CreatedAt, agent.CreatedAt)
		s.Equal(testutil.FixedNow, agent.UpdatedAt)
		s.Equal(models.StatusActive, agent.Status)
	})

	s.Run("unknown agent", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), testutil.TestIDs.AgentID2).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.UpdateAgent(s.ctx, testutil.TestIDs.AgentID2, validCommand())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("identity number taken by another agent", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), testutil.TestIDs.AgentID2).Return(existing.Clone(), nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		cmd := validCommand()
		cmd.IDType = "passport"
		cmd.PassportNumber = "P1234567"
		cmd.DateOfBirth = "1991-04-03"

		_, err := s.service.UpdateAgent(s.ctx, testutil.TestIDs.AgentID2, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(dErrors.FieldsOf(err), "passport_no")
	})
}

func (s *ServiceSuite) TestGetAgent() {
	agent := testutil.NewAgentBuilder().WithID(testutil.TestIDs.AgentID1).Build()

	s.Run("cache hit skips the store", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), agent.ID).Return(agent.Clone(), nil)

		got, err := s.service.GetAgent(s.ctx, agent.ID)
		s.Require().NoError(err)
		s.Equal(agent.ID, got.ID)
	})

	s.Run("miss loads and caches", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), agent.ID).Return(nil, sentinel.ErrNotFound)
		s.mockStore.EXPECT().FindByID(gomock.Any(), agent.ID).Return(agent.Clone(), nil)
		s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

		got, err := s.service.GetAgent(s.ctx, agent.ID)
		s.Require().NoError(err)
		s.Equal(agent.Surname, got.Surname)
	})

	s.Run("unavailable cache falls back to the store", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), agent.ID).
			Return(nil, fmt.Errorf("get: %w", sentinel.ErrUnavailable))
		s.mockStore.EXPECT().FindByID(gomock.Any(), agent.ID).Return(agent.Clone(), nil)
		s.mockCache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)

		_, err := s.service.GetAgent(s.ctx, agent.ID)
		s.Require().NoError(err)
	})

	s.Run("not found", func() {
		s.mockCache.EXPECT().Get(gomock.Any(), agent.ID).Return(nil, sentinel.ErrNotFound)
		s.mockStore.EXPECT().FindByID(gomock.Any(), agent.ID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.GetAgent(s.ctx, agent.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListAgents() {
	s.Run("normalizes the filter", func() {
		s.mockStore.EXPECT().List(gomock.Any(), models.Filter{
			Query:  "naidoo",
			Status: models.StatusActive,
			Limit:  20,
			Offset: 0,
			SortBy: models.SortBySurname,
		}).Return(&models.Page{Limit: 20}, nil)

		page, err := s.service.ListAgents(s.ctx, models.Filter{
			Query:  "  naidoo ",
			Status: models.StatusActive,
			Offset: -5,
		})
		s.Require().NoError(err)
		s.Equal(20, page.Limit)
	})

	s.Run("rejects unknown status and id type", func() {
		_, err := s.service.ListAgents(s.ctx, models.Filter{Status: "retired", IdentityType: "licence"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Len(dErrors.FieldsOf(err), 2)
	})
}

func (s *ServiceSuite) TestTransitions() {
	active := testutil.NewAgentBuilder().WithID(testutil.TestIDs.AgentID1).Build()
	inactive := testutil.NewAgentBuilder().WithID(testutil.TestIDs.AgentID1).
		WithStatus(models.StatusInactive).Build()

	s.Run("deactivate", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), active.ID).Return(active.Clone(), nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a *models.Agent) error {
				s.Equal(models.StatusInactive, a.Status)
				return nil
			})
		s.mockCache.EXPECT().Invalidate(gomock.Any(), active.ID).Return(nil)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		agent, err := s.service.DeactivateAgent(s.ctx, active.ID)
		s.Require().NoError(err)
		s.False(agent.IsActive())
		s.Equal(1.0, promtest.ToFloat64(s.metrics.AgentTransitions.WithLabelValues("inactive")))
	})

	s.Run("deactivating an inactive agent conflicts", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), inactive.ID).Return(inactive.Clone(), nil)

		_, err := s.service.DeactivateAgent(s.ctx, inactive.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("agent is already inactive", err.Error())
	})

	s.Run("reactivate", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), inactive.ID).Return(inactive.Clone(), nil)
		s.mockStore.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.mockCache.EXPECT().Invalidate(gomock.Any(), inactive.ID).Return(errors.New("redis down"))
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		agent, err := s.service.ReactivateAgent(s.ctx, inactive.ID)
		s.Require().NoError(err)
		s.True(agent.IsActive())
	})

	s.Run("reactivating an active agent conflicts", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), active.ID).Return(active.Clone(), nil)

		_, err := s.service.ReactivateAgent(s.ctx, active.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestDeleteAgent() {
	agent := testutil.NewAgentBuilder().WithID(testutil.TestIDs.AgentID1).Build()

	s.Run("deletes, invalidates and publishes", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), agent.ID).Return(agent.Clone(), nil)
		s.mockStore.EXPECT().Delete(gomock.Any(), agent.ID).Return(nil)
		s.mockCache.EXPECT().Invalidate(gomock.Any(), agent.ID).Return(nil)
		s.mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev models.Event) error {
				s.Equal(models.EventAgentDeleted, ev.Type)
				return nil
			})

		s.Require().NoError(s.service.DeleteAgent(s.ctx, agent.ID))
		s.Equal(1.0, promtest.ToFloat64(s.metrics.AgentsDeleted))
	})

	s.Run("unknown agent", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), agent.ID).Return(nil, sentinel.ErrNotFound)

		err := s.service.DeleteAgent(s.ctx, agent.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestValidateIdentity() {
	res := s.service.ValidateIdentity(s.ctx, identity.TypeNationalID, testutil.NationalIDMale1985)
	s.True(res.Valid)
	s.Equal(testutil.NationalIDMale1985, res.NormalizedValue)

	res = s.service.ValidateIdentity(s.ctx, identity.TypePassport, "A1")
	s.False(res.Valid)
	s.Equal(identity.MsgPassportFormat, res.ErrorMessage)

	res = s.service.ValidateIdentity(s.ctx, identity.Type("licence"), "A1234567")
	s.True(res.IsUnsupportedType())

	s.Equal(1.0, promtest.ToFloat64(s.metrics.IdentityValidations.WithLabelValues("sa_id", "valid")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.IdentityValidations.WithLabelValues("passport", "invalid")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.IdentityValidations.WithLabelValues("unsupported", "invalid")))
}

func (s *ServiceSuite) TestFindAgentByIdentity() {
	agent := testutil.NewAgentBuilder().WithPassport("P1234567").Build()

	s.Run("normalizes before lookup", func() {
		s.mockStore.EXPECT().FindByIdentityNumber(gomock.Any(), identity.TypePassport, "P1234567").
			Return(agent.Clone(), nil)

		got, err := s.service.FindAgentByIdentity(s.ctx, identity.TypePassport, "  P1234567")
		s.Require().NoError(err)
		s.Equal(agent.ID, got.ID)
	})

	s.Run("invalid number", func() {
		_, err := s.service.FindAgentByIdentity(s.ctx, identity.TypeNationalID, "8001015009088")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal(map[string]string{"sa_id_no": identity.MsgNationalIDChecksum}, dErrors.FieldsOf(err))
	})

	s.Run("unknown type", func() {
		_, err := s.service.FindAgentByIdentity(s.ctx, identity.Type("licence"), "x")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}
