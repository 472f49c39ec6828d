package store

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"fieldforce/internal/agent/models"
	id "fieldforce/pkg/domain"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/sentinel"
	"fieldforce/pkg/testutil"
)

type agentStore interface {
	Create(ctx context.Context, a *models.Agent) error
	Update(ctx context.Context, a *models.Agent) error
	FindByID(ctx context.Context, agentID id.AgentID) (*models.Agent, error)
	FindByIdentityNumber(ctx context.Context, t identity.Type, number string) (*models.Agent, error)
	List(ctx context.Context, f models.Filter) (*models.Page, error)
	Delete(ctx context.Context, agentID id.AgentID) error
	Count(ctx context.Context) (int, error)
}

var (
	_ agentStore = (*InMemory)(nil)
	_ agentStore = (*SQLStore)(nil)
)

// StoreContractSuite runs the same behavioural checks against every store.
// Embedders set newStore; it must return an empty store.
type StoreContractSuite struct {
	suite.Suite
	newStore func() agentStore
	store    agentStore
	ctx      context.Context
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func (s *StoreContractSuite) create(a *models.Agent) *models.Agent {
	s.Require().NoError(s.store.Create(s.ctx, a))
	return a
}

func (s *StoreContractSuite) TestCreateAndFind() {
	bank := models.BankAccount{BankName: "FNB", AccountHolder: "T Agent", AccountNumber: "62001234567", BranchCode: "250655", AccountType: models.AccountTypeCheque}
	addr := models.Address{Line1: "12 Long St", City: "Cape Town", Province: "Western Cape", PostalCode: "8001"}
	a := s.create(testutil.NewAgentBuilder().WithBank(bank).WithAddress(addr).Build())

	got, err := s.store.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)
	s.Equal(a.FirstName, got.FirstName)
	s.Equal(a.SAIDNumber, got.SAIDNumber)
	s.Empty(got.PassportNumber)
	s.Equal(bank, got.Bank)
	s.Equal(addr, got.Address)
	s.Equal(models.StatusActive, got.Status)
	s.Require().NotNil(got.DateOfBirth)
	s.Equal("1980-01-01", got.DateOfBirth.Format(time.DateOnly))
	s.True(a.CreatedAt.Equal(got.CreatedAt))

	byNumber, err := s.store.FindByIdentityNumber(s.ctx, identity.TypeNationalID, a.SAIDNumber)
	s.Require().NoError(err)
	s.Equal(a.ID, byNumber.ID)

	_, err = s.store.FindByIdentityNumber(s.ctx, identity.TypePassport, a.SAIDNumber)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestFindMissing() {
	_, err := s.store.FindByID(s.ctx, id.NewAgentID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestCreateDuplicateIdentityNumber() {
	s.create(testutil.NewAgentBuilder().WithPassport("A1234567").Build())

	err := s.store.Create(s.ctx, testutil.NewAgentBuilder().WithPassport("A1234567").Build())
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	// Uniqueness is on the exact stored value.
	s.NoError(s.store.Create(s.ctx, testutil.NewAgentBuilder().WithPassport("a1234567").Build()))

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *StoreContractSuite) TestUpdate() {
	a := s.create(testutil.NewAgentBuilder().Build())

	a.Surname = "Mokoena"
	a.Status = models.StatusInactive
	a.UpdatedAt = a.UpdatedAt.Add(time.Hour)
	s.Require().NoError(s.store.Update(s.ctx, a))

	got, err := s.store.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Mokoena", got.Surname)
	s.Equal(models.StatusInactive, got.Status)
	s.True(a.UpdatedAt.Equal(got.UpdatedAt))
}

func (s *StoreContractSuite) TestUpdateMovesIdentityNumber() {
	a := s.create(testutil.NewAgentBuilder().Build())
	other := s.create(testutil.NewAgentBuilder().WithNationalID(testutil.NationalIDFemale1990).Build())

	a.IdentityType = identity.TypePassport
	a.SAIDNumber = ""
	a.PassportNumber = "P9876543"
	s.Require().NoError(s.store.Update(s.ctx, a))

	_, err := s.store.FindByIdentityNumber(s.ctx, identity.TypeNationalID, testutil.NationalIDMale1980)
	s.ErrorIs(err, sentinel.ErrNotFound)
	got, err := s.store.FindByIdentityNumber(s.ctx, identity.TypePassport, "P9876543")
	s.Require().NoError(err)
	s.Equal(a.ID, got.ID)

	other.SAIDNumber = ""
	other.IdentityType = identity.TypePassport
	other.PassportNumber = "P9876543"
	s.ErrorIs(s.store.Update(s.ctx, other), sentinel.ErrAlreadyUsed)
}

func (s *StoreContractSuite) TestUpdateMissing() {
	s.ErrorIs(s.store.Update(s.ctx, testutil.NewAgentBuilder().Build()), sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestDelete() {
	a := s.create(testutil.NewAgentBuilder().Build())
	s.Require().NoError(s.store.Delete(s.ctx, a.ID))

	_, err := s.store.FindByID(s.ctx, a.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, a.ID), sentinel.ErrNotFound)

	// The identity number is free again.
	s.NoError(s.store.Create(s.ctx, testutil.NewAgentBuilder().Build()))
}

func (s *StoreContractSuite) seedList() {
	surnames := []string{"Zulu", "adams", "Botha", "Naidoo", "Smith", "smithers"}
	for i, surname := range surnames {
		b := testutil.NewAgentBuilder().
			WithName("Agent", surname).
			WithEmail(fmt.Sprintf("agent%d@example.com", i)).
			WithPassport(fmt.Sprintf("PX%06d", i)).
			CreatedAt(testutil.FixedNow.Add(time.Duration(i) * time.Minute))
		if i%2 == 1 {
			b = b.WithStatus(models.StatusInactive)
		}
		s.create(b.Build())
	}
	s.create(testutil.NewAgentBuilder().WithName("Lerato", "Khumalo").
		WithNationalID(testutil.NationalIDFemale1990).
		CreatedAt(testutil.FixedNow.Add(-time.Hour)).Build())
}

func (s *StoreContractSuite) list(f models.Filter) *models.Page {
	f.Normalize()
	page, err := s.store.List(s.ctx, f)
	s.Require().NoError(err)
	return page
}

func surnamesOf(p *models.Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, a := range p.Items {
		out = append(out, a.Surname)
	}
	return out
}

func (s *StoreContractSuite) TestListSortsBySurnameCaseInsensitively() {
	s.seedList()
	page := s.list(models.Filter{})
	s.Equal(7, page.Total)
	s.Equal([]string{"adams", "Botha", "Khumalo", "Naidoo", "Smith", "smithers", "Zulu"}, surnamesOf(page))

	page = s.list(models.Filter{SortDesc: true, Limit: 2})
	s.Equal([]string{"Zulu", "smithers"}, surnamesOf(page))
}

func (s *StoreContractSuite) TestListSearchIsCaseInsensitiveAndPaged() {
	s.seedList()

	page := s.list(models.Filter{Query: "SMITH", Limit: 1})
	s.Equal(2, page.Total, "total counts every match")
	s.Equal([]string{"Smith"}, surnamesOf(page))

	page = s.list(models.Filter{Query: "smith", Limit: 1, Offset: 1})
	s.Equal([]string{"smithers"}, surnamesOf(page))

	page = s.list(models.Filter{Query: "smith", Offset: 10})
	s.Equal(2, page.Total)
	s.Empty(page.Items)

	page = s.list(models.Filter{Query: "900202"})
	s.Equal([]string{"Khumalo"}, surnamesOf(page), "search covers SA ID numbers")

	page = s.list(models.Filter{Query: "px000003"})
	s.Equal([]string{"Naidoo"}, surnamesOf(page), "search covers passport numbers")

	page = s.list(models.Filter{Query: "agent4@"})
	s.Equal([]string{"Smith"}, surnamesOf(page), "search covers email")

	page = s.list(models.Filter{Query: "%"})
	s.Zero(page.Total, "LIKE wildcards are matched literally")
}

func (s *StoreContractSuite) TestListFilters() {
	s.seedList()

	page := s.list(models.Filter{Status: models.StatusInactive})
	s.Equal([]string{"adams", "Naidoo", "smithers"}, surnamesOf(page))

	page = s.list(models.Filter{IdentityType: identity.TypeNationalID})
	s.Equal([]string{"Khumalo"}, surnamesOf(page))

	page = s.list(models.Filter{SortBy: models.SortByCreatedAt, Limit: 3})
	s.Equal([]string{"Khumalo", "Zulu", "adams"}, surnamesOf(page))
}

func (s *StoreContractSuite) TestListEmpty() {
	page := s.list(models.Filter{})
	s.Zero(page.Total)
	s.NotNil(page.Items)
	s.Empty(page.Items)
	s.Equal(20, page.Limit)
}
