//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fieldforce/pkg/testutil/containers"
)

type PostgresSuite struct {
	StoreContractSuite
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := new(PostgresSuite)
	s.newStore = func() agentStore {
		pg := containers.GetManager().GetPostgres(s.T())
		require.NoError(s.T(), pg.TruncateAll(context.Background()))
		return NewSQL(pg.DB, pg.Dialect)
	}
	suite.Run(t, s)
}
