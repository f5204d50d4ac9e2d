package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

type stubRepo struct {
	core.AccountRepository

	accounts map[int64]*core.Account
	deleted  []int64
	ips      map[int64]string
}

func (s *stubRepo) GetAccount(ctx context.Context, id int64) (*core.Account, error) {
	if acct, ok := s.accounts[id]; ok {
		return acct, nil
	}
	return nil, core.ErrNotFound
}

func (s *stubRepo) DeleteAccount(ctx context.Context, id int64) error {
	delete(s.accounts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) SetRegistrationIP(ctx context.Context, id int64, ip string) error {
	if s.ips == nil {
		s.ips = make(map[int64]string)
	}
	s.ips[id] = ip
	return nil
}

type stubInvalidator struct {
	invalidated []int64
}

func (s *stubInvalidator) Invalidate(ctx context.Context, acct *core.Account) error {
	s.invalidated = append(s.invalidated, acct.ID)
	return nil
}

func testConfig() config.LifecycleConfig {
	return config.LifecycleConfig{
		ProtectedRoles:        []string{"administrator", "editor"},
		ProtectActiveAccounts: true,
	}
}

func TestCanDelete(t *testing.T) {
	assert := assert.New(t)
	m := NewManager(&stubRepo{}, nil, testConfig(), zap.NewNop())

	admin := &core.Account{ID: 1, Roles: []string{"Administrator"}}
	ok, reason := m.CanDelete(admin, false)
	assert.False(ok)
	assert.Contains(reason, "protected role")

	// Protected roles cannot be forced.
	ok, _ = m.CanDelete(admin, true)
	assert.False(ok)

	active := &core.Account{ID: 2, Roles: []string{"subscriber"}, PostCount: 3}
	ok, reason = m.CanDelete(active, false)
	assert.False(ok)
	assert.Contains(reason, "activity")

	// The activity guard yields to force.
	ok, _ = m.CanDelete(active, true)
	assert.True(ok)

	idle := &core.Account{ID: 3, Roles: []string{"subscriber"}}
	ok, _ = m.CanDelete(idle, false)
	assert.True(ok)
}

func TestDeleteAccounts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	registered := time.Now().Add(-60 * 24 * time.Hour)
	repo := &stubRepo{accounts: map[int64]*core.Account{
		1: {ID: 1, Username: "spambot1", Roles: []string{"subscriber"}, RegisteredAt: registered},
		2: {ID: 2, Username: "realadmin", Roles: []string{"administrator"}, RegisteredAt: registered},
		3: {ID: 3, Username: "busyuser", Roles: []string{"subscriber"}, CommentCount: 5, RegisteredAt: registered},
	}}
	invalidator := &stubInvalidator{}
	m := NewManager(repo, invalidator, testConfig(), zap.NewNop())

	report, err := m.DeleteAccounts(ctx, []int64{1, 2, 3, 99}, false)
	require.NoError(t, err)

	assert.Equal(1, report.Deleted)
	assert.Equal(3, report.Skipped)
	assert.Equal(0, report.Failed)
	assert.Equal([]int64{1}, repo.deleted)
	assert.Equal([]int64{1}, invalidator.invalidated)
	require.Len(t, report.Outcomes, 4)

	// Force lets the deletion through for the active account but still
	// not for the protected role.
	report, err = m.DeleteAccounts(ctx, []int64{2, 3}, true)
	require.NoError(t, err)
	assert.Equal(1, report.Deleted)
	assert.Equal(1, report.Skipped)
	assert.Equal([]int64{1, 3}, repo.deleted)
}
