package role

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		grants []Role
		want   Role
	}{
		{nil, User},
		{[]Role{}, User},
		{[]Role{User}, User},
		{[]Role{Partner, User}, Partner},
		{[]Role{Driver, User}, Driver},
		{[]Role{User, Driver}, Driver},
		{[]Role{Admin, Driver, Partner, User}, Admin},
		{[]Role{Partner, Admin}, Admin},
		{[]Role{Driver, Driver}, Driver},
		{[]Role{"superuser"}, User},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Resolve(tc.grants), "Resolve(%v)", tc.grants)
	}
}

func TestResolveStrings(t *testing.T) {
	assert.Equal(t, Driver, ResolveStrings([]string{"user", "driver"}))
	assert.Equal(t, User, ResolveStrings([]string{"root", ""}))
	assert.Equal(t, User, ResolveStrings(nil))
}

type grantStoreFunc func(ctx context.Context, actorID string) ([]Role, error)

func (f grantStoreFunc) Grants(ctx context.Context, actorID string) ([]Role, error) {
	return f(ctx, actorID)
}

func TestService_Effective(t *testing.T) {
	stored := map[string][]Role{
		"a1": {Admin},
		"d1": {User, Driver},
	}
	svc := NewService(grantStoreFunc(func(_ context.Context, id string) ([]Role, error) {
		return stored[id], nil
	}))
	ctx := context.Background()

	got, err := svc.Effective(ctx, "a1", nil)
	require.NoError(t, err)
	assert.Equal(t, Admin, got)

	got, err = svc.Effective(ctx, "d1", []string{"partner"})
	require.NoError(t, err)
	assert.Equal(t, Driver, got)

	got, err = svc.Effective(ctx, "nobody", nil)
	require.NoError(t, err)
	assert.Equal(t, User, got)

	got, err = svc.Effective(ctx, "nobody", []string{"partner", "bogus"})
	require.NoError(t, err)
	assert.Equal(t, Partner, got)
}

func TestService_Effective_ReflectsGrantChanges(t *testing.T) {
	grants := []Role{User}
	svc := NewService(grantStoreFunc(func(context.Context, string) ([]Role, error) {
		return grants, nil
	}))

	before, err := svc.Effective(context.Background(), "x", nil)
	require.NoError(t, err)
	grants = append(grants, Driver)
	after, err := svc.Effective(context.Background(), "x", nil)
	require.NoError(t, err)

	assert.Equal(t, User, before)
	assert.Equal(t, Driver, after)
}

func TestService_Effective_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(grantStoreFunc(func(context.Context, string) ([]Role, error) {
		return nil, boom
	}))
	_, err := svc.Effective(context.Background(), "x", nil)
	assert.ErrorIs(t, err, boom)
}
