package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsekit/smsdash/internal/apperrors"
	"github.com/pulsekit/smsdash/internal/model"
)

func newAdminService() (*AdminService, *memProfileRepo, *memInviteRepo) {
	profiles := newMemProfileRepo()
	invites := newMemInviteRepo()
	svc := &AdminService{
		ProfileRepo: profiles,
		InviteRepo:  invites,
	}
	return svc, profiles, invites
}

func seedProfiles(t *testing.T, profiles *memProfileRepo) {
	t.Helper()
	ctx := context.Background()
	seed := []model.UserProfile{
		{UserID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin, Status: model.StatusApproved},
		{UserID: "user-1", Email: "u1@example.com", Role: model.RoleUser, Status: model.StatusPending},
		{UserID: "user-2", Email: "u2@example.com", Role: model.RoleUser, Status: model.StatusPending},
	}
	for i := range seed {
		require.NoError(t, profiles.Create(ctx, &seed[i]))
	}
}

func TestBatchUpdateApprove(t *testing.T) {
	svc, profiles, _ := newAdminService()
	seedProfiles(t, profiles)

	updated, err := svc.BatchUpdateUsers(context.Background(), "admin-1", []string{"user-1", "user-2"}, ActionApprove, "")
	require.NoError(t, err)
	require.Len(t, updated, 2)

	for _, p := range updated {
		assert.Equal(t, model.StatusApproved, p.Status)
		require.NotNil(t, p.ApprovedAt)
		assert.WithinDuration(t, time.Now(), *p.ApprovedAt, time.Minute)
	}
}

func TestBatchUpdateReject(t *testing.T) {
	svc, profiles, _ := newAdminService()
	seedProfiles(t, profiles)

	updated, err := svc.BatchUpdateUsers(context.Background(), "admin-1", []string{"user-1"}, ActionReject, "")
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, model.StatusRejected, updated[0].Status)
	assert.Nil(t, updated[0].ApprovedAt)
}

func TestBatchUpdateRole(t *testing.T) {
	svc, profiles, _ := newAdminService()
	seedProfiles(t, profiles)

	updated, err := svc.BatchUpdateUsers(context.Background(), "admin-1", []string{"user-1"}, ActionUpdateRole, "moderator")
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, model.RoleModerator, updated[0].Role)
}

func TestBatchUpdateRejectsBadInput(t *testing.T) {
	svc, profiles, _ := newAdminService()
	seedProfiles(t, profiles)
	ctx := context.Background()

	cases := []struct {
		name   string
		ids    []string
		action string
		role   string
	}{
		{"empty target list", nil, ActionApprove, ""},
		{"empty identifier", []string{"user-1", ""}, ActionApprove, ""},
		{"self included", []string{"user-1", "admin-1"}, ActionApprove, ""},
		{"invalid action", []string{"user-1"}, "promote", ""},
		{"invalid role", []string{"user-1"}, ActionUpdateRole, "superuser"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := profiles.snapshot()

			_, err := svc.BatchUpdateUsers(ctx, "admin-1", tc.ids, tc.action, tc.role)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

			// Validation happens before any write: the store is untouched.
			assert.Equal(t, before, profiles.snapshot())
		})
	}
}

func TestRejectUser(t *testing.T) {
	svc, profiles, _ := newAdminService()
	seedProfiles(t, profiles)
	ctx := context.Background()

	p, err := svc.RejectUser(ctx, "admin-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, p.Status)

	_, err = svc.RejectUser(ctx, "admin-1", "admin-1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.RejectUser(ctx, "admin-1", "ghost")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestPendingUsers(t *testing.T) {
	svc, profiles, _ := newAdminService()
	seedProfiles(t, profiles)

	pending, err := svc.PendingUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, p := range pending {
		assert.Equal(t, model.StatusPending, p.Status)
	}
}

func TestCreateInvite(t *testing.T) {
	svc, profiles, invites := newAdminService()
	seedProfiles(t, profiles)

	invite, err := svc.CreateInvite(context.Background(), "admin-1", 48*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, invite.Code)
	assert.Equal(t, "admin-1", invite.CreatedBy)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), invite.ExpiresAt, time.Minute)
	assert.Contains(t, invites.invites, invite.Code)
}
