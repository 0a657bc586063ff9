package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/repository"
)

func newIdentityService(t *testing.T) (*IdentityService, *repository.PlayerStatsRepository) {
	t.Helper()

	playerRepo := repository.NewPlayerStatsRepository(newTestDB(t), zerolog.Nop())
	return NewIdentityService(playerRepo, zerolog.Nop()), playerRepo
}

func seedPlayer(t *testing.T, repo *repository.PlayerStatsRepository, nickname string) *domain.PlayerStats {
	t.Helper()

	p := &domain.PlayerStats{Nickname: nickname, FirstSeen: time.Now()}
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func TestClaim(t *testing.T) {
	svc, repo := newIdentityService(t)
	ctx := context.Background()
	seedPlayer(t, repo, "Sniper")

	require.NoError(t, svc.Claim(ctx, "Sniper", 42))

	got, err := repo.GetByNickname(ctx, "Sniper")
	require.NoError(t, err)
	require.NotNil(t, got.DiscordUID)
	require.EqualValues(t, 42, *got.DiscordUID)
}

func TestClaimRules(t *testing.T) {
	svc, repo := newIdentityService(t)
	ctx := context.Background()
	seedPlayer(t, repo, "Sniper")
	seedPlayer(t, repo, "Medic")

	require.ErrorIs(t, svc.Claim(ctx, "NoSuchPlayer", 42), ErrUnknownNickname)

	require.NoError(t, svc.Claim(ctx, "Sniper", 42))
	// one claim per account
	require.ErrorIs(t, svc.Claim(ctx, "Medic", 42), ErrHasClaim)
	// one owner per nickname
	require.ErrorIs(t, svc.Claim(ctx, "Sniper", 43), ErrAlreadyClaimed)
}

func TestSetColor(t *testing.T) {
	svc, repo := newIdentityService(t)
	ctx := context.Background()
	seedPlayer(t, repo, "Sniper")
	require.NoError(t, svc.Claim(ctx, "Sniper", 42))

	require.NoError(t, svc.SetColor(ctx, "Sniper", 42, domain.RGB{R: 255, G: 0, B: 128}))

	got, err := repo.GetByNickname(ctx, "Sniper")
	require.NoError(t, err)
	require.Equal(t, &domain.RGB{R: 255, G: 0, B: 128}, got.Color)

	// only the owner may recolor
	require.ErrorIs(t, svc.SetColor(ctx, "Sniper", 99, domain.RGB{}), ErrNotOwner)
	// channels are range checked
	require.Error(t, svc.SetColor(ctx, "Sniper", 42, domain.RGB{R: 300}))
}

func TestAssignAndClear(t *testing.T) {
	svc, repo := newIdentityService(t)
	ctx := context.Background()
	seedPlayer(t, repo, "Sniper")
	require.NoError(t, svc.Claim(ctx, "Sniper", 42))

	// admin reassign overrides the claim
	require.NoError(t, svc.Assign(ctx, "Sniper", 77))
	got, err := repo.GetByNickname(ctx, "Sniper")
	require.NoError(t, err)
	require.EqualValues(t, 77, *got.DiscordUID)

	// uid 0 clears ownership
	require.NoError(t, svc.Assign(ctx, "Sniper", 0))
	got, err = repo.GetByNickname(ctx, "Sniper")
	require.NoError(t, err)
	require.Nil(t, got.DiscordUID)

	require.ErrorIs(t, svc.Assign(ctx, "Ghost", 1), ErrUnknownNickname)
}
