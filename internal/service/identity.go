package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bfmc-tracker/internal/constants"
	"bfmc-tracker/internal/domain"
	"bfmc-tracker/internal/repository"
)

var (
	ErrUnknownNickname = errors.New("nickname has never been seen in a game")
	ErrAlreadyClaimed  = errors.New("nickname is already claimed")
	ErrHasClaim        = errors.New("account has already claimed a nickname")
	ErrNotOwner        = errors.New("account does not own this nickname")
)

// IdentityService links Discord accounts to nicknames and manages the
// profile display color. One claim per account; claiming is permanent
// short of an admin reassign.
type IdentityService struct {
	playerRepo *repository.PlayerStatsRepository
	logger     zerolog.Logger
}

func NewIdentityService(playerRepo *repository.PlayerStatsRepository, logger zerolog.Logger) *IdentityService {
	return &IdentityService{playerRepo: playerRepo, logger: logger}
}

// Claim associates a Discord account with an unclaimed nickname.
func (s *IdentityService) Claim(ctx context.Context, nickname string, discordUID int64) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	owned, err := s.playerRepo.GetByDiscordUID(ctx, discordUID)
	if err != nil {
		return err
	}
	if owned != nil {
		return fmt.Errorf("%w: %q", ErrHasClaim, owned.Nickname)
	}

	player, err := s.playerRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if player == nil {
		return fmt.Errorf("%w: %q", ErrUnknownNickname, nickname)
	}
	if player.DiscordUID != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyClaimed, nickname)
	}

	if err := s.playerRepo.SetDiscordUID(ctx, player.ID, &discordUID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("discord_uid", discordUID).
		Str("nickname", nickname).
		Msg("nickname claimed")
	return nil
}

// SetColor updates the profile banner color of a nickname the account owns.
func (s *IdentityService) SetColor(ctx context.Context, nickname string, discordUID int64, color domain.RGB) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if !validChannel(color.R) || !validChannel(color.G) || !validChannel(color.B) {
		return fmt.Errorf("color channels must be 0-255, got (%d, %d, %d)", color.R, color.G, color.B)
	}

	player, err := s.playerRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if player == nil || player.DiscordUID == nil || *player.DiscordUID != discordUID {
		return fmt.Errorf("%w: %q", ErrNotOwner, nickname)
	}

	return s.playerRepo.SetColor(ctx, player.ID, color)
}

// Assign sets (or with uid 0 clears) a nickname's owner unconditionally.
// Reserved for the admin surface.
func (s *IdentityService) Assign(ctx context.Context, nickname string, discordUID int64) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.playerRepo.GetByNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if player == nil {
		return fmt.Errorf("%w: %q", ErrUnknownNickname, nickname)
	}

	var uid *int64
	if discordUID != 0 {
		uid = &discordUID
	}
	if err := s.playerRepo.SetDiscordUID(ctx, player.ID, uid); err != nil {
		return err
	}

	s.logger.Info().
		Int64("discord_uid", discordUID).
		Str("nickname", nickname).
		Msg("nickname ownership assigned")
	return nil
}

func validChannel(v int) bool {
	return v >= 0 && v <= 255
}
