package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const (
	colorGreen = 0x2ecc71
	colorBlue  = 0x3498db
	colorRed   = 0xe74c3c
)

// DiscordNotifier posts tracker events as embeds to a stats channel. The
// session is REST-only; no gateway connection is opened.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	logger    zerolog.Logger
}

func NewDiscordNotifier(token, channelID string, logger zerolog.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		logger:    logger,
	}, nil
}

func (n *DiscordNotifier) MatchFinished(_ context.Context, event MatchFinishedEvent) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Player Stats Saved!",
		Description: fmt.Sprintf("Map Played: *%s*\nTop Player: *%s*", event.MapName, event.TopPlayer),
		Color:       colorGreen,
		Author: &discordgo.MessageEmbedAuthor{
			Name: fmt.Sprintf("%q has finished a game...", event.ServerName),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Data captured at final game time of %s", event.FinalElapsed),
		},
	}
	return n.send(embed)
}

func (n *DiscordNotifier) NewGameStarted(_ context.Context, event NewGameStartedEvent) error {
	embed := &discordgo.MessageEmbed{
		Title:       "New Game Started",
		Description: fmt.Sprintf("%q has started a new game on *%s*.", event.ServerName, event.MapName),
		Color:       colorBlue,
	}
	return n.send(embed)
}

func (n *DiscordNotifier) ServerOffline(_ context.Context, event ServerOfflineEvent) error {
	embed := &discordgo.MessageEmbed{
		Title:       "Server Offline",
		Description: fmt.Sprintf("%q has gone offline.", event.ServerName),
		Color:       colorRed,
	}
	return n.send(embed)
}

func (n *DiscordNotifier) send(embed *discordgo.MessageEmbed) error {
	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		n.logger.Error().Err(err).Str("channel_id", n.channelID).Msg("failed to send discord embed")
		return fmt.Errorf("failed to send discord embed: %w", err)
	}
	return nil
}
