// Package discord wires the intake and verification services to the Discord
// gateway. It stays thin: events are translated into service calls and
// service replies into DMs, with no decisions made here.
package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/enrollment-verifier/internal/config"
	"github.com/enrollment-verifier/internal/intake"
	"github.com/rs/zerolog"
)

// Bot is the long-running intake listener
type Bot struct {
	session *discordgo.Session
	intake  *intake.Service
	cfg     *config.DiscordConfig
	log     zerolog.Logger
}

// NewBot creates the Discord session for the intake bot
func NewBot(cfg *config.DiscordConfig, svc *intake.Service, log zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		session: session,
		intake:  svc,
		cfg:     cfg,
		log:     log.With().Str("component", "discord").Logger(),
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onReactionAdd)
	session.AddHandler(bot.onMessage)

	return bot, nil
}

// Start opens the gateway connection
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() error {
	return b.session.Close()
}

// onReady verifies the monitored message is reachable. Failures are logged,
// not fatal: the channel may become visible later.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().Str("user", r.User.String()).Msg("Connected to Discord")

	if _, err := s.ChannelMessage(b.cfg.ChannelID, b.cfg.MessageID); err != nil {
		b.log.Warn().Err(err).
			Str("channel_id", b.cfg.ChannelID).
			Str("message_id", b.cfg.MessageID).
			Msg("Monitored message is not accessible")
		return
	}
	b.log.Info().
		Str("channel_id", b.cfg.ChannelID).
		Str("message_id", b.cfg.MessageID).
		Msg("Monitoring message")
}

// onReactionAdd starts intake for users reacting with the configured emoji
// on the monitored message
func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageID != b.cfg.MessageID {
		return
	}
	if r.Emoji.Name != b.cfg.ReactionEmoji {
		return
	}
	if r.UserID == s.State.User.ID {
		return
	}

	userID, err := strconv.ParseInt(r.UserID, 10, 64)
	if err != nil {
		b.log.Error().Str("user_id", r.UserID).Msg("Unparseable user ID on reaction")
		return
	}

	username := r.UserID
	if user, err := s.User(r.UserID); err == nil {
		username = user.String()
	}

	reply, err := b.intake.HandleReaction(context.Background(), userID, username)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("Reaction handling failed")
		return
	}
	if reply == nil {
		return
	}

	if err := b.sendDM(s, r.UserID, reply.Message); err != nil {
		b.log.Warn().Err(err).Str("username", username).Msg("Cannot send DM to user")
		if reply.Prompted {
			b.intake.RollbackPrompt(userID)
		}
	}
}

// onMessage feeds direct messages from mid-intake users to the service
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	// Guild messages carry a guild ID; DMs do not
	if m.GuildID != "" {
		return
	}

	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}

	reply, err := b.intake.HandleSubmission(context.Background(), userID, m.Author.String(), m.Content)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("Submission handling failed")
		return
	}
	if reply == nil {
		return
	}

	if _, err := s.ChannelMessageSend(m.ChannelID, reply.Message); err != nil {
		b.log.Warn().Err(err).Int64("user_id", userID).Msg("Could not reply to submission")
	}
}

func (b *Bot) sendDM(s *discordgo.Session, userID, message string) error {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("create DM channel: %w", err)
	}
	if _, err := s.ChannelMessageSend(channel.ID, message); err != nil {
		return fmt.Errorf("send DM: %w", err)
	}
	return nil
}
