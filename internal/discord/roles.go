package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/enrollment-verifier/internal/config"
	"github.com/rs/zerolog"
)

// RoleClient implements the batch utility's role operations over a
// short-lived gateway session. Membership is resolved per guild with REST
// lookups; a user who left every guild yields a failed grant, which the
// batch reports and moves past.
type RoleClient struct {
	session  *discordgo.Session
	roleName string
	ready    chan struct{}
	log      zerolog.Logger

	// guild id -> verified role id, resolved once per run
	roleIDs map[string]string
}

// NewRoleClient creates and connects the batch session
func NewRoleClient(cfg *config.DiscordConfig, log zerolog.Logger) (*RoleClient, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMembers

	client := &RoleClient{
		session:  session,
		roleName: cfg.VerifiedRole,
		ready:    make(chan struct{}),
		roleIDs:  make(map[string]string),
		log:      log.With().Str("component", "discord").Logger(),
	}

	session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		client.log.Info().Str("user", r.User.String()).Msg("Discord client connected")
		close(client.ready)
	})

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("open discord gateway: %w", err)
	}
	return client, nil
}

// WaitReady blocks until the gateway session is usable
func (c *RoleClient) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("discord session not ready: %w", ctx.Err())
	case <-time.After(30 * time.Second):
		return fmt.Errorf("discord session not ready after 30s")
	}
}

// Close shuts the gateway session down
func (c *RoleClient) Close() error {
	return c.session.Close()
}

// HasVerifiedRole reports whether the user holds the verified role in any
// guild the session can see
func (c *RoleClient) HasVerifiedRole(userID int64) bool {
	uid := strconv.FormatInt(userID, 10)
	for _, guild := range c.session.State.Guilds {
		roleID, err := c.verifiedRoleID(guild.ID)
		if err != nil {
			continue
		}
		member, err := c.session.GuildMember(guild.ID, uid)
		if err != nil {
			continue
		}
		for _, r := range member.Roles {
			if r == roleID {
				return true
			}
		}
	}
	return false
}

// GrantVerifiedRole adds the verified role to the user in the first guild
// where they are a member
func (c *RoleClient) GrantVerifiedRole(userID int64) error {
	uid := strconv.FormatInt(userID, 10)
	for _, guild := range c.session.State.Guilds {
		if _, err := c.session.GuildMember(guild.ID, uid); err != nil {
			continue
		}
		roleID, err := c.verifiedRoleID(guild.ID)
		if err != nil {
			return fmt.Errorf("guild %s: %w", guild.ID, err)
		}
		if err := c.session.GuildMemberRoleAdd(guild.ID, uid, roleID); err != nil {
			return fmt.Errorf("add role in guild %s: %w", guild.ID, err)
		}
		return nil
	}
	return fmt.Errorf("user %d is not a member of any visible guild", userID)
}

// verifiedRoleID resolves the configured role name in a guild, cached for
// the lifetime of the run
func (c *RoleClient) verifiedRoleID(guildID string) (string, error) {
	if id, ok := c.roleIDs[guildID]; ok {
		if id == "" {
			return "", fmt.Errorf("role %q not found", c.roleName)
		}
		return id, nil
	}

	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return "", fmt.Errorf("list roles: %w", err)
	}
	for _, role := range roles {
		if strings.EqualFold(role.Name, c.roleName) {
			c.roleIDs[guildID] = role.ID
			return role.ID, nil
		}
	}

	c.roleIDs[guildID] = ""
	return "", fmt.Errorf("role %q not found", c.roleName)
}
