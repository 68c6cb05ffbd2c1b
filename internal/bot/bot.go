package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caylak-bot/internal/config"
	"caylak-bot/internal/modules/antispam"
	"caylak-bot/internal/modules/audit"
	"caylak-bot/internal/modules/leveling"
	"caylak-bot/internal/modules/linkfilter"
	"caylak-bot/internal/modules/wordfilter"
	"caylak-bot/internal/playback"
	"caylak-bot/internal/relay"
	"caylak-bot/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	colorAction  = 0x5865F2
	colorWarning = 0xFEE75C
	colorError   = 0xED4245
	colorSuccess = 0x57F287
)

// platform is the slice of the session API the message-driven paths go
// through, so handler logic can be exercised against a fake.
type platform interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID string, userID string, roleID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

type Bot struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *storage.Store
	audit    *audit.Logger
	words    *wordfilter.Filter
	links    *linkfilter.Module
	spam     *antispam.Tracker
	levels   *leveling.Ledger
	playback *playback.Manager
	session  *discordgo.Session
	chat     platform

	logChannelMu sync.Mutex
	logChannels  map[string]string

	// schedule is swapped out in tests so delayed deletes run synchronously.
	schedule func(delay time.Duration, fn func())
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, auditLogger *audit.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	b := &Bot{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		audit:       auditLogger,
		session:     session,
		chat:        session,
		logChannels: make(map[string]string),
		schedule: func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		},
	}

	b.words = wordfilter.New(cfg.Moderation.BlockedWords)
	b.links = linkfilter.New(cfg.Moderation.LinkFilterEnabled)
	b.spam = antispam.New(time.Duration(cfg.Moderation.SpamWindowMillis)*time.Millisecond, cfg.Moderation.SpamBurst)
	b.levels = leveling.New(cfg.Leveling.LevelStep)
	b.playback = playback.NewManager(logger)

	if b.audit != nil {
		b.audit.SetNotifier(func(ctx context.Context, entry storage.ModerationLog) {
			b.notifyAudit(entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)

	return b.session.Open()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

// Forward posts relayed text to a channel as an embed. Satisfies
// relay.Forwarder. Resolution is against the gateway state cache only; a
// channel the cache has not seen maps to 404 at the relay.
func (b *Bot) Forward(channelID, content string) error {
	if _, err := b.session.State.Channel(channelID); err != nil {
		return relay.ErrChannelNotFound
	}
	embed := &discordgo.MessageEmbed{
		Title:       "📩 Yeni N8N Mesajı",
		Description: content,
		Color:       0x00BFFF,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Çaylak-Go Relay"},
	}
	_, err := b.chat.ChannelMessageSendEmbed(channelID, embed)
	return err
}

// logChannel resolves the guild's log channel, creating it when missing.
func (b *Bot) logChannel(guildID string) (string, error) {
	b.logChannelMu.Lock()
	if id, ok := b.logChannels[guildID]; ok {
		b.logChannelMu.Unlock()
		return id, nil
	}
	b.logChannelMu.Unlock()

	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		guild, err = b.session.Guild(guildID)
		if err != nil {
			return "", err
		}
	}

	var channelID string
	for _, ch := range guild.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == b.cfg.Guild.LogChannelName {
			channelID = ch.ID
			break
		}
	}
	if channelID == "" {
		created, err := b.session.GuildChannelCreate(guildID, b.cfg.Guild.LogChannelName, discordgo.ChannelTypeGuildText)
		if err != nil {
			return "", err
		}
		channelID = created.ID
	}

	b.logChannelMu.Lock()
	b.logChannels[guildID] = channelID
	b.logChannelMu.Unlock()
	return channelID, nil
}

func (b *Bot) notifyAudit(entry storage.ModerationLog) {
	if entry.GuildID == "" {
		return
	}
	channelID, err := b.logChannel(entry.GuildID)
	if err != nil {
		b.logger.Warn("log channel unavailable", zap.String("guild_id", entry.GuildID), zap.Error(err))
		return
	}

	color := colorAction
	switch entry.Level {
	case audit.LevelWarn:
		color = colorWarning
	case audit.LevelCrit:
		color = colorError
	}
	embed := &discordgo.MessageEmbed{
		Title:       entry.Event,
		Description: entry.Details,
		Color:       color,
		Timestamp:   entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.UserID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Kullanıcı", Value: fmt.Sprintf("<@%s>", entry.UserID), Inline: true})
	}
	if _, err := b.chat.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("audit notify failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
	}
}

func (b *Bot) sendEmbed(channelID, title, description string, color int) {
	embed := &discordgo.MessageEmbed{Title: title, Description: description, Color: color}
	if _, err := b.chat.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("embed send failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}
