package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caylak-bot/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username), zap.Int("guilds", len(event.Guilds)))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	ctx := context.Background()

	if b.words.IsViolation(msg.Content) {
		b.punishMessage(msg, "Bu kelime yasaklı! Lütfen dikkat et.")
		b.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.Author.ID, "word_filter", "yasaklı kelime silindi")
		return
	}

	if flagged, link := b.links.Check(msg.Content); flagged {
		b.punishMessage(msg, "Link paylaşımı yasak!")
		b.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.Author.ID, "link_filter", "link silindi: "+link)
		return
	}

	if b.spam.Classify(msg.Author.ID, time.Now()) {
		b.punishMessage(msg, "Spam yapma! Sakin ol.")
		b.audit.Log(ctx, audit.LevelWarn, msg.GuildID, msg.Author.ID, "spam", "spam mesajı silindi")
		return
	}

	snap := b.levels.Grant(msg.Author.ID, b.cfg.Leveling.XPPerMessage)
	if snap.LeveledUp {
		b.sendEmbed(msg.ChannelID, "Seviye Atladın! 🎉", fmt.Sprintf("<@%s> artık **%d. seviye**!", msg.Author.ID, snap.Level), colorSuccess)
		b.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.Author.ID, "level_up", fmt.Sprintf("seviye %d", snap.Level))
	}

	if b.isMentioned(session, msg) {
		if _, err := b.chat.ChannelMessageSendReply(msg.ChannelID, "Efendim? Komutlar için `"+b.cfg.Prefix+"yardım` yazabilirsin.", msg.Reference()); err != nil {
			b.logger.Warn("mention reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		}
		return
	}

	if !strings.HasPrefix(msg.Content, b.cfg.Prefix) {
		return
	}

	b.dispatchCommand(ctx, session, msg)
}

func (b *Bot) isMentioned(session *discordgo.Session, msg *discordgo.MessageCreate) bool {
	if session.State.User == nil {
		return false
	}
	for _, user := range msg.Mentions {
		if user.ID == session.State.User.ID {
			return true
		}
	}
	return false
}

// punishMessage deletes the offending message and posts a short-lived warning.
func (b *Bot) punishMessage(msg *discordgo.MessageCreate, warning string) {
	if err := b.chat.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		b.logger.Warn("message delete failed", zap.String("channel_id", msg.ChannelID), zap.String("message_id", msg.ID), zap.Error(err))
	}

	sent, err := b.chat.ChannelMessageSend(msg.ChannelID, fmt.Sprintf("<@%s> %s", msg.Author.ID, warning))
	if err != nil {
		b.logger.Warn("warning send failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		return
	}
	channelID, messageID := sent.ChannelID, sent.ID
	b.schedule(time.Duration(b.cfg.Moderation.WarningSeconds)*time.Second, func() {
		if err := b.chat.ChannelMessageDelete(channelID, messageID); err != nil {
			b.logger.Debug("warning cleanup failed", zap.String("message_id", messageID), zap.Error(err))
		}
	})
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	ctx := context.Background()

	_ = session
	if roleID, err := b.findRoleByName(event.GuildID, b.cfg.Guild.AutoRoleName); err == nil && roleID != "" {
		if err := b.chat.GuildMemberRoleAdd(event.GuildID, event.User.ID, roleID); err != nil {
			b.logger.Warn("auto role failed", zap.String("guild_id", event.GuildID), zap.String("user_id", event.User.ID), zap.Error(err))
		} else {
			b.audit.Log(ctx, audit.LevelInfo, event.GuildID, event.User.ID, "auto_role", fmt.Sprintf("%s kullanıcısına %s rolü verildi", event.User.Username, b.cfg.Guild.AutoRoleName))
		}
	}

	if dm, err := b.chat.UserChannelCreate(event.User.ID); err == nil {
		_, _ = b.chat.ChannelMessageSend(dm.ID, "Sunucumuza hoş geldin! Kuralları okumayı unutma. 🎉")
	}

	b.audit.Log(ctx, audit.LevelInfo, event.GuildID, event.User.ID, "member_join", event.User.Username+" sunucuya katıldı")
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	_ = session
	b.audit.Log(context.Background(), audit.LevelInfo, event.GuildID, event.User.ID, "member_leave", event.User.Username+" sunucudan ayrıldı")
}

func (b *Bot) findRoleByName(guildID, name string) (string, error) {
	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		guild, err = b.session.Guild(guildID)
		if err != nil {
			return "", err
		}
	}
	for _, role := range guild.Roles {
		if role.Name == name {
			return role.ID, nil
		}
	}
	return "", nil
}
