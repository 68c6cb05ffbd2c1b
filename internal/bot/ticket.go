package bot

import (
	"context"
	"fmt"
	"strings"

	"caylak-bot/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) guildChannels(guildID string) ([]*discordgo.Channel, error) {
	guild, err := b.session.State.Guild(guildID)
	if err == nil && len(guild.Channels) > 0 {
		return guild.Channels, nil
	}
	return b.session.GuildChannels(guildID)
}

func (b *Bot) findChannel(guildID, name string, channelType discordgo.ChannelType, parentID string) (string, error) {
	channels, err := b.guildChannels(guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Name != name || ch.Type != channelType {
			continue
		}
		if parentID != "" && ch.ParentID != parentID {
			continue
		}
		return ch.ID, nil
	}
	return "", nil
}

func (b *Bot) handleTicket(ctx context.Context, msg *discordgo.MessageCreate) {
	categoryID, err := b.findChannel(msg.GuildID, b.cfg.Guild.TicketCategoryName, discordgo.ChannelTypeGuildCategory, "")
	if err != nil {
		b.reply(msg, "❌ Ticket kanalı oluşturulamadı.")
		return
	}
	if categoryID == "" {
		category, err := b.session.GuildChannelCreate(msg.GuildID, b.cfg.Guild.TicketCategoryName, discordgo.ChannelTypeGuildCategory)
		if err != nil {
			b.logger.Warn("ticket category create failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
			b.reply(msg, "❌ Ticket kanalı oluşturulamadı.")
			return
		}
		categoryID = category.ID
	}

	channelName := strings.ToLower("ticket-" + msg.Author.Username)
	existingID, err := b.findChannel(msg.GuildID, channelName, discordgo.ChannelTypeGuildText, categoryID)
	if err == nil && existingID != "" {
		b.reply(msg, fmt.Sprintf("🎫 Zaten açık bir ticket kanalın var: <#%s>", existingID))
		return
	}

	// The @everyone role id equals the guild id.
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   msg.GuildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    msg.Author.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		},
	}
	if b.session.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    b.session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel,
		})
	}

	ticket, err := b.session.GuildChannelCreateComplex(msg.GuildID, discordgo.GuildChannelCreateData{
		Name:                 channelName,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		b.logger.Warn("ticket create failed", zap.String("guild_id", msg.GuildID), zap.String("user_id", msg.Author.ID), zap.Error(err))
		b.reply(msg, "❌ Ticket kanalı oluşturulamadı.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎫 Ticket Açıldı",
		Description: "Destek ekibi en kısa sürede seninle ilgilenecek.\nTicket'ı kapatmak için `" + b.cfg.Prefix + "kapat` yaz.",
		Color:       0xFF8800,
	}
	if _, err := b.session.ChannelMessageSendComplex(ticket.ID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", msg.Author.ID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}); err != nil {
		b.logger.Warn("ticket greeting failed", zap.String("channel_id", ticket.ID), zap.Error(err))
	}

	b.reply(msg, fmt.Sprintf("🎫 Ticket kanalın oluşturuldu: <#%s>", ticket.ID))
	b.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.Author.ID, "ticket_open", fmt.Sprintf("%s için %s kanalı oluşturuldu", msg.Author.Username, channelName))
}
