package bot

import (
	"context"

	"caylak-bot/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type roleSpec struct {
	name  string
	color int
}

type channelSpec struct {
	name  string
	voice bool
}

type categorySpec struct {
	name     string
	channels []channelSpec
}

// setupRoles and setupCategories describe the desired guild layout. The setup
// command converges the guild toward it by name, so re-runs create nothing
// that already exists.
func (b *Bot) setupRoles() []roleSpec {
	return []roleSpec{
		{name: "Yönetici", color: 0xE74C3C},
		{name: "Moderatör", color: 0xE67E22},
		{name: b.cfg.Guild.AutoRoleName, color: 0x00FFC8},
		{name: "Bot", color: 0x5865F2},
		{name: b.cfg.Guild.MutedRoleName, color: 0x555555},
	}
}

func (b *Bot) setupCategories() []categorySpec {
	return []categorySpec{
		{name: "👋 KARŞILAMA", channels: []channelSpec{
			{name: "hoş-geldiniz"},
			{name: "kurallar"},
			{name: "duyurular"},
		}},
		{name: "💬 SOHBET", channels: []channelSpec{
			{name: "genel"},
			{name: "medya-akışı"},
			{name: "anime-muhabbet"},
			{name: "oyun-sohbet"},
		}},
		{name: "📚 DESTEK", channels: []channelSpec{
			{name: "destek-oluştur"},
		}},
		{name: "🛡️ LOG", channels: []channelSpec{
			{name: b.cfg.Guild.LogChannelName},
		}},
		{name: "🎧 SES KANALLARI", channels: []channelSpec{
			{name: "Genel Ses", voice: true},
			{name: "Müzik Odası", voice: true},
			{name: "Sohbet 2", voice: true},
			{name: "AFK", voice: true},
		}},
		{name: "⚔️ TAKIM ODALARI", channels: []channelSpec{
			{name: "🜁・Aether Squadron", voice: true},
			{name: "🜂・Pyro Battalion", voice: true},
			{name: "🜃・Gaia Unit", voice: true},
			{name: "🜄・Hydro Division", voice: true},
		}},
	}
}

func (b *Bot) handleSetup(ctx context.Context, msg *discordgo.MessageCreate) {
	if !b.memberHasPermission(msg, discordgo.PermissionAdministrator) {
		b.reply(msg, "❌ Bu komutu sadece yöneticiler kullanabilir.")
		return
	}

	b.reply(msg, "⚙️ Çaylak-Go sunucu kurulumu başlatılıyor... ⏳")

	for _, spec := range b.setupRoles() {
		roleID, err := b.findRoleByName(msg.GuildID, spec.name)
		if err != nil {
			b.reply(msg, "❌ Kurulum sırasında bir hata oluştu.")
			return
		}
		if roleID != "" {
			continue
		}
		color := spec.color
		if _, err := b.session.GuildRoleCreate(msg.GuildID, &discordgo.RoleParams{Name: spec.name, Color: &color}); err != nil {
			b.logger.Warn("setup role create failed", zap.String("guild_id", msg.GuildID), zap.String("role", spec.name), zap.Error(err))
		}
	}

	for _, category := range b.setupCategories() {
		categoryID, err := b.findChannel(msg.GuildID, category.name, discordgo.ChannelTypeGuildCategory, "")
		if err != nil {
			b.reply(msg, "❌ Kurulum sırasında bir hata oluştu.")
			return
		}
		if categoryID == "" {
			created, err := b.session.GuildChannelCreate(msg.GuildID, category.name, discordgo.ChannelTypeGuildCategory)
			if err != nil {
				b.logger.Warn("setup category create failed", zap.String("guild_id", msg.GuildID), zap.String("category", category.name), zap.Error(err))
				continue
			}
			categoryID = created.ID
		}

		for _, channel := range category.channels {
			channelType := discordgo.ChannelTypeGuildText
			if channel.voice {
				channelType = discordgo.ChannelTypeGuildVoice
			}
			existingID, err := b.findChannel(msg.GuildID, channel.name, channelType, categoryID)
			if err != nil || existingID != "" {
				continue
			}
			if _, err := b.session.GuildChannelCreateComplex(msg.GuildID, discordgo.GuildChannelCreateData{
				Name:     channel.name,
				Type:     channelType,
				ParentID: categoryID,
			}); err != nil {
				b.logger.Warn("setup channel create failed", zap.String("guild_id", msg.GuildID), zap.String("channel", channel.name), zap.Error(err))
			}
		}
	}

	b.reply(msg, "✅ Çaylak-Go sunucu kurulumu tamamlandı! 🎉")
	b.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.Author.ID, "setup", msg.Author.Username+" sunucuda otomatik kurulumu çalıştırdı")
}
