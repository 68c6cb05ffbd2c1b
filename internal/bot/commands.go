package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caylak-bot/internal/modules/audit"
	"caylak-bot/internal/playback"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// parseCommand splits a prefixed message into the command name and its
// arguments. The name is lowercased; an empty name means the message was just
// the prefix.
func parseCommand(content, prefix string) (string, []string) {
	trimmed := strings.TrimPrefix(content, prefix)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func (b *Bot) dispatchCommand(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) {
	command, args := parseCommand(msg.Content, b.cfg.Prefix)

	switch command {
	case "yardım", "help":
		b.handleHelp(msg)
	case "level":
		b.handleLevel(msg)
	case "mute":
		b.handleMute(ctx, session, msg)
	case "ticket":
		b.handleTicket(ctx, msg)
	case "kapat":
		b.handleTicketClose(ctx, msg)
	case "setup":
		b.handleSetup(ctx, msg)
	case "çal":
		b.handlePlay(session, msg, args)
	case "kuyruk":
		b.handleQueue(msg)
	case "geç":
		b.handleSkip(msg)
	case "durdur":
		b.handlePause(msg)
	case "devam":
		b.handleResume(msg)
	case "ayrıl":
		b.handleLeave(msg)
	}
}

func (b *Bot) reply(msg *discordgo.MessageCreate, content string) {
	if _, err := b.chat.ChannelMessageSendReply(msg.ChannelID, content, msg.Reference()); err != nil {
		b.logger.Warn("reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

func (b *Bot) memberHasPermission(msg *discordgo.MessageCreate, permission int64) bool {
	perms, err := b.session.State.UserChannelPermissions(msg.Author.ID, msg.ChannelID)
	if err != nil {
		b.logger.Warn("permission lookup failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
		return false
	}
	return perms&permission == permission || perms&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}

func (b *Bot) handleHelp(msg *discordgo.MessageCreate) {
	p := b.cfg.Prefix
	lines := []string{
		"**🛠️ GENEL KOMUTLAR:**",
		"`" + p + "yardım` – Bu menüyü gösterir",
		"`" + p + "level` – XP ve seviyeni gösterir",
		"`" + p + "mute <@kullanıcı>` – Kullanıcıyı susturur",
		"`" + p + "ticket` – Destek kanalı açar",
		"`" + p + "kapat` – Ticket kanalını kapatır",
		"`" + p + "setup` – Sunucuyu kurar",
		"",
		"**🎵 MÜZİK KOMUTLARI:**",
		"`" + p + "çal <url>` – Şarkıyı kuyruğa ekler",
		"`" + p + "kuyruk` – Çalma listesini gösterir",
		"`" + p + "geç` – Sonraki şarkıya geçer",
		"`" + p + "durdur` – Şarkıyı durdurur",
		"`" + p + "devam` – Şarkıyı devam ettirir",
		"`" + p + "ayrıl` – Ses kanalından ayrılır",
	}
	embed := &discordgo.MessageEmbed{
		Title:       "📖 Çaylak-Go Komutları",
		Description: strings.Join(lines, "\n"),
		Color:       colorAction,
	}
	if _, err := b.chat.ChannelMessageSendEmbed(msg.ChannelID, embed); err != nil {
		b.logger.Warn("help send failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

func (b *Bot) handleLevel(msg *discordgo.MessageCreate) {
	snap := b.levels.Snapshot(msg.Author.ID)
	b.reply(msg, fmt.Sprintf("📊 XP: **%d** | Seviye: **%d**", snap.XP, snap.Level))
}

func (b *Bot) handleMute(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) {
	if !b.memberHasPermission(msg, discordgo.PermissionVoiceMuteMembers) {
		b.reply(msg, "❌ Bu komutu kullanmak için susturma yetkin yok.")
		return
	}
	if len(msg.Mentions) == 0 {
		b.reply(msg, "❌ Kimi susturacağım? Birini etiketle.")
		return
	}
	target := msg.Mentions[0]

	roleID, err := b.findRoleByName(msg.GuildID, b.cfg.Guild.MutedRoleName)
	if err != nil {
		b.reply(msg, "❌ Rol bilgisi alınamadı.")
		return
	}
	if roleID == "" {
		color := 0x555555
		role, err := session.GuildRoleCreate(msg.GuildID, &discordgo.RoleParams{
			Name:  b.cfg.Guild.MutedRoleName,
			Color: &color,
		})
		if err != nil {
			b.logger.Warn("muted role create failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
			b.reply(msg, "❌ Muted rolü oluşturulamadı.")
			return
		}
		roleID = role.ID
	}

	if err := session.GuildMemberRoleAdd(msg.GuildID, target.ID, roleID); err != nil {
		b.logger.Warn("mute failed", zap.String("guild_id", msg.GuildID), zap.String("user_id", target.ID), zap.Error(err))
		b.reply(msg, "❌ Kullanıcı susturulamadı.")
		return
	}

	b.sendEmbed(msg.ChannelID, "🔇 Mute", fmt.Sprintf("<@%s> susturuldu!", target.ID), colorWarning)
	b.audit.Log(ctx, audit.LevelWarn, msg.GuildID, target.ID, "mute", fmt.Sprintf("%s tarafından susturuldu", msg.Author.Username))
}

// channelNotifier posts playback events back to the text channel that issued
// the play command.
type channelNotifier struct {
	bot       *Bot
	channelID string
}

func (n channelNotifier) NowPlaying(title string) {
	n.send(fmt.Sprintf("🎧 Şu an çalıyor: **%s**", title))
}

func (n channelNotifier) EntrySkipped(title, reason string) {
	switch {
	case reason == "external sources disabled":
		n.send("❌ Harici stream şu anda devre dışı. Lokal test yapın.")
	case strings.Contains(reason, "test file missing"):
		n.send("❌ Test dosyası bulunamadı: " + title)
	default:
		n.send("❌ Oynatma hatası: " + reason)
	}
}

func (n channelNotifier) QueueEmpty() {
	n.send("🎶 Kuyruk boş, ses kanalından çıkıyorum.")
}

func (n channelNotifier) send(content string) {
	if _, err := n.bot.chat.ChannelMessageSend(n.channelID, content); err != nil {
		n.bot.logger.Warn("playback notify failed", zap.String("channel_id", n.channelID), zap.Error(err))
	}
}

func (b *Bot) voiceChannelOf(guildID, userID string) string {
	guild, err := b.session.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

func (b *Bot) handlePlay(session *discordgo.Session, msg *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		b.reply(msg, "❌ Bir şarkı linki vermelisin.")
		return
	}
	url := args[0]

	voiceChannelID := b.voiceChannelOf(msg.GuildID, msg.Author.ID)
	if voiceChannelID == "" {
		b.reply(msg, "🎧 Bir ses kanalına girmen gerekiyor.")
		return
	}

	sess := b.playback.Get(msg.GuildID)
	if sess == nil {
		sess = b.joinVoice(session, msg, voiceChannelID)
		if sess == nil {
			return
		}
	}

	entry := playback.Entry{SourceURL: url, Title: url}
	position, ok := sess.Enqueue(entry)
	if !ok {
		// The session tore itself down between lookup and enqueue; it has
		// already removed itself from the manager, so join fresh.
		sess = b.joinVoice(session, msg, voiceChannelID)
		if sess == nil {
			return
		}
		position, _ = sess.Enqueue(entry)
	}
	b.reply(msg, fmt.Sprintf("🎵 Kuyruğa eklendi (%d. sıra): **%s**", position, url))
	sess.Start()
}

func (b *Bot) joinVoice(session *discordgo.Session, msg *discordgo.MessageCreate, voiceChannelID string) *playback.Session {
	conn, err := session.ChannelVoiceJoin(msg.GuildID, voiceChannelID, false, true)
	if err != nil {
		b.logger.Warn("voice join failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		b.reply(msg, "❌ Ses kanalına bağlanılamadı.")
		return nil
	}
	sess := b.playback.GetOrCreate(msg.GuildID, conn, channelNotifier{bot: b, channelID: msg.ChannelID})
	b.reply(msg, "✅ Ses kanalına bağlanıldı.")
	return sess
}

func (b *Bot) handleQueue(msg *discordgo.MessageCreate) {
	sess := b.playback.Get(msg.GuildID)
	if sess == nil {
		b.reply(msg, "📭 Kuyruk boş.")
		return
	}
	entries := sess.Queue()
	if len(entries) == 0 {
		b.reply(msg, "📭 Kuyruk boş.")
		return
	}

	var sb strings.Builder
	for i, entry := range entries {
		if i == 0 && sess.State() != playback.StateEmpty {
			fmt.Fprintf(&sb, "▶️ **%s**\n", entry.Title)
			continue
		}
		fmt.Fprintf(&sb, "%d. %s\n", i, entry.Title)
	}
	embed := &discordgo.MessageEmbed{
		Title:       "🎵 Çalma Listesi",
		Description: sb.String(),
		Color:       colorAction,
	}
	if _, err := b.chat.ChannelMessageSendEmbed(msg.ChannelID, embed); err != nil {
		b.logger.Warn("queue send failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
}

func (b *Bot) handleSkip(msg *discordgo.MessageCreate) {
	sess := b.playback.Get(msg.GuildID)
	if sess == nil || !sess.Skip() {
		b.reply(msg, "❌ Şu an çalan bir şarkı yok.")
		return
	}
	b.reply(msg, "⏭️ Şarkı geçildi.")
}

func (b *Bot) handlePause(msg *discordgo.MessageCreate) {
	sess := b.playback.Get(msg.GuildID)
	if sess == nil || !sess.Pause() {
		b.reply(msg, "❌ Şu an çalan bir şarkı yok.")
		return
	}
	b.reply(msg, "⏸️ Şarkı durduruldu.")
}

func (b *Bot) handleResume(msg *discordgo.MessageCreate) {
	sess := b.playback.Get(msg.GuildID)
	if sess == nil || !sess.Resume() {
		b.reply(msg, "❌ Durdurulmuş bir şarkı yok.")
		return
	}
	b.reply(msg, "▶️ Şarkı devam ediyor.")
}

func (b *Bot) handleLeave(msg *discordgo.MessageCreate) {
	sess := b.playback.Get(msg.GuildID)
	if sess == nil {
		b.reply(msg, "❌ Zaten bir ses kanalında değilim.")
		return
	}
	sess.Close()
	b.reply(msg, "👋 Ses kanalından ayrıldım.")
}

func (b *Bot) handleTicketClose(ctx context.Context, msg *discordgo.MessageCreate) {
	channel, err := b.session.State.Channel(msg.ChannelID)
	if err != nil {
		channel, err = b.session.Channel(msg.ChannelID)
		if err != nil {
			b.reply(msg, "❌ Kanal bilgisi alınamadı.")
			return
		}
	}
	if !strings.HasPrefix(channel.Name, "ticket-") {
		b.reply(msg, "❌ Bu komut sadece ticket kanallarında kullanılabilir.")
		return
	}
	if !b.memberHasPermission(msg, discordgo.PermissionManageChannels) {
		b.reply(msg, "❌ Bu ticketı kapatma yetkin yok.")
		return
	}

	if _, err := b.chat.ChannelMessageSend(msg.ChannelID, "🔒 Ticket kapatılıyor..."); err != nil {
		b.logger.Warn("close notice failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
	}
	b.audit.Log(ctx, audit.LevelInfo, msg.GuildID, msg.Author.ID, "ticket_close", channel.Name+" kanalı kapatıldı")

	channelID := msg.ChannelID
	b.schedule(3*time.Second, func() {
		if _, err := b.session.ChannelDelete(channelID); err != nil {
			b.logger.Warn("ticket delete failed", zap.String("channel_id", channelID), zap.Error(err))
		}
	})
}
