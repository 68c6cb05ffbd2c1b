package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
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

type fakeChat struct {
	sent     []string
	embeds   []*discordgo.MessageEmbed
	replies  []string
	deleted  []string
	roleAdds []string
	dms      []string
	counter  int
}

func (f *fakeChat) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.counter++
	f.sent = append(f.sent, content)
	return &discordgo.Message{ID: fmt.Sprintf("sent-%d", f.counter), ChannelID: channelID}, nil
}

func (f *fakeChat) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ID: "embed", ChannelID: channelID}, nil
}

func (f *fakeChat) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.replies = append(f.replies, content)
	return &discordgo.Message{ID: "reply", ChannelID: channelID}, nil
}

func (f *fakeChat) ChannelMessageDelete(channelID string, messageID string, options ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeChat) GuildMemberRoleAdd(guildID string, userID string, roleID string, options ...discordgo.RequestOption) error {
	f.roleAdds = append(f.roleAdds, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeChat) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.dms = append(f.dms, recipientID)
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func newTestBot(t *testing.T) (*Bot, *fakeChat, *[]storage.ModerationLog) {
	t.Helper()

	cfg := config.DefaultConfig()
	auditLogger := audit.NewLogger(nil, zap.NewNop())
	var events []storage.ModerationLog
	auditLogger.SetNotifier(func(_ context.Context, entry storage.ModerationLog) {
		events = append(events, entry)
	})

	chat := &fakeChat{}
	b := &Bot{
		cfg:         cfg,
		logger:      zap.NewNop(),
		audit:       auditLogger,
		words:       wordfilter.New(cfg.Moderation.BlockedWords),
		links:       linkfilter.New(cfg.Moderation.LinkFilterEnabled),
		spam:        antispam.New(time.Duration(cfg.Moderation.SpamWindowMillis)*time.Millisecond, cfg.Moderation.SpamBurst),
		levels:      leveling.New(cfg.Leveling.LevelStep),
		playback:    playback.NewManager(nil),
		session:     &discordgo.Session{State: discordgo.NewState()},
		chat:        chat,
		logChannels: make(map[string]string),
		schedule: func(delay time.Duration, fn func()) {
			fn()
		},
	}
	return b, chat, &events
}

func guildMessage(id, userID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        id,
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: userID, Username: "uye"},
	}}
}

func hasEvent(events []storage.ModerationLog, name string) bool {
	for _, event := range events {
		if event.Event == name {
			return true
		}
	}
	return false
}

func TestDispatchBlockedWordDeletesAndSkipsXP(t *testing.T) {
	b, chat, events := newTestBot(t)

	b.onMessageCreate(b.session, guildMessage("m1", "u1", "sik içeren bir mesaj"))

	if len(chat.deleted) != 2 {
		t.Fatalf("expected offending message and warning deleted, got %v", chat.deleted)
	}
	if chat.deleted[0] != "c1/m1" {
		t.Fatalf("expected original message deleted first, got %q", chat.deleted[0])
	}
	if len(chat.sent) != 1 || !strings.Contains(chat.sent[0], "yasaklı") {
		t.Fatalf("expected a warning message, got %v", chat.sent)
	}
	if snap := b.levels.Snapshot("u1"); snap.XP != 0 {
		t.Fatalf("no XP may be granted for a filtered message, got %d", snap.XP)
	}
	if !hasEvent(*events, "word_filter") {
		t.Fatalf("expected a word_filter audit entry, got %v", *events)
	}
}

func TestDispatchSpamShortCircuitsXP(t *testing.T) {
	b, chat, events := newTestBot(t)

	for i := 1; i <= 5; i++ {
		b.onMessageCreate(b.session, guildMessage(fmt.Sprintf("m%d", i), "u1", fmt.Sprintf("merhaba %d", i)))
	}

	// The 5th rapid message is spam: deleted, warned, and granted no XP.
	if snap := b.levels.Snapshot("u1"); snap.XP != 20 {
		t.Fatalf("expected XP for the first four messages only, got %d", snap.XP)
	}
	if len(chat.deleted) == 0 || chat.deleted[0] != "c1/m5" {
		t.Fatalf("expected the 5th message deleted, got %v", chat.deleted)
	}
	if !hasEvent(*events, "spam") {
		t.Fatalf("expected a spam audit entry, got %v", *events)
	}
}

func TestDispatchCleanMessageGrantsXP(t *testing.T) {
	b, chat, events := newTestBot(t)

	b.onMessageCreate(b.session, guildMessage("m1", "u1", "selam millet"))

	if snap := b.levels.Snapshot("u1"); snap.XP != 5 {
		t.Fatalf("expected 5 XP for a clean message, got %d", snap.XP)
	}
	if len(chat.deleted) != 0 || len(chat.sent) != 0 {
		t.Fatalf("clean message must not be punished: deleted=%v sent=%v", chat.deleted, chat.sent)
	}
	if len(*events) != 0 {
		t.Fatalf("clean message must not be audited, got %v", *events)
	}
}

func TestDispatchIgnoresBotsAndDMs(t *testing.T) {
	b, _, _ := newTestBot(t)

	botMsg := guildMessage("m1", "u1", "sik")
	botMsg.Author.Bot = true
	b.onMessageCreate(b.session, botMsg)

	dm := guildMessage("m2", "u2", "sik")
	dm.GuildID = ""
	b.onMessageCreate(b.session, dm)

	if snap := b.levels.Snapshot("u1"); snap.XP != 0 {
		t.Fatal("bot authors must be ignored entirely")
	}
	if snap := b.levels.Snapshot("u2"); snap.XP != 0 {
		t.Fatal("non-guild messages must be ignored entirely")
	}
}

func TestForwardRequiresCachedChannel(t *testing.T) {
	b, chat, _ := newTestBot(t)

	if err := b.Forward("unknown", "hi"); err != relay.ErrChannelNotFound {
		t.Fatalf("expected ErrChannelNotFound for an uncached channel, got %v", err)
	}

	if err := b.session.State.GuildAdd(&discordgo.Guild{ID: "g1"}); err != nil {
		t.Fatalf("guild add: %v", err)
	}
	if err := b.session.State.ChannelAdd(&discordgo.Channel{ID: "c1", GuildID: "g1", Type: discordgo.ChannelTypeGuildText}); err != nil {
		t.Fatalf("channel add: %v", err)
	}

	if err := b.Forward("c1", "hi"); err != nil {
		t.Fatalf("forward to cached channel: %v", err)
	}
	if len(chat.embeds) != 1 || chat.embeds[0].Description != "hi" {
		t.Fatalf("expected relay embed with text, got %v", chat.embeds)
	}
}

func TestMemberJoinGrantsAutoRoleAndLogs(t *testing.T) {
	b, chat, events := newTestBot(t)

	if err := b.session.State.GuildAdd(&discordgo.Guild{
		ID:    "g1",
		Roles: []*discordgo.Role{{ID: "r1", Name: b.cfg.Guild.AutoRoleName}},
	}); err != nil {
		t.Fatalf("guild add: %v", err)
	}

	b.onGuildMemberAdd(b.session, &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u9", Username: "yeni"},
	}})

	if len(chat.roleAdds) != 1 || chat.roleAdds[0] != "g1/u9/r1" {
		t.Fatalf("expected auto role grant, got %v", chat.roleAdds)
	}
	if len(chat.dms) != 1 || chat.dms[0] != "u9" {
		t.Fatalf("expected a welcome DM, got %v", chat.dms)
	}
	if !hasEvent(*events, "auto_role") {
		t.Fatalf("expected an auto_role audit entry, got %v", *events)
	}
	if !hasEvent(*events, "member_join") {
		t.Fatalf("expected a member_join audit entry, got %v", *events)
	}
}
