package bot

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"economy_server/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Runner executes a command on the authoritative loop.
type Runner interface {
	Submit(fn func()) bool
}

// AdminBot answers economy admin commands over Telegram.
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	commands *Commands
	loop     Runner
	adminIDs []int64 // Telegram user IDs who can use admin commands
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func NewAdminBot(token string, commands *Commands, loop Runner, adminIDs []int64) (*AdminBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", bot.Self.UserName)

	return &AdminBot{
		bot:      bot,
		commands: commands,
		loop:     loop,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start listens for commands until Stop is called.
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.From == nil || !msg.IsCommand() {
				continue
			}
			if !slices.Contains(b.adminIDs, msg.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(msg)
		}
	}
}

// Stop waits up to ten seconds for in-flight replies.
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	actor := Operator(msg.From.ID)
	command, args := msg.Command(), msg.CommandArguments()

	result := make(chan string, 1)
	run := func() { result <- b.commands.Run(actor, command, args) }
	if b.loop == nil || !b.loop.Submit(run) {
		run()
	}

	var response string
	select {
	case response = <-result:
	case <-time.After(30 * time.Second):
		response = "❌ Timed out"
	}
	b.log.Info("admin command", "command", command, "operator", actor.Name)

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}
