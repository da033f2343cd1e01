package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/ocr"
	"dance-poster/api/internal/util"
)

// Bot is the part of *tgbotapi.BotAPI the router needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot        Bot
	Extractor  extract.Extractor
	Selections *ocr.Manager
	Providers  []string
	Log        logrus.FieldLogger
	HTTP       *http.Client
	Timeout    time.Duration
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	ctx = util.WithRequestID(ctx, "")
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd.Message)
		return
	}
	if len(upd.Message.Photo) > 0 || isImageDocument(upd.Message.Document) {
		r.acceptPhoto(ctx, upd.Message)
	}
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		r.send(cid, "Send a dance class poster and I will read the title, region, dance, instructor, days and dates.\n"+
			"Commands: /mode [ocr|ai], /provider [name], /health")
	case "health":
		r.send(cid, "✅ OK")
	case "mode":
		if len(args) == 0 {
			r.sendWithKeyboard(cid, "Current mode: "+r.Selections.Get(cid).Mode, modeKeyboard())
			return
		}
		r.setMode(cid, args[0])
	case "provider":
		if len(args) == 0 {
			r.sendWithKeyboard(cid, "Current provider: "+r.Selections.Get(cid).Provider, providerKeyboard(r.Providers))
			return
		}
		r.setProvider(cid, args[0])
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) setMode(chatID int64, arg string) {
	sel := r.Selections.Get(chatID)
	sel.Mode = string(extract.ParseMode(arg))
	r.Selections.Set(chatID, sel)
	r.send(chatID, "✅ Mode: "+sel.Mode)
}

func (r *Router) setProvider(chatID int64, arg string) {
	name := strings.ToLower(strings.TrimSpace(arg))
	if !r.knownProvider(name) {
		r.send(chatID, "Unknown provider. Available: "+strings.Join(r.Providers, " | "))
		return
	}
	sel := r.Selections.Get(chatID)
	sel.Provider = name
	r.Selections.Set(chatID, sel)
	r.send(chatID, "✅ Provider: "+name)
}

func (r *Router) knownProvider(name string) bool {
	for _, p := range r.Providers {
		if p == name {
			return true
		}
	}
	return false
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	kind, value, ok := strings.Cut(cb.Data, ":")
	if !ok {
		return
	}
	switch kind {
	case "mode":
		r.setMode(cid, value)
	case "provider":
		r.setProvider(cid, value)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		r.logger().WithError(err).WithField("chat_id", chatID).Warn("telegram send failed")
	}
}

func (r *Router) SendError(chatID int64, err error) {
	if extract.IsConfigError(err) {
		r.send(chatID, fmt.Sprintf("⚠️ %v\nPick another provider with /provider or switch to /mode ocr.", err))
		return
	}
	r.send(chatID, fmt.Sprintf("Extraction failed: %v", err))
}

func (r *Router) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}
