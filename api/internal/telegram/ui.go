package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dance-poster/api/internal/ocr/types"
)

const maxMessageLen = 3900

func modeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("OCR (free)", "mode:ocr"),
		tgbotapi.NewInlineKeyboardButtonData("AI", "mode:ai"),
	))
}

func providerKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(names))
	for _, n := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(n, "provider:"+n))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// FormatResult renders extracted fields as a plain-text reply.
func FormatResult(res types.Result) string {
	f := res.Fields
	var b strings.Builder
	b.WriteString("📝 Poster (" + res.Provenance + ")\n\n")
	n := 0
	line := func(label string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			b.WriteString(label + ": " + *v + "\n")
			n++
		}
	}
	list := func(label string, v []string) {
		if len(v) > 0 {
			b.WriteString(label + ": " + strings.Join(v, ", ") + "\n")
			n++
		}
	}
	line("Title", f.Title)
	list("Region", f.Region)
	line("Dance", f.DanceType)
	line("Instructor", f.InstructorName)
	list("Days", f.ClassDays)
	line("Start", f.StartDate)
	line("End", f.EndDate)
	line("Keywords", f.Keywords)
	if n == 0 {
		b.WriteString("Nothing recognised.\n")
	}

	out := strings.TrimRight(b.String(), "\n")
	if r := []rune(out); len(r) > maxMessageLen {
		out = string(r[:maxMessageLen]) + "…"
	}
	return out
}
