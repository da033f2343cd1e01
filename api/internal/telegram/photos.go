package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/util"
)

const maxPhotoBytes = 20 << 20

func isImageDocument(d *tgbotapi.Document) bool {
	return d != nil && strings.HasPrefix(d.MimeType, "image/")
}

func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	fileID, mime := pickFile(msg)
	log := r.logger().WithFields(logrus.Fields{
		"chat_id":    cid,
		"request_id": util.RequestID(ctx),
	})

	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		log.WithError(err).Warn("get file failed")
		r.SendError(cid, err)
		return
	}
	img, err := r.download(ctx, url)
	if err != nil {
		log.WithError(err).Warn("download failed")
		r.SendError(cid, err)
		return
	}

	sel := r.Selections.Get(cid)
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := r.Extractor.Extract(ctx, extract.Request{
		Image:    img,
		MIME:     mime,
		Mode:     extract.ParseMode(sel.Mode),
		Provider: sel.Provider,
	})
	if err != nil {
		r.SendError(cid, err)
		return
	}
	r.send(cid, FormatResult(res))
}

// pickFile returns the largest photo size, or the image document.
func pickFile(msg *tgbotapi.Message) (fileID, mime string) {
	if n := len(msg.Photo); n > 0 {
		return msg.Photo[n-1].FileID, "image/jpeg"
	}
	return msg.Document.FileID, msg.Document.MimeType
}

func (r *Router) download(ctx context.Context, url string) ([]byte, error) {
	httpc := r.HTTP
	if httpc == nil {
		httpc = util.NewHTTPClient(60 * time.Second)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
}
