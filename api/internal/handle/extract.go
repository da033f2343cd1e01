package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"dance-poster/api/internal/extract"
	"dance-poster/api/internal/ocr/types"
	"dance-poster/api/internal/util"
)

// ExtractJSONRequest is the JSON alternative to the multipart form.
type ExtractJSONRequest struct {
	ImageB64 string `json:"image_b64"`
	Mode     string `json:"mode"`
	Provider string `json:"provider"`
}

type ExtractResponse struct {
	Success    bool          `json:"success"`
	Fields     *types.Fields `json:"fields,omitempty"`
	Provenance string        `json:"provenance,omitempty"`
	Error      string        `json:"error,omitempty"`
}

var errBadRequest = errors.New("bad request")

// Extract handles POST /v1/extract with either multipart fields
// image/mode/provider or a JSON body carrying image_b64.
func (h *Handle) Extract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	ctx := withRequestID(w, r)
	log := h.log.WithField("request_id", util.RequestID(ctx))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	req, err := h.readRequest(r)
	if err != nil {
		log.WithError(err).Info("rejected extract request")
		writeJSON(w, http.StatusBadRequest, ExtractResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.ext.Extract(ctx, req)
	if err != nil {
		code := statusFor(err)
		log.WithFields(logrus.Fields{"status": code, "mode": req.Mode}).WithError(err).Warn("extract failed")
		writeJSON(w, code, ExtractResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ExtractResponse{
		Success:    true,
		Fields:     &res.Fields,
		Provenance: res.Provenance,
	})
}

func (h *Handle) readRequest(r *http.Request) (extract.Request, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return readJSON(r)
	}
	return readMultipart(r, h.maxUpload)
}

func readJSON(r *http.Request) (extract.Request, error) {
	var body ExtractJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return extract.Request{}, fmt.Errorf("%w: bad json: %v", errBadRequest, err)
	}
	img, mt, err := util.DecodeBase64MaybeDataURL(strings.TrimSpace(body.ImageB64))
	if err != nil {
		return extract.Request{}, fmt.Errorf("%w: bad image_b64", errBadRequest)
	}
	if len(img) == 0 {
		return extract.Request{}, extract.ErrEmptyImage
	}
	return extract.Request{
		Image:    img,
		MIME:     mt,
		Mode:     extract.ParseMode(body.Mode),
		Provider: body.Provider,
	}, nil
}

func readMultipart(r *http.Request, maxMemory int64) (extract.Request, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return extract.Request{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		return extract.Request{}, extract.ErrEmptyImage
	}
	defer f.Close()
	img, err := io.ReadAll(f)
	if err != nil {
		return extract.Request{}, fmt.Errorf("%w: read image: %v", errBadRequest, err)
	}
	if len(img) == 0 {
		return extract.Request{}, extract.ErrEmptyImage
	}
	return extract.Request{
		Image:    img,
		MIME:     hdr.Header.Get("Content-Type"),
		Mode:     extract.ParseMode(r.FormValue("mode")),
		Provider: r.FormValue("provider"),
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, extract.ErrEmptyImage), errors.Is(err, errBadRequest), extract.IsConfigError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
