package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"staybeyond/internal/app/commands"
	domaincatalog "staybeyond/internal/domain/catalog"
	"staybeyond/internal/infra/storage/s3"
)

const attachStayPhotoKey = "host.stays.photos.attach"

var errPhotoRequired = errors.New("host: photo object key and content required")

// AttachStayPhotoCommand uploads one photo for a stay and appends its public
// URL to the stay's gallery.
type AttachStayPhotoCommand struct {
	StayID      string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c AttachStayPhotoCommand) Key() string { return attachStayPhotoKey }

func (c AttachStayPhotoCommand) Validate() error {
	if strings.TrimSpace(c.StayID) == "" {
		return domaincatalog.ErrStayNotFound
	}
	if strings.TrimSpace(c.ObjectKey) == "" || c.Reader == nil {
		return errPhotoRequired
	}
	return nil
}

type AttachStayPhotoResult struct {
	StayID    string   `json:"stay_id"`
	Images    []string `json:"images"`
	Thumbnail string   `json:"thumbnail"`
}

type AttachStayPhotoHandler struct {
	Stays    domaincatalog.StayRepository
	Uploader s3.Uploader
	Logger   *slog.Logger
}

func (h *AttachStayPhotoHandler) Handle(ctx context.Context, cmd AttachStayPhotoCommand) (*AttachStayPhotoResult, error) {
	if h.Uploader == nil {
		return nil, errors.New("photo uploader unavailable")
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stay, err := h.Stays.ByID(ctx, domaincatalog.StayID(cmd.StayID))
	if err != nil {
		return nil, err
	}

	publicURL, err := h.Uploader.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	if err := stay.AttachImage(publicURL); err != nil {
		return nil, err
	}
	if err := h.Stays.Save(ctx, stay); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("stay photo attached", "stay_id", stay.ID, "object_key", cmd.ObjectKey)
	}

	return &AttachStayPhotoResult{
		StayID:    string(stay.ID),
		Images:    append([]string(nil), stay.Images...),
		Thumbnail: stay.Thumbnail(),
	}, nil
}

var _ commands.Handler[AttachStayPhotoCommand, *AttachStayPhotoResult] = (*AttachStayPhotoHandler)(nil)
