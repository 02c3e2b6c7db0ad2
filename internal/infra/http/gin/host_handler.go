package ginserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybeyond/internal/app/commands"
	hosthandlers "staybeyond/internal/app/handlers/host"
	domaincatalog "staybeyond/internal/domain/catalog"
)

type HostHTTP interface {
	UploadStayPhoto(c *gin.Context)
}

type HostHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

// UploadStayPhoto accepts one multipart "photo" file and appends it to the
// stay's gallery.
func (h HostHandler) UploadStayPhoto(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	stayID := c.Param("id")

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read photo"})
		return
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectKey := fmt.Sprintf("stays/%s/%d%s", stayID, time.Now().UnixNano(), ext)

	cmd := hosthandlers.AttachStayPhotoCommand{
		StayID:      stayID,
		ObjectKey:   objectKey,
		ContentType: file.Header.Get("Content-Type"),
		Reader:      src,
	}
	result, err := commands.Dispatch[hosthandlers.AttachStayPhotoCommand, *hosthandlers.AttachStayPhotoResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if errors.Is(err, domaincatalog.ErrStayNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("stay photo upload failed", "error", err, "stay_id", stayID)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ HostHTTP = (*HostHandler)(nil)
