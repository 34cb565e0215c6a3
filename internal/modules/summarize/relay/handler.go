package relay

import (
	"fmt"
	"net/http"

	"github.com/docsum/transcript-summary/internal/config"
	"github.com/docsum/transcript-summary/internal/middleware"
	"github.com/docsum/transcript-summary/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves POST /api/summarize by relaying to the summarization backend.
type Handler struct {
	client *Client
	log    *zap.Logger
}

func NewHandler(client *Client, log *zap.Logger) *Handler {
	return &Handler{client: client, log: log.Named("relay")}
}

// RegisterRoutes mounts the relay on rg. Extra handlers (rate limiting) run first.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, extra...), h.summarize)
	rg.POST(config.SummarizePath, handlers...)
}

func (h *Handler) summarize(c *gin.Context) {
	log := h.log.With(zap.String("request_id", middleware.GetRequestID(c)))

	if failure := h.client.CheckConfig(); failure != nil {
		h.fail(c, log, failure)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.fail(c, log, requestFailure(http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)))
		return
	}
	defer form.RemoveAll()

	log.Info("received summarize request", zap.Strings("form", describeForm(form)))

	body, contentType, err := encodeMultipart(form)
	if err != nil {
		h.fail(c, log, requestFailure(http.StatusInternalServerError, err))
		return
	}

	result, failure := h.client.Forward(c.Request.Context(), body, contentType)
	if failure != nil {
		h.fail(c, log, failure)
		return
	}

	log.Info("relayed summary", zap.Int("summary_len", len(result.Summary)))
	response.RawJSON(c, http.StatusOK, result.Body)
}

func (h *Handler) fail(c *gin.Context, log *zap.Logger, failure *Failure) {
	log.Error("summarize request failed",
		zap.Stringer("stage", failure.Stage),
		zap.Int("status", failure.Status),
		zap.String("message", failure.Message),
		zap.NamedError("cause", failure.Err),
	)
	_ = c.Error(failure)
	response.Error(c, failure.Status, failure.Message)
}
