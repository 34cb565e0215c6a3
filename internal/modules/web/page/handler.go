package page

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/docsum/transcript-summary/internal/middleware"
	"github.com/docsum/transcript-summary/internal/modules/web/form"
	"github.com/docsum/transcript-summary/internal/modules/web/output"
	"github.com/docsum/transcript-summary/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Handler renders the summary form and processes plain HTML form submissions.
type Handler struct {
	submitter Submitter
	log       *zap.Logger
}

func NewHandler(submitter Submitter, log *zap.Logger) *Handler {
	return &Handler{submitter: submitter, log: log.Named("page")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.index)
	rg.POST("/", h.submit)
}

type pageData struct {
	State  form.State
	Output output.View
}

func (h *Handler) index(c *gin.Context) {
	h.render(c, form.State{})
}

func (h *Handler) submit(c *gin.Context) {
	log := h.log.With(zap.String("request_id", middleware.GetRequestID(c)))

	state := form.State{}.ChangePrompt(c.PostForm("prompt"))
	fh, fileErr := c.FormFile("file")
	if fileErr == nil {
		state = state.SelectFile(fh.Filename)
		if state.Error != "" {
			log.Warn("rejected upload", zap.String("file", fh.Filename))
			h.render(c, state)
			return
		}
	}

	state, ok := state.Submit()
	if !ok {
		log.Warn("incomplete submission", zap.Bool("file", state.FileSelected), zap.Bool("prompt", state.Prompt != ""))
		h.render(c, state)
		return
	}

	file, err := fh.Open()
	if err != nil {
		log.Error("open upload", zap.Error(err))
		h.render(c, state.Fail(err))
		return
	}
	defer file.Close()

	state = state.Begin()
	log.Info("submitting to summarize endpoint", zap.String("file", fh.Filename))
	status, body, err := h.submitter.Submit(c.Request.Context(), Submission{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		File:        file,
		Prompt:      state.Prompt,
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		log.Error("summarize endpoint unreachable", zap.Error(err))
		h.render(c, state.Fail(err))
		return
	}

	state = state.Complete(status, body)
	if state.Error != "" {
		log.Error("summarize failed", zap.Int("status", status), zap.String("error", state.Error))
	}
	h.render(c, state)
}

func (h *Handler) render(c *gin.Context, state form.State) {
	var buf bytes.Buffer
	data := pageData{State: state, Output: output.New(state.Summary)}
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.log.Error("render page", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
