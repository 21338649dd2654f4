package handler

import (
	"embed"
	"html/template"
	"net/http"

	"bedrock-chat/internal/model"
	"bedrock-chat/internal/render"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

type messageView struct {
	model.Message
	Body  template.HTML
	Title template.HTML
	Link  template.URL
}

type pageData struct {
	Sessions []model.SessionSummary
	Messages []messageView
	Settings model.Settings
	Pending  bool
	CartURL  string
}

// Index renders the chat page for the current session. Answers are rendered
// from their raw content on every view, never from stored markup.
func (h *ChatHandler) Index(c *gin.Context) {
	state := h.chatService.Snapshot()
	session := state.CurrentSession()

	messages := make([]messageView, 0, len(session.Conversation))
	for _, msg := range session.Conversation {
		view := messageView{Message: msg}
		if msg.Type == model.MessageTypeModel && msg.State == model.MessageStateSuccess {
			out := render.Render(render.Input{
				Content:     msg.Content,
				Title:       msg.ContentTitle,
				Link:        msg.ContentLink,
				WordsToBold: msg.WordsToBold,
			})
			view.Body, view.Title, view.Link = out.Body, out.Title, template.URL(out.Link)
		}
		messages = append(messages, view)
	}

	c.HTML(http.StatusOK, "index.html", pageData{
		Sessions: model.Summaries(state),
		Messages: messages,
		Settings: state.Settings,
		Pending:  session.PendingMessage() >= 0,
		CartURL:  h.cartURL,
	})
}
