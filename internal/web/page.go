package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/JonMunkholm/chartbind/internal/core"
	"github.com/JonMunkholm/chartbind/internal/logging"
)

// pageData is what the workspace page shows.
type pageData struct {
	Snapshot core.Snapshot
	View     core.View
}

// workspacePage renders the dataset table, the chart image and a paste form.
func workspacePage(p pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := templ.EscapeString
		id := p.Snapshot.ID.String()

		fmt.Fprintf(w, `<!DOCTYPE html><html lang="zh"><head><meta charset="utf-8"><title>%s</title></head><body>`,
			e(p.Snapshot.Settings.Title))
		fmt.Fprintf(w, `<h1>%s</h1>`, e(p.Snapshot.Settings.Title))

		if n := p.Snapshot.Notice; n != nil {
			fmt.Fprintf(w, `<p class="notice notice-%s">%s</p>`, e(n.Type), e(n.Text))
		}

		io.WriteString(w, `<table><thead><tr>`)
		for _, c := range p.Snapshot.Columns {
			role := ""
			switch {
			case c == p.Snapshot.Roles.Axis:
				role = ` data-role="axis"`
			case p.Snapshot.Roles.IsSeries(c):
				role = ` data-role="series"`
			}
			fmt.Fprintf(w, `<th%s>%s</th>`, role, e(c))
		}
		io.WriteString(w, `</tr></thead><tbody>`)
		for _, row := range p.Snapshot.Rows {
			io.WriteString(w, `<tr>`)
			for _, c := range p.Snapshot.Columns {
				fmt.Fprintf(w, `<td>%s</td>`, e(row[c].String()))
			}
			io.WriteString(w, `</tr>`)
		}
		io.WriteString(w, `</tbody></table>`)

		if p.View.Drawable() {
			fmt.Fprintf(w, `<img alt="%s" src="/w/%s/chart.svg?v=%d">`, e(p.Snapshot.Settings.Title), id, p.Snapshot.Version)
		} else {
			io.WriteString(w, `<p class="empty">暂无数据或未选择数据列</p>`)
		}

		fmt.Fprintf(w, `<form method="post" action="/w/%s/paste">`, id)
		io.WriteString(w, `<textarea name="text" rows="8" cols="60" placeholder="从Excel复制数据，粘贴到此处"></textarea>`)
		io.WriteString(w, `<button type="submit">导入</button></form>`)
		fmt.Fprintf(w, `<p><a href="/w/%s/chart.png?download=1">下载图片</a></p>`, id)

		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// handleNewWorkspacePage creates a workspace and redirects to its page.
func (s *Server) handleNewWorkspacePage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Create(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	http.Redirect(w, r, "/w/"+snap.ID.String(), http.StatusSeeOther)
}

func (s *Server) handleWorkspacePage(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.renderPage(w, r, id)
}

// handlePastePage imports form text and shows the page again. A rejected
// paste keeps the previous data and shows the error as the notice.
func (s *Server) handlePastePage(w http.ResponseWriter, r *http.Request) {
	id, err := workspaceID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Workspace.MaxImportBytes)
	if _, err := s.service.ImportText(r.Context(), id, r.PostFormValue("text")); err != nil {
		if !core.IsUserError(err) {
			respondError(w, r, err)
			return
		}
		msg := userMessage(err)
		s.renderPageNotice(w, r, id, &core.Notice{Type: "error", Text: msg.Message}, http.StatusUnprocessableEntity)
		return
	}
	http.Redirect(w, r, "/w/"+id.String(), http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s.renderPageNotice(w, r, id, nil, http.StatusOK)
}

func (s *Server) renderPageNotice(w http.ResponseWriter, r *http.Request, id uuid.UUID, notice *core.Notice, status int) {
	snap, err := s.service.Get(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	view, err := s.service.View(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if notice != nil {
		snap.Notice = notice
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := workspacePage(pageData{Snapshot: snap, View: view}).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "workspace_id", id, "error", err)
	}
}
