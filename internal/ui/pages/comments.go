package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// CommentsView — данные фрагмента ленты комментариев.
type CommentsView struct {
	JournalID int
	Comments  []model.Comment
	Error     string
}

// Comments — HTMX-фрагмент: лента комментариев записи и форма добавления.
// Форма отправляется на тот же фрагмент и заменяет его целиком.
func Comments(v CommentsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="comments">
<h2>%s</h2>
`, esc(i18n.T(ctx, "comments.title")))

		if v.Error != "" {
			fmt.Fprintf(w, `<div class="error-banner">%s</div>`+"\n", esc(v.Error))
		}

		if len(v.Comments) == 0 {
			fmt.Fprintf(w, `<p class="empty">%s</p>`+"\n", esc(i18n.T(ctx, "comments.empty")))
		} else {
			io.WriteString(w, `<ul class="comment-list">`+"\n")
			for _, c := range v.Comments {
				author := c.AuthorName
				if author == "" {
					author = "—"
				}
				edited := ""
				if c.IsEdited {
					edited = ` <span class="edited">(` + esc(i18n.T(ctx, "comments.edited")) + `)</span>`
				}
				fmt.Fprintf(w, `<li class="comment">
<div class="comment-meta"><strong>%s</strong> <time>%s</time>%s</div>
<div class="comment-body">%s</div>
</li>
`, esc(author), esc(c.CreationDate.Format("02.01.2006 15:04")), edited, esc(c.Body))
			}
			io.WriteString(w, "</ul>\n")
		}

		fmt.Fprintf(w, `<form hx-post="/journals/%d/comments" hx-target="#comments" hx-swap="innerHTML" class="comment-form">
<textarea name="body" rows="3" placeholder="%s"></textarea>
<button type="submit">%s</button>
</form>
</div>
`,
			v.JournalID,
			esc(i18n.T(ctx, "comments.placeholder")),
			esc(i18n.T(ctx, "comments.add")),
		)
		return nil
	})
}
