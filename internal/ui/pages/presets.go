package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/tanyaprikhodko/journal-of-defects/internal/repository"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// PresetsView — данные фрагмента сохранённых наборов фильтров.
type PresetsView struct {
	Presets []repository.FilterPreset
	Error   string
}

// Presets — HTMX-фрагмент панели наборов фильтров. Применение набора
// перерисовывает таблицу журнала, сохранение и удаление — саму панель.
func Presets(v PresetsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div id="presets" class="presets">
<h2>%s</h2>
`, esc(i18n.T(ctx, "presets.title")))

		if v.Error != "" {
			fmt.Fprintf(w, `<div class="error-banner">%s</div>`+"\n", esc(v.Error))
		}

		if len(v.Presets) > 0 {
			io.WriteString(w, `<ul class="preset-list">`+"\n")
			for _, p := range v.Presets {
				fmt.Fprintf(w, `<li>
<span class="preset-name">%s</span>
<button hx-post="/presets/%s/apply" hx-target="#journal-table" hx-swap="outerHTML">%s</button>
<button class="danger" hx-post="/presets/%s/delete" hx-target="#presets" hx-swap="outerHTML">%s</button>
</li>
`,
					esc(p.Name),
					esc(p.ID.String()), esc(i18n.T(ctx, "presets.apply")),
					esc(p.ID.String()), esc(i18n.T(ctx, "presets.delete")),
				)
			}
			io.WriteString(w, "</ul>\n")
		}

		fmt.Fprintf(w, `<form hx-post="/presets" hx-target="#presets" hx-swap="outerHTML" class="preset-form">
<input type="text" name="name" placeholder="%s">
<button type="submit">%s</button>
</form>
</div>
`,
			esc(i18n.T(ctx, "presets.name")),
			esc(i18n.T(ctx, "presets.save")),
		)
		return nil
	})
}
