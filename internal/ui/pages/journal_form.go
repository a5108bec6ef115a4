package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/lifecycle"
	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// JournalFormView — данные страницы создания или редактирования записи.
type JournalFormView struct {
	Principal    *session.Principal
	Journal      *model.Journal // nil — создание новой записи
	ObjectTypes  []model.LookupItem
	Places       []model.LookupItem
	Substations  []model.Substation
	Regions      []model.Region
	Users        []model.User
	NextStatuses []lifecycle.Condition
	Error        string
}

// JournalForm — страница создания или редактирования записи журнала.
// Форма ведёт учёт тронутых полей: каждый input несёт data-field,
// скрипт добавляет имя поля в скрытое поле touched при первом изменении.
func JournalForm(v JournalFormView) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		titleKey := "journal.create"
		action := "/journals"
		if v.Journal != nil {
			titleKey = "journal.edit"
			action = fmt.Sprintf("/journals/%d", v.Journal.ID)
		}

		fmt.Fprintf(w, `<div class="page-header"><h1>%s</h1></div>`+"\n", esc(i18n.T(ctx, titleKey)))

		if err := ErrorBanner(v.Error).Render(ctx, w); err != nil {
			return err
		}

		if v.Journal != nil {
			if err := conditionPanel(v).Render(ctx, w); err != nil {
				return err
			}
		}

		fmt.Fprintf(w, `<form method="post" action="%s" class="journal-form" data-track-touched>
<input type="hidden" name="touched" value="">
`, esc(action))

		j := v.Journal
		if j == nil {
			j = &model.Journal{}
		}

		writeField(ctx, w, "order", "column.order", func(w io.Writer) {
			fmt.Fprintf(w, `<input type="number" name="order" data-field="order" value="%s">`, esc(fmtIntPtr(j.Order)))
		})
		writeField(ctx, w, "objectTypeId", "column.objectType", func(w io.Writer) {
			lookupSelect(w, "objectTypeId", v.ObjectTypes, j.ObjectTypeID)
		})
		writeField(ctx, w, "objectNumber", "column.objectNumber", func(w io.Writer) {
			fmt.Fprintf(w, `<input type="number" name="objectNumber" data-field="objectNumber" value="%s">`, esc(fmtIntPtr(j.ObjectNumber)))
		})
		writeField(ctx, w, "placeId", "column.place", func(w io.Writer) {
			lookupSelect(w, "placeId", v.Places, j.PlaceID)
		})
		writeField(ctx, w, "substationId", "column.substation", func(w io.Writer) {
			substationSelect(w, v.Substations, j.SubstationID)
		})
		writeField(ctx, w, "connection", "column.connection", func(w io.Writer) {
			fmt.Fprintf(w, `<input type="text" name="connection" data-field="connection" value="%s">`, esc(j.Connection))
		})
		writeField(ctx, w, "description", "column.description", func(w io.Writer) {
			fmt.Fprintf(w, `<textarea name="description" data-field="description" rows="4">%s</textarea>`, esc(j.Description))
		})
		writeField(ctx, w, "responsibleId", "column.responsible", func(w io.Writer) {
			userSelect(w, "responsibleId", v.Users, personID(j.Responsible))
		})
		writeField(ctx, w, "completionTerm", "column.completionTerm", func(w io.Writer) {
			val := ""
			if j.CompletionTerm != nil {
				val = j.CompletionTerm.Time.Format("2006-01-02")
			}
			fmt.Fprintf(w, `<input type="date" name="completionTerm" data-field="completionTerm" value="%s">`, esc(val))
		})
		writeField(ctx, w, "redirectRegionId", "journal.redirect_region", func(w io.Writer) {
			regionSelect(w, "redirectRegionId", v.Regions, j.RedirectRegionID)
		})

		fmt.Fprintf(w, `<div class="form-actions">
<button type="submit">%s</button>
<a class="button secondary" href="/journals">%s</a>
`,
			esc(i18n.T(ctx, "journal.save")),
			esc(i18n.T(ctx, "journal.cancel")),
		)

		if v.Journal != nil {
			fmt.Fprintf(w, `<button type="submit" class="danger" formaction="/journals/%d/delete" formnovalidate data-confirm="%s">%s</button>`+"\n",
				v.Journal.ID,
				esc(i18n.T(ctx, "journals.delete.confirm")),
				esc(i18n.T(ctx, "journal.delete")),
			)
		}
		io.WriteString(w, "</div>\n</form>\n")

		if v.Journal != nil {
			// Лента комментариев подгружается отдельным фрагментом
			fmt.Fprintf(w, `<div id="comments" hx-get="/journals/%d/comments" hx-trigger="load" hx-swap="innerHTML"></div>`+"\n", v.Journal.ID)
		}
		return nil
	})

	title := "Запис"
	if v.Journal != nil {
		title = fmt.Sprintf("Запис №%d", v.Journal.ID)
	}
	return Layout(title, v.Principal, content)
}

// conditionPanel — текущее состояние записи и доступные переходы.
func conditionPanel(v JournalFormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="condition-panel">
<span class="condition-badge">%s</span>
`, esc(v.Journal.Condition))

		if len(v.NextStatuses) > 0 {
			fmt.Fprintf(w, `<span class="transition-label">%s:</span>`+"\n", esc(i18n.T(ctx, "journal.transition")))
			for _, next := range v.NextStatuses {
				fmt.Fprintf(w, `<form method="post" action="/journals/%d/transition" class="inline">
<input type="hidden" name="target" value="%s">
<button type="submit">%s</button>
</form>
`, v.Journal.ID, esc(string(next)), esc(string(next)))
			}
		}
		io.WriteString(w, "</div>\n")
		return nil
	})
}

// writeField — строка формы: подпись и элемент ввода.
func writeField(ctx context.Context, w io.Writer, name, labelKey string, input func(io.Writer)) {
	fmt.Fprintf(w, `<label class="field" for="%s">%s`+"\n", esc(name), esc(i18n.T(ctx, labelKey)))
	input(w)
	io.WriteString(w, "</label>\n")
}

// lookupSelect — select по элементам справочника.
func lookupSelect(w io.Writer, name string, items []model.LookupItem, selected *int) {
	fmt.Fprintf(w, `<select name="%s" data-field="%s">`+"\n<option value=\"\"></option>\n", esc(name), esc(name))
	for _, item := range items {
		fmt.Fprintf(w, `<option value="%d"%s>%s</option>`+"\n", item.ID, selectedAttr(selected, item.ID), esc(item.Name))
	}
	io.WriteString(w, "</select>\n")
}

// substationSelect — select подстанций, сгруппированных по РЕМ.
func substationSelect(w io.Writer, groups []model.Substation, selected *int) {
	io.WriteString(w, `<select name="substationId" data-field="substationId">`+"\n<option value=\"\"></option>\n")
	for _, g := range groups {
		fmt.Fprintf(w, `<optgroup label="%s">`+"\n", esc(g.Name))
		for _, item := range g.Substations {
			fmt.Fprintf(w, `<option value="%d"%s>%s</option>`+"\n", item.ID, selectedAttr(selected, item.ID), esc(item.Name))
		}
		io.WriteString(w, "</optgroup>\n")
	}
	io.WriteString(w, "</select>\n")
}

// userSelect — select пользователей.
func userSelect(w io.Writer, name string, users []model.User, selected *int) {
	fmt.Fprintf(w, `<select name="%s" data-field="%s">`+"\n<option value=\"\"></option>\n", esc(name), esc(name))
	for _, u := range users {
		fmt.Fprintf(w, `<option value="%d"%s>%s</option>`+"\n", u.ID, selectedAttr(selected, u.ID), esc(u.Name))
	}
	io.WriteString(w, "</select>\n")
}

// regionSelect — select РЕМ (строковые идентификаторы).
func regionSelect(w io.Writer, name string, regions []model.Region, selected *string) {
	fmt.Fprintf(w, `<select name="%s" data-field="%s">`+"\n<option value=\"\"></option>\n", esc(name), esc(name))
	for _, r := range regions {
		attr := ""
		if selected != nil && *selected == r.ID {
			attr = ` selected`
		}
		fmt.Fprintf(w, `<option value="%s"%s>%s</option>`+"\n", esc(r.ID), attr, esc(r.Name))
	}
	io.WriteString(w, "</select>\n")
}

func selectedAttr(selected *int, id int) string {
	if selected != nil && *selected == id {
		return ` selected`
	}
	return ""
}

func personID(p *model.Person) *int {
	if p == nil {
		return nil
	}
	return &p.ID
}
