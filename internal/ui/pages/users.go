package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/tanyaprikhodko/journal-of-defects/internal/domain/model"
	"github.com/tanyaprikhodko/journal-of-defects/internal/session"
	"github.com/tanyaprikhodko/journal-of-defects/internal/ui/i18n"
)

// UsersView — данные страницы списка пользователей.
type UsersView struct {
	Principal *session.Principal
	Users     []model.User
	Regions   []model.Region
	RegionID  string // выбранный фильтр по РЕМ, пусто — все
	Error     string
}

// Users — страница администрирования пользователей.
func Users(v UsersView) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<div class="page-header">
<h1>%s</h1>
<a class="button" href="/users/new">%s</a>
</div>
`, esc(i18n.T(ctx, "users.title")), esc(i18n.T(ctx, "users.new")))

		if err := ErrorBanner(v.Error).Render(ctx, w); err != nil {
			return err
		}

		fmt.Fprintf(w, `<form method="get" action="/users" class="region-filter">
<select name="regionId" onchange="this.form.submit()">
<option value="">%s</option>
`, esc(i18n.T(ctx, "users.all_regions")))
		for _, r := range v.Regions {
			attr := ""
			if r.ID == v.RegionID {
				attr = ` selected`
			}
			fmt.Fprintf(w, `<option value="%s"%s>%s</option>`+"\n", esc(r.ID), attr, esc(r.Name))
		}
		io.WriteString(w, "</select>\n</form>\n")

		fmt.Fprintf(w, `<table class="users-table">
<thead><tr><th>%s</th><th>%s</th><th>%s</th><th>%s</th></tr></thead>
<tbody>
`,
			esc(i18n.T(ctx, "users.name")),
			esc(i18n.T(ctx, "users.login")),
			esc(i18n.T(ctx, "users.email")),
			esc(i18n.T(ctx, "users.rank")),
		)
		for _, u := range v.Users {
			cls := "row-link"
			if u.IsLocked || !u.IsActive {
				cls += " inactive"
			}
			fmt.Fprintf(w, `<tr class="%s" data-href="/users/%d"><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`+"\n",
				cls, u.ID, esc(u.Name), esc(u.Login), esc(u.Email), esc(u.Rank))
		}
		io.WriteString(w, "</tbody>\n</table>\n")
		return nil
	})
	return Layout("Користувачі", v.Principal, content)
}

// UserFormView — данные формы создания или редактирования пользователя.
type UserFormView struct {
	Principal *session.Principal
	User      *model.User // nil — создание
	Regions   []model.Region
	Roles     []model.LookupItem
	Deputies  []model.User
	Error     string
}

// UserForm — страница создания или редактирования пользователя.
func UserForm(v UserFormView) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		titleKey := "users.new"
		action := "/users"
		if v.User != nil {
			titleKey = "users.save"
			action = fmt.Sprintf("/users/%d", v.User.ID)
		}
		fmt.Fprintf(w, `<div class="page-header"><h1>%s</h1></div>`+"\n", esc(i18n.T(ctx, titleKey)))

		if err := ErrorBanner(v.Error).Render(ctx, w); err != nil {
			return err
		}

		u := v.User
		if u == nil {
			u = &model.User{IsActive: true}
		}

		fmt.Fprintf(w, `<form method="post" action="%s" class="user-form">`+"\n", esc(action))

		textField(ctx, w, "name", "users.name", u.Name)
		textField(ctx, w, "login", "users.login", u.Login)
		textField(ctx, w, "email", "users.email", u.Email)
		textField(ctx, w, "secondEmail", "users.second_email", u.SecondEmail)
		writeField(ctx, w, "password", "users.password", func(w io.Writer) {
			io.WriteString(w, `<input type="password" name="password" autocomplete="new-password">`)
		})
		textField(ctx, w, "rank", "users.rank", u.Rank)
		writeField(ctx, w, "regionId", "users.region", func(w io.Writer) {
			regionID := &u.RegionID
			regionSelect(w, "regionId", v.Regions, regionID)
		})
		writeField(ctx, w, "deputyId", "users.deputy", func(w io.Writer) {
			userSelect(w, "deputyId", v.Deputies, u.DeputyID)
		})
		writeField(ctx, w, "roleIds", "users.roles", func(w io.Writer) {
			io.WriteString(w, `<div class="role-checks">`+"\n")
			for _, role := range v.Roles {
				checked := ""
				if containsInt(u.RoleIDs, role.ID) {
					checked = ` checked`
				}
				fmt.Fprintf(w, `<label class="check"><input type="checkbox" name="roleIds" value="%d"%s> %s</label>`+"\n",
					role.ID, checked, esc(role.Name))
			}
			io.WriteString(w, "</div>\n")
		})
		checkField(ctx, w, "isActive", "users.active", u.IsActive)
		checkField(ctx, w, "isLocked", "users.locked", u.IsLocked)
		writeField(ctx, w, "userMessage", "users.message", func(w io.Writer) {
			fmt.Fprintf(w, `<textarea name="userMessage" rows="2">%s</textarea>`, esc(u.UserMessage))
		})

		fmt.Fprintf(w, `<div class="form-actions">
<button type="submit">%s</button>
<a class="button secondary" href="/users">%s</a>
`,
			esc(i18n.T(ctx, "users.save")),
			esc(i18n.T(ctx, "journal.cancel")),
		)
		if v.User != nil {
			fmt.Fprintf(w, `<button type="submit" class="danger" formaction="/users/%d/delete" formnovalidate data-confirm="%s">%s</button>`+"\n",
				v.User.ID,
				esc(i18n.T(ctx, "users.delete.confirm")),
				esc(i18n.T(ctx, "journal.delete")),
			)
		}
		io.WriteString(w, "</div>\n</form>\n")
		return nil
	})
	return Layout("Користувач", v.Principal, content)
}

func textField(ctx context.Context, w io.Writer, name, labelKey, value string) {
	writeField(ctx, w, name, labelKey, func(w io.Writer) {
		fmt.Fprintf(w, `<input type="text" name="%s" value="%s">`, esc(name), esc(value))
	})
}

func checkField(ctx context.Context, w io.Writer, name, labelKey string, checked bool) {
	attr := ""
	if checked {
		attr = ` checked`
	}
	fmt.Fprintf(w, `<label class="check"><input type="checkbox" name="%s" value="true"%s> %s</label>`+"\n",
		esc(name), attr, esc(i18n.T(ctx, labelKey)))
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
