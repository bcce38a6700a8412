// Package dashboard renders the dashboard header.
package dashboard

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode"

	"github.com/Masterminds/sprig/v3"
)

// User is the signed-in user as displayed in the header.
type User struct {
	Name string `json:"name"`
}

// Header is the top bar of the dashboard: title, user badge and the
// export and logout actions.
type Header struct {
	User     User
	onExport func()
	onLogout func()
}

// NewHeader returns a header for user invoking onExport and onLogout when
// the corresponding action is triggered. Either callback may be nil.
func NewHeader(user User, onExport, onLogout func()) *Header {
	return &Header{User: user, onExport: onExport, onLogout: onLogout}
}

// Export triggers the export action
func (h *Header) Export() {
	if h.onExport != nil {
		h.onExport()
	}
}

// Logout triggers the logout action
func (h *Header) Logout() {
	if h.onLogout != nil {
		h.onLogout()
	}
}

// Render writes the header markup to w
func (h *Header) Render(w io.Writer) error {
	if err := headerTemplate.Execute(w, h.User); err != nil {
		return fmt.Errorf("render header: %w", err)
	}
	return nil
}

const headerHTML = `<header class="dashboard-header">
  <h1 class="dashboard-title">Gestione Turni</h1>
  <div class="dashboard-user">
    <span class="dashboard-avatar">{{ initials .Name }}</span>
    <span class="dashboard-user-name">{{ .Name | trim | default "Utente" }}</span>
  </div>
  <nav class="dashboard-actions">
    <form method="post" action="/dashboard/header/export"><button type="submit">Esporta</button></form>
    <form method="post" action="/dashboard/header/logout"><button type="submit">Esci</button></form>
  </nav>
</header>
`

var headerTemplate = template.Must(
	template.New("header").
		Funcs(sprig.HtmlFuncMap()).
		Funcs(template.FuncMap{"initials": initials}).
		Parse(headerHTML),
)

// initials returns up to two upper-case initials of name, "?" when empty
func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
