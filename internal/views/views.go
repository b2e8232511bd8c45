// Package views renders the server-side HTML pages and the contact email.
//
// Pages live at the root of templates/ and are wrapped by a layout from
// templates/layouts through the {{embed}} call.
package views

import (
	"bytes"
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var embedded embed.FS

// Layout wraps every page rendered through fiber.
const Layout = "layouts/main"

// Engine implements fiber.Views and renders standalone templates to strings.
type Engine struct {
	*html.Engine
}

// New returns an engine over the embedded templates.
func New() *Engine {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("views: embedded templates missing: %v", err))
	}
	return NewFS(sub)
}

// NewFS returns an engine over the .html files in fsys.
func NewFS(fsys fs.FS) *Engine {
	engine := html.NewFileSystem(http.FS(fsys), ".html")
	engine.AddFuncMap(Funcs())
	return &Engine{Engine: engine}
}

// Funcs are the helpers available to every template.
func Funcs() map[string]interface{} {
	return map[string]interface{}{
		"gravatar": Gravatar,
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"year":     func() int { return time.Now().Year() },
	}
}

// RenderString renders template name without a layout.
func (e *Engine) RenderString(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := e.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Gravatar returns the avatar URL for email: 100px, rated g, retro fallback.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", "100")
	q.Set("r", "g")
	q.Set("d", "retro")
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
