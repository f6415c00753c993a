// Package view renders the portal's HTML pages.
//
// Templates and static assets are embedded. A page is parsed once together
// with layout.html and every partial, then cloned per request so the func map
// can close over the request's language and formatter.
package view

import (
	"bytes"
	"crypto/sha1"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/format"
	"github.com/diewo77/erp-reports/i18n"
)

//go:embed templates static
var embedded embed.FS

var (
	mu        sync.RWMutex
	templates = sub(embedded, "templates")
	static    = sub(embedded, "static")
	dev       bool
	tplCache  = map[string]*template.Template{}
	assetHash = map[string]string{}

	formatterResolver = func(_ *http.Request) *format.Formatter { return defaultFormatter }
	defaultFormatter  = format.New("th", "THB", "฿")
)

func sub(f fs.FS, dir string) fs.FS {
	s, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return s
}

// SetFormatterResolver sets the formatter used by money, num, pct and date.
func SetFormatterResolver(f func(*http.Request) *format.Formatter) {
	if f != nil {
		formatterResolver = f
	}
}

// SetBaseDir reads templates and static files from disk instead of the
// embedded copies and disables caching. Used in dev mode to edit pages live.
// The directory must contain templates/ and static/.
func SetBaseDir(dir string) {
	mu.Lock()
	defer mu.Unlock()
	if dir == "" {
		templates, static, dev = sub(embedded, "templates"), sub(embedded, "static"), false
	} else {
		templates, static, dev = os.DirFS(path.Join(dir, "templates")), os.DirFS(path.Join(dir, "static")), true
	}
	tplCache = map[string]*template.Template{}
	assetHash = map[string]string{}
}

// Static returns the static asset tree for http.FileServerFS.
func Static() fs.FS {
	mu.RLock()
	defer mu.RUnlock()
	return static
}

// Funcs returns the func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.Default
	f := defaultFormatter
	if r != nil {
		lang = i18n.LangFromContext(r.Context())
		f = formatterResolver(r)
	}
	return template.FuncMap{
		"t":     func(code string) string { return i18n.T(lang, code) },
		"lang":  func() string { return lang },
		"money": f.Currency,
		"num":   f.Number,
		"pct":   f.Percent,
		"ratio": f.Ratio,
		"date":  f.Date,
		"dict":  dict,
		"year":  func() int { return time.Now().Year() },
		"asset": asset,
	}
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// asset returns /static/<rel>?v=<hash> for cache busting.
func asset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	rel = strings.TrimPrefix(rel, "/")
	mu.RLock()
	h, ok := assetHash[rel]
	src := static
	mu.RUnlock()
	if ok {
		return "/static/" + rel + "?v=" + h
	}
	b, err := fs.ReadFile(src, rel)
	if err != nil {
		return "/static/" + rel
	}
	sum := sha1.Sum(b)
	h = fmt.Sprintf("%x", sum[:8])
	mu.Lock()
	if !dev {
		assetHash[rel] = h
	}
	mu.Unlock()
	return "/static/" + rel + "?v=" + h
}

func parse(name string) (*template.Template, error) {
	mu.RLock()
	t, ok := tplCache[name]
	src, isDev := templates, dev
	mu.RUnlock()
	if ok {
		return t, nil
	}
	partials, err := fs.Glob(src, "partials/*.html")
	if err != nil {
		return nil, err
	}
	files := append([]string{"layout.html", name}, partials...)
	t, err = template.New("layout.html").Funcs(Funcs(nil)).ParseFS(src, files...)
	if err != nil {
		return nil, err
	}
	if !isDev {
		mu.Lock()
		tplCache[name] = t
		mu.Unlock()
	}
	return t, nil
}

// Render executes page name inside the layout with status 200.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code. Output is buffered so
// a template error never leaves a half-written page.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	base, err := parse(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	t.Funcs(Funcs(r))

	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		s, loggedIn := auth.SessionFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
		data["UserName"] = s.Name
	}
	if _, exists := data["Path"]; !exists {
		data["Path"] = r.URL.Path
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
