package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
)

// View represents a collection of parsed HTML templates.
type View struct {
	templates map[string]*template.Template
	fragments map[string]*template.Template
}

// New creates a new View by parsing all templates from the given filesystem.
// Pages are parsed together with the layouts; fragments stand alone so their
// output can be stored and served outside a page.
func New(templateFS fs.FS) (*View, error) {
	v := &View{
		templates: make(map[string]*template.Template),
		fragments: make(map[string]*template.Template),
	}

	layouts, err := fs.Glob(templateFS, "templates/layouts/*.html")
	if err != nil {
		return nil, err
	}

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		files := append(append([]string{}, layouts...), page)
		// The name of the template is the base name of the page file
		name := filepath.Base(page)
		ts, err := template.New(name).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.templates[name] = ts
	}

	fragments, err := fs.Glob(templateFS, "templates/fragments/*.html")
	if err != nil {
		return nil, err
	}
	for _, fragment := range fragments {
		name := filepath.Base(fragment)
		ts, err := template.New(name).ParseFS(templateFS, fragment)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fragment %s: %w", name, err)
		}
		v.fragments[name] = ts
	}

	return v, nil
}

// Render executes a specific page template by name.
func (v *View) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	ts, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	if r != nil {
		data["CurrentPath"] = r.URL.Path
	}

	// Execute the template into a buffer first to catch any errors
	// before writing to the response writer.
	buf := new(bytes.Buffer)
	if err := ts.Execute(buf, data); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)
	return err
}

// RenderFragment executes a standalone fragment template and returns the HTML.
func (v *View) RenderFragment(name string, data map[string]interface{}) (string, error) {
	ts, ok := v.fragments[name]
	if !ok {
		return "", fmt.Errorf("fragment %s not found", name)
	}
	buf := new(bytes.Buffer)
	if err := ts.Execute(buf, data); err != nil {
		return "", fmt.Errorf("failed to render fragment %s: %w", name, err)
	}
	return buf.String(), nil
}
