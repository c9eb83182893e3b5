package drafts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/alf-academy/enroll/internal/enrollment"
	"github.com/alf-academy/enroll/internal/logger"
)

const (
	dirName = "drafts"
	ext     = ".yaml"
)

// ErrNotFound is returned for a draft name with no file.
var ErrNotFound = errors.New("draft not found")

// Draft is a saved, possibly incomplete, form.
type Draft struct {
	Name    string            `yaml:"name"`
	Step    string            `yaml:"step,omitempty"`
	SavedAt time.Time         `yaml:"saved_at"`
	Reason  string            `yaml:"reason,omitempty"`
	Fields  map[string]string `yaml:"fields"`
}

// FromForm captures the form's non-empty values.
func FromForm(name string, f *enrollment.Form) *Draft {
	d := &Draft{
		Name:   name,
		Step:   f.Step().String(),
		Fields: make(map[string]string),
	}
	for field, v := range f.Values() {
		d.Fields[string(field)] = v
	}
	return d
}

// Apply loads the draft into f. The derived end time is recomputed.
func (d *Draft) Apply(f *enrollment.Form) error {
	values := make(map[enrollment.Field]string, len(d.Fields))
	for k, v := range d.Fields {
		field, err := enrollment.ParseField(k)
		if err != nil {
			return fmt.Errorf("draft %q: %w", d.Name, err)
		}
		values[field] = v
	}
	return f.Load(values)
}

// Info summarizes a draft for listings.
type Info struct {
	Slug    string
	Name    string
	SavedAt time.Time
	Path    string
}

// Store keeps drafts as YAML files under <dataDir>/drafts.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, dirName), now: time.Now}
}

// Dir returns the drafts directory.
func (s *Store) Dir() string {
	return s.dir
}

// Slug returns the file stem used for name.
func Slug(name string) string {
	out := slug.Make(name)
	if out == "" {
		out = "unnamed-draft"
	}
	return out
}

// NameFor returns the default draft name for a form: the student's name,
// else the email, else a timestamp.
func NameFor(f *enrollment.Form, now time.Time) string {
	full := strings.TrimSpace(f.Get(enrollment.FieldFirstName) + " " + f.Get(enrollment.FieldLastName))
	switch {
	case full != "":
		return full
	case strings.TrimSpace(f.Get(enrollment.FieldEmail)) != "":
		return strings.TrimSpace(f.Get(enrollment.FieldEmail))
	default:
		return "draft " + now.Format("2006-01-02 150405")
	}
}

// Path returns the file for a draft name or slug.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, Slug(name)+ext)
}

// Save writes d and returns its path. An existing draft with the same slug
// is replaced.
func (s *Store) Save(d *Draft) (string, error) {
	if d.SavedAt.IsZero() {
		d.SavedAt = s.now().UTC()
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("creating drafts directory: %w", err)
	}

	data, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshaling draft: %w", err)
	}

	path := s.Path(d.Name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("writing draft: %w", err)
	}
	logger.Debug("Draft %q saved to %s", d.Name, path)
	return path, nil
}

// SaveForm saves the form under name, recording why it was saved.
func (s *Store) SaveForm(name string, f *enrollment.Form, reason string) (string, error) {
	d := FromForm(name, f)
	d.Reason = reason
	return s.Save(d)
}

// Load reads a draft by name or slug.
func (s *Store) Load(name string) (*Draft, error) {
	return ReadFile(s.Path(name))
}

// ReadFile parses a draft file at any path.
func ReadFile(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft: %w", err)
	}

	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing draft %s: %w", path, err)
	}
	if d.Fields == nil {
		d.Fields = make(map[string]string)
	}
	return &d, nil
}

// List returns every draft, newest first. Unreadable files are skipped.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading drafts directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		d, err := ReadFile(path)
		if err != nil {
			logger.Warn("Skipping draft %s: %v", path, err)
			continue
		}
		out = append(out, Info{
			Slug:    strings.TrimSuffix(e.Name(), ext),
			Name:    d.Name,
			SavedAt: d.SavedAt,
			Path:    path,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

// Remove deletes a draft.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("removing draft: %w", err)
	}
	return nil
}

// Diff returns a unified diff of the field values of two drafts, or "" when
// they match.
func Diff(a, b *Draft) string {
	return udiff.Unified(a.Name, b.Name, render(a), render(b))
}

// render lists fields in wizard order, one "key: value" per line.
func render(d *Draft) string {
	var sb strings.Builder
	for _, f := range enrollment.Fields {
		if v, ok := d.Fields[string(f)]; ok && v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", f, v)
		}
	}
	return sb.String()
}
