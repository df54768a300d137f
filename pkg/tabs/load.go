package tabs

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tabpanel/pkg/errors"
)

// file is the on-disk layout of a tabs file:
//
//	[[tab]]
//	id = "chart"
//	title = "Overview"
//	chart = true
//
//	[[tab]]
//	id = "about"
//	title = "About"
//	html = "<h2>About</h2><p>...</p>"
type file struct {
	Tabs []Tab `toml:"tab" yaml:"tabs" json:"tabs"`
}

// LoadFile reads tabs from a TOML, YAML or JSON file and sanitizes their
// markup. The format follows the file extension; anything else is TOML.
func LoadFile(path string) ([]Tab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tabs file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read tabs file")
	}

	var f file
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	policy := Policy()
	for i := range f.Tabs {
		f.Tabs[i].HTML = strings.TrimSpace(policy.Sanitize(f.Tabs[i].HTML))
	}
	if err := Validate(f.Tabs); err != nil {
		return nil, err
	}
	return f.Tabs, nil
}

// Policy returns the sanitizer applied to markup from tabs files. It keeps
// user-generated-content markup plus the layout elements and class names the
// panel styles, and allows embedded images.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	p.AllowElements("div", "span", "section", "header", "footer")
	p.AllowAttrs("class", "id").Globally()
	p.AllowStyles("max-width", "height", "width", "border-radius").OnElements("img")
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	return p
}
