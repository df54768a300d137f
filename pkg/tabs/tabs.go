// Package tabs defines the tabs shown by the panel.
//
// A [Tab] carries either static markup or the chart flag. The built-in set
// ([Default]) has a chart tab followed by a profile card and a row of social
// platform cards. A tabs file ([LoadFile]) replaces the built-in set.
package tabs

import (
	"github.com/matzehuels/tabpanel/pkg/errors"
)

// Tab is a single panel tab. Tabs are immutable after construction.
type Tab struct {
	ID    string `toml:"id" yaml:"id" json:"id"`
	Title string `toml:"title" yaml:"title" json:"title"`
	HTML  string `toml:"html" yaml:"html" json:"html,omitempty"`
	Chart bool   `toml:"chart" yaml:"chart" json:"chart,omitempty"`
}

// Validate checks a tab list: at least one tab, unique valid IDs, titles
// present and at most one chart tab.
func Validate(list []Tab) error {
	if len(list) == 0 {
		return errors.New(errors.ErrCodeInvalidTab, "no tabs defined")
	}
	seen := make(map[string]bool, len(list))
	charts := 0
	for i, t := range list {
		if err := errors.ValidateTabID(t.ID); err != nil {
			return err
		}
		if seen[t.ID] {
			return errors.New(errors.ErrCodeInvalidTab, "duplicate tab id %q", t.ID)
		}
		seen[t.ID] = true
		if t.Title == "" {
			return errors.New(errors.ErrCodeInvalidTab, "tab %d (%s) has no title", i, t.ID)
		}
		if t.Chart {
			charts++
		}
	}
	if charts > 1 {
		return errors.New(errors.ErrCodeInvalidTab, "at most one chart tab allowed, got %d", charts)
	}
	return nil
}

// ChartIndex returns the index of the chart tab, or -1.
func ChartIndex(list []Tab) int {
	for i, t := range list {
		if t.Chart {
			return i
		}
	}
	return -1
}

// Default returns the built-in tabs.
func Default() []Tab {
	return []Tab{
		{ID: "tab-1", Title: "Tab One", Chart: true},
		{ID: "tab-2", Title: "Tab Two", HTML: profileCard},
		{ID: "tab-3", Title: "Tab Three", HTML: socialCards},
	}
}

const profileCard = `
<div class="profile-card-wrapper">
  <div class="profile-header"></div>
  <div class="profile-card">
    <div class="profile-avatar">SJ</div>
    <h2 class="profile-name">Samantha Jones</h2>
    <div class="profile-location">New York, United States</div>
    <p class="profile-role">
      Web Producer - Web Specialist<br/>
      Columbia University - New York
    </p>
    <table class="profile-stats">
      <tr>
        <td><div class="stat-value">65</div><div class="stat-label">Friends</div></td>
        <td><div class="stat-value">43</div><div class="stat-label">Photos</div></td>
        <td><div class="stat-value">21</div><div class="stat-label">Comments</div></td>
      </tr>
    </table>
    <div class="profile-cta">
      <a href="https://example.com/profile/samantha-jones" target="_blank" class="btn-show-more">Show more</a>
    </div>
  </div>
</div>
`

const socialCards = `
<h2>Social Platforms</h2>
<div class="social-cards">
  <div class="card twitter">
    <div class="icon">🐦</div>
    <h6>TWITTER</h6>
    <p>Lorem ipsum dolor sit amet, consectetur adipisicing elit. Expedita ullam aliquid non eligendi, nemo est neque reiciendis error?</p>
    <a href="https://twitter.com" target="_blank" class="btn">READ MORE</a>
  </div>
  <div class="card instagram">
    <div class="icon">📷</div>
    <h6>INSTAGRAM</h6>
    <p>Lorem ipsum dolor sit amet, consectetur adipisicing elit. Expedita ullam aliquid non eligendi, nemo est neque reiciendis error?</p>
    <a href="https://instagram.com" target="_blank" class="btn">READ MORE</a>
  </div>
  <div class="card youtube">
    <div class="icon">▶️</div>
    <h6>YOUTUBE</h6>
    <p>Lorem ipsum dolor sit amet, consectetur adipisicing elit. Expedita ullam aliquid non eligendi, nemo est neque reiciendis error?</p>
    <a href="https://youtube.com" target="_blank" class="btn">READ MORE</a>
  </div>
</div>
`
