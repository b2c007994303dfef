package headhunter

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Description  string `json:"description,omitempty"`
	KeySkills    []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived bool `json:"archived,omitempty"`
}

// Source labels the vacancy for reports and logs.
func (v *Vacancy) Source() string {
	if v.AlternateURL != "" {
		return v.AlternateURL
	}
	return fmt.Sprintf("vacancy:%s", v.ID)
}

// KeySkillNames returns the names of the key skills listed by the employer.
func (v *Vacancy) KeySkillNames() []string {
	names := make([]string, 0, len(v.KeySkills))
	for _, skill := range v.KeySkills {
		if name := strings.TrimSpace(skill.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// JobDescription flattens the vacancy into plain text: title, description
// converted from HTML and the key skills list.
func (v *Vacancy) JobDescription() string {
	parts := make([]string, 0, 3)

	if name := strings.TrimSpace(v.Name); name != "" {
		parts = append(parts, name)
	}
	if description := HTMLToText(v.Description); description != "" {
		parts = append(parts, description)
	}
	if skills := v.KeySkillNames(); len(skills) > 0 {
		parts = append(parts, "Key skills: "+strings.Join(skills, ", "))
	}

	return strings.Join(parts, "\n\n")
}

var blockElements = map[string]bool{
	"p": true, "br": true, "li": true, "ul": true, "ol": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "tr": true,
}

// HTMLToText strips markup from an HTML fragment, keeping one line per block element.
func HTMLToText(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	skip := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return tidyLines(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
				continue
			}
			if blockElements[tag] {
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
				continue
			}
			if blockElements[tag] {
				b.WriteString("\n")
			}
		}
	}
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
