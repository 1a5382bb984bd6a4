// Package export renders scripts as markdown notes and publishes them to a
// notes repository through the hosting contents API.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"reelctl/internal/reel"
)

const dateLayout = "2006-01-02"

type yamlScene struct {
	Text       string   `yaml:"text"`
	Expression string   `yaml:"expression"`
	Emphasis   []string `yaml:"emphasis,omitempty,flow"`
	Overlay    string   `yaml:"overlay,omitempty"`
}

type yamlCTA struct {
	Text       string `yaml:"text"`
	Expression string `yaml:"expression"`
}

// Document is the machine-readable block embedded in each note. The render
// backend accepts it as-is.
type Document struct {
	Style  string      `yaml:"style"`
	Preset string      `yaml:"preset"`
	Scenes []yamlScene `yaml:"scenes"`
	CTA    *yamlCTA    `yaml:"cta,omitempty"`
}

// NewDocument converts script into its YAML form.
func NewDocument(script reel.Script) Document {
	doc := Document{Style: "natural", Preset: script.Preset, Scenes: make([]yamlScene, 0, len(script.Scenes))}
	for _, scene := range script.Scenes {
		doc.Scenes = append(doc.Scenes, yamlScene{
			Text:       scene.Text,
			Expression: string(scene.Expression),
			Emphasis:   scene.Emphasis,
			Overlay:    scene.Overlay,
		})
	}
	if script.CTA != nil {
		doc.CTA = &yamlCTA{Text: script.CTA.Text, Expression: string(script.CTA.Expression)}
	}
	return doc
}

// MarshalYAML renders script's document with two-space indentation.
func MarshalYAML(script reel.Script) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(script)); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// FileName is the note's file name for script on date.
func FileName(script reel.Script, date time.Time) string {
	name := strings.TrimSpace(script.Name)
	if name == "" {
		name = reel.DefaultName
	}
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)
	return date.Format(dateLayout) + "-" + name + ".md"
}

// Render builds the markdown note for script dated date.
func Render(script reel.Script, date time.Time) (string, error) {
	script = script.Clone()
	script.Normalize()

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# %s", script.Name)
	add("")
	add("> [!info] 基本情報")
	add("> - **作成日**: %s", date.Format(dateLayout))
	add("> - **プリセット**: %s", script.Preset)
	add("> - **シーン数**: %d", len(script.Scenes))
	add("")
	add("> [!script]- 台本（タップで展開）")
	for i, scene := range script.Scenes {
		head := fmt.Sprintf("**Scene %d** — %s", i+1, scene.Expression)
		if scene.Overlay != "" {
			head += " / overlay: " + strings.TrimPrefix(scene.Overlay, "overlays/")
		}
		add("> %s", head)
		add("> %s", scene.Text)
		if len(scene.Emphasis) > 0 {
			marked := make([]string, len(scene.Emphasis))
			for j, e := range scene.Emphasis {
				marked[j] = "==" + e + "=="
			}
			add("> 強調: %s", strings.Join(marked, " "))
		}
		add(">")
	}
	if script.CTA != nil {
		add("> **CTA** — %s", script.CTA.Expression)
		add("> %s", script.CTA.Text)
		add(">")
	}
	add("")

	block, err := MarshalYAML(script)
	if err != nil {
		return "", err
	}
	add("> [!tip]- YAML（タップで展開）")
	add("> ```yaml")
	for _, l := range strings.Split(block, "\n") {
		add("> %s", l)
	}
	add("> ```")
	add("")
	add("## 関連リンク")
	add("- [[投稿ネタ・企画]]")

	return strings.Join(lines, "\n"), nil
}
