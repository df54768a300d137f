package docdef

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want Kind
	}{
		{"empty", Node{}, KindEmpty},
		{"text", Node{Text: "hi"}, KindText},
		{"runs", Node{Runs: []Node{{Text: "a"}}}, KindText},
		{"stack", Node{Stack: []Node{}}, KindStack},
		{"table", Node{Table: &Table{}}, KindTable},
		{"ul", Node{UL: []Node{}}, KindList},
		{"ol", Node{OL: []Node{{Text: "x"}}}, KindList},
		{"image", Node{Image: "data:image/png;base64,AA=="}, KindImage},
		{"rule", Node{HR: true}, KindRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	content := []Node{
		{Text: "title"},
		{Stack: []Node{
			{Runs: []Node{{Text: "a"}, {Text: "b", Bold: true}}},
			{Image: "data:image/png;base64,AA=="},
		}},
		{Table: &Table{Body: [][]Node{{{Text: "c1"}, {Image: "data:image/gif;base64,AA=="}}}}},
		{UL: []Node{{Text: "item"}}},
	}

	var texts []string
	images := 0
	Walk(content, func(n *Node) bool {
		if n.Text != "" {
			texts = append(texts, n.Text)
		}
		if n.Kind() == KindImage {
			images++
		}
		return true
	})

	if got := strings.Join(texts, ","); got != "title,a,b,c1,item" {
		t.Errorf("texts = %s", got)
	}
	if images != 2 {
		t.Errorf("images = %d, want 2", images)
	}

	visited := 0
	Walk(content, func(n *Node) bool {
		visited++
		return n.Stack == nil
	})
	if visited != 7 {
		t.Errorf("visited with skip = %d, want 7", visited)
	}
}

func TestPlainText(t *testing.T) {
	n := Node{Runs: []Node{{Text: "Hello "}, {Text: "world", Bold: true}}}
	if got := PlainText(n); got != "Hello world" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestDefinitionJSON(t *testing.T) {
	def := Definition{
		Content:      []Node{{Text: "x", NodeName: "P", Style: []string{"html-p"}}},
		DefaultStyle: Style{FontSize: 12},
	}
	data, err := json.Marshal(def)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"defaultStyle":{"fontSize":12}`, `"nodeName":"P"`, `"style":["html-p"]`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, `"bold"`) {
		t.Errorf("zero fields should be omitted: %s", s)
	}
}
