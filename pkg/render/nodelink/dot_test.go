package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/tablescape/pkg/graph"
	"github.com/matzehuels/tablescape/pkg/layout"
)

func sample() graph.Diagram {
	return graph.Diagram{
		Nodes: []graph.Node{
			{ID: "users", Position: graph.Point{X: 0, Y: 0}, Width: 144, Height: 72, Data: graph.TableData{Name: "Users"}},
			{ID: "orders", Position: graph.Point{X: 288, Y: 144}, Width: 144, Height: 72},
			{ID: "audit", Position: graph.Point{X: 600, Y: 0}},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "users", Target: "orders", Type: graph.EdgeTypeOneToMany},
			{ID: "e2", Source: "orders", Target: "audit", Animated: true},
		},
	}
}

func TestToDOTBasic(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"users" [label="Users"]`,
		`"orders" [label="orders"]`,
		`"users" -> "orders" [dir=both, arrowhead=crow, arrowtail=tee]`,
		`"orders" -> "audit" [style=dashed]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned DOT should not carry positions")
	}
}

func TestToDOTDirection(t *testing.T) {
	dot := ToDOT(sample(), Options{Direction: layout.LeftRight})
	if !strings.Contains(dot, "rankdir=LR;") {
		t.Errorf("ToDOT() missing rankdir=LR\n%s", dot)
	}
}

func TestToDOTPinned(t *testing.T) {
	dot := ToDOT(sample(), Options{Pinned: true})

	for _, want := range []string{
		"layout=neato;",
		"inputscale=72;",
		// center of a 144x72 node at the origin, y flipped
		`pos="72,-36!"`,
		`pos="360,-180!"`,
		"width=2, height=1, fixedsize=true",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("pinned ToDOT() missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTGroups(t *testing.T) {
	groups := []graph.TableGroup{
		{ID: "group-0", Name: "Core", NodeIDs: []string{"users", "orders"}, Color: "#3b82f6"},
	}
	fill, border := groupColors("#3b82f6")

	dot := ToDOT(sample(), Options{Groups: groups})
	for _, want := range []string{
		`subgraph "cluster_0" {`,
		`label="Core";`,
		`fillcolor="` + fill + `"`,
		`color="` + border + `"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("grouped ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Count(dot, `"users" [`) != 1 {
		t.Error("grouped node emitted more than once")
	}

	pinned := ToDOT(sample(), Options{Pinned: true, Groups: groups})
	if strings.Contains(pinned, "cluster_") {
		t.Error("pinned DOT should not use clusters")
	}
	if !strings.Contains(pinned, `fillcolor="`+fill+`"`) {
		t.Error("pinned DOT should still tint group members")
	}
}

func TestFmtLabel(t *testing.T) {
	n := graph.Node{
		ID: "t1",
		Data: graph.TableData{
			Name: "accounts",
			Columns: []graph.Column{
				{Name: "id", Type: "uuid", PrimaryKey: true},
				{Name: "email"},
			},
		},
	}

	if got := fmtLabel(n, false); got != "accounts" {
		t.Errorf("fmtLabel() = %q", got)
	}
	if got, want := fmtLabel(n, true), "accounts\nid: uuid (pk)\nemail"; got != want {
		t.Errorf("detailed fmtLabel() = %q, want %q", got, want)
	}
	if got := fmtLabel(graph.Node{ID: "bare"}, true); got != "bare" {
		t.Errorf("fmtLabel() without columns = %q", got)
	}
}

func TestGroupColors(t *testing.T) {
	tests := []struct {
		css        string
		wantBorder string
	}{
		{"#3b82f6", "#3b82f6"},
		{"red", "#ff0000"},
		{"not a colour", defaultBorder},
	}
	for _, tt := range tests {
		fill, border := groupColors(tt.css)
		if border != tt.wantBorder {
			t.Errorf("groupColors(%q) border = %s, want %s", tt.css, border, tt.wantBorder)
		}
		if fontColor(fill) != "black" {
			t.Errorf("groupColors(%q) fill %s is too dark for black text", tt.css, fill)
		}
	}
	if fontColor("#111827") != "white" {
		t.Error("dark background should get white text")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "Users") {
		t.Errorf("RenderSVG() produced unexpected output: %.200s", svg)
	}
}
