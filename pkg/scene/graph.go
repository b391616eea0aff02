// Package scene groups built meshes and lights and writes them as a binary
// glTF (GLB) document.
package scene

import (
	"strings"

	"github.com/vpdb/server-sub007/pkg/formats"
	"github.com/vpdb/server-sub007/pkg/mesh"
)

// RootName is the name of the single top-level node.
const RootName = "table"

// Group is a named list of nodes in insertion order.
type Group struct {
	Name  string
	Nodes []mesh.Node
}

// Graph is an ordered mapping from group name to nodes. Groups keep the
// order in which they were first used.
type Graph struct {
	Name   string
	groups []*Group
	index  map[string]int
}

// NewGraph returns an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{Name: name, index: make(map[string]int)}
}

// Assemble puts the nodes of a build result into their groups, keeping
// their order.
func Assemble(t *formats.Table, nodes []mesh.Node) *Graph {
	name := RootName
	if t != nil && t.GameData.Name != "" {
		name = t.GameData.Name
	}
	g := NewGraph(name)
	for _, n := range nodes {
		g.Add(n.Group, n)
	}
	return g
}

// Add appends n to the named group, creating the group if needed.
func (g *Graph) Add(group string, n mesh.Node) {
	n.Group = group
	i, ok := g.index[group]
	if !ok {
		i = len(g.groups)
		g.index[group] = i
		g.groups = append(g.groups, &Group{Name: group})
	}
	g.groups[i].Nodes = append(g.groups[i].Nodes, n)
}

// Groups returns the groups in order.
func (g *Graph) Groups() []*Group {
	return g.groups
}

// Group returns the named group or nil.
func (g *Graph) Group(name string) *Group {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.groups[i]
}

// Find looks up a node by group and mesh or light name. Names compare
// case-insensitively.
func (g *Graph) Find(group, name string) *mesh.Node {
	grp := g.Group(group)
	if grp == nil {
		return nil
	}
	for i := range grp.Nodes {
		if strings.EqualFold(nodeName(grp.Nodes[i]), name) {
			return &grp.Nodes[i]
		}
	}
	return nil
}

// Len returns the total number of nodes.
func (g *Graph) Len() int {
	n := 0
	for _, grp := range g.groups {
		n += len(grp.Nodes)
	}
	return n
}

func nodeName(n mesh.Node) string {
	switch {
	case n.Mesh != nil:
		return n.Mesh.Name
	case n.Light != nil:
		return n.Light.Name
	}
	return ""
}
