package viewport

import (
	"fmt"
	"slices"

	"github.com/matzehuels/tablescape/pkg/graph"
)

// Clustering parameters.
const (
	// MinNodesForGrouping is the smallest diagram CreateTableGroups clusters.
	MinNodesForGrouping = 20
	// ClusterDistance is the largest distance from a cluster's seed at which
	// a node joins the cluster.
	ClusterDistance = 500.0
)

// Palette holds the group colours, assigned by cluster index modulo its
// length.
var Palette = [...]string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6",
	"#06b6d4", "#84cc16", "#f97316", "#ec4899", "#6366f1",
}

// Remainder group identity.
const (
	OtherGroupID    = "group-other"
	OtherGroupName  = "Other Tables"
	OtherGroupColor = "#6b7280"
)

// CreateTableGroups clusters nodes by proximity and replaces the cached
// group map with the result.
//
// Nodes are visited in input order. Each node not yet clustered seeds a new
// cluster and pulls in every unclustered node within ClusterDistance of the
// seed. Distances are measured to the seed only, so two members may be
// further apart than ClusterDistance. Clusters with at least two members
// become "Group N"; all singletons form the "Other Tables" group.
//
// It returns nil, and leaves the cache untouched, unless grouping is enabled
// and there are at least MinNodesForGrouping nodes. edges are currently
// unused; proximity alone decides membership.
func (m *Manager) CreateTableGroups(nodes []graph.Node, edges []graph.Edge) []graph.TableGroup {
	if !m.cfg.EnableGrouping || len(nodes) < MinNodesForGrouping {
		return nil
	}
	start := m.clock()

	clustered := make([]bool, len(nodes))
	var groups []graph.TableGroup
	var others []graph.Node

	for i, seed := range nodes {
		if clustered[i] {
			continue
		}
		clustered[i] = true
		members := []graph.Node{seed}
		for j := i + 1; j < len(nodes); j++ {
			if clustered[j] || seed.Position.Distance(nodes[j].Position) > ClusterDistance {
				continue
			}
			clustered[j] = true
			members = append(members, nodes[j])
		}

		if len(members) < 2 {
			others = append(others, seed)
			continue
		}
		idx := len(groups)
		groups = append(groups, newGroup(
			fmt.Sprintf("group-%d", idx),
			fmt.Sprintf("Group %d", idx+1),
			Palette[idx%len(Palette)],
			members,
		))
	}
	if len(others) > 0 {
		groups = append(groups, newGroup(OtherGroupID, OtherGroupName, OtherGroupColor, others))
	}

	m.replaceGroups(groups)
	m.hooks.OnGroupsBuilt(len(nodes), len(groups), m.clock().Sub(start))
	m.logger.Debug("built table groups", "nodes", len(nodes), "groups", len(groups), "ungrouped", len(others))
	return groups
}

func newGroup(id, name, color string, members []graph.Node) graph.TableGroup {
	var sum graph.Point
	for _, n := range members {
		sum = sum.Add(n.Position)
	}
	k := float64(len(members))
	return graph.TableGroup{
		ID:       id,
		Name:     name,
		NodeIDs:  graph.NodeIDs(members),
		Position: graph.Point{X: sum.X / k, Y: sum.Y / k},
		Color:    color,
	}
}

// replaceGroups swaps in a fresh group map in one step.
func (m *Manager) replaceGroups(groups []graph.TableGroup) {
	next := make(map[string]*graph.TableGroup, len(groups))
	order := make([]string, 0, len(groups))
	for i := range groups {
		g := groups[i]
		g.NodeIDs = slices.Clone(g.NodeIDs)
		next[g.ID] = &g
		order = append(order, g.ID)
	}
	m.groups, m.groupOrder = next, order
}

// =============================================================================
// Group Accessors
// =============================================================================

// Group returns a copy of the group with the given ID.
func (m *Manager) Group(id string) (graph.TableGroup, bool) {
	g, ok := m.groups[id]
	if !ok {
		return graph.TableGroup{}, false
	}
	return copyGroup(g), true
}

// Groups returns copies of all groups in creation order.
func (m *Manager) Groups() []graph.TableGroup {
	out := make([]graph.TableGroup, 0, len(m.groupOrder))
	for _, id := range m.groupOrder {
		out = append(out, copyGroup(m.groups[id]))
	}
	return out
}

// UpdateGroup applies fn to the stored group. The ID cannot be changed. It
// reports whether the group exists.
func (m *Manager) UpdateGroup(id string, fn func(*graph.TableGroup)) bool {
	g, ok := m.groups[id]
	if !ok {
		return false
	}
	fn(g)
	g.ID = id
	return true
}

// DeleteGroup removes a group and reports whether it existed. Its members
// are not reassigned.
func (m *Manager) DeleteGroup(id string) bool {
	if _, ok := m.groups[id]; !ok {
		return false
	}
	delete(m.groups, id)
	m.groupOrder = slices.DeleteFunc(m.groupOrder, func(s string) bool { return s == id })
	return true
}

// ToggleGroupCollapse flips the collapsed flag of a group and returns the new
// value. ok is false when the group does not exist.
func (m *Manager) ToggleGroupCollapse(id string) (collapsed, ok bool) {
	g, ok := m.groups[id]
	if !ok {
		return false, false
	}
	g.Collapsed = !g.Collapsed
	return g.Collapsed, true
}

func copyGroup(g *graph.TableGroup) graph.TableGroup {
	c := *g
	c.NodeIDs = slices.Clone(g.NodeIDs)
	return c
}
