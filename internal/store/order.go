package store

import (
	"fmt"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
)

// ApplyShortcutOrder returns a copy of list where every member of groupID
// takes order = its index in seq. seq must be a permutation of the current
// members of the group; shortcuts of other groups are untouched.
func ApplyShortcutOrder(list []model.Shortcut, groupID string, seq []string) ([]model.Shortcut, error) {
	members := make(map[string]int)
	for i, s := range list {
		if s.GroupID == groupID {
			members[s.ID] = i
		}
	}
	if err := checkPermutation("group "+groupID, members, seq); err != nil {
		return nil, err
	}

	out := model.CloneShortcuts(list)
	for order, id := range seq {
		out[members[id]].Order = order
	}
	return out, nil
}

// ApplyGroupOrder returns a copy of groups where every group takes
// order = its index in seq. seq must be a permutation of all group ids.
func ApplyGroupOrder(groups []model.Group, seq []string) ([]model.Group, error) {
	index := make(map[string]int, len(groups))
	for i, g := range groups {
		index[g.ID] = i
	}
	if err := checkPermutation("groups", index, seq); err != nil {
		return nil, err
	}

	out := model.CloneGroups(groups)
	for order, id := range seq {
		out[index[id]].Order = order
	}
	return out, nil
}

// compactShortcuts renumbers the members of groupID to 0..n-1 keeping
// their relative order.
func compactShortcuts(list []model.Shortcut, groupID string) {
	members := model.ShortcutsInGroup(list, groupID)
	rank := make(map[string]int, len(members))
	for i, s := range members {
		rank[s.ID] = i
	}
	for i := range list {
		if r, ok := rank[list[i].ID]; ok && list[i].GroupID == groupID {
			list[i].Order = r
		}
	}
}

// compactGroups renumbers all groups to 0..n-1 keeping their relative order.
func compactGroups(groups []model.Group) {
	sorted := model.CloneGroups(groups)
	model.SortGroups(sorted)
	rank := make(map[string]int, len(sorted))
	for i, g := range sorted {
		rank[g.ID] = i
	}
	for i := range groups {
		groups[i].Order = rank[groups[i].ID]
	}
}

func countInGroup(list []model.Shortcut, groupID string) int {
	n := 0
	for _, s := range list {
		if s.GroupID == groupID {
			n++
		}
	}
	return n
}

func checkPermutation(scope string, current map[string]int, seq []string) error {
	if len(seq) != len(current) {
		return errors.InvalidOrder(scope, fmt.Sprintf("expected %d ids, got %d", len(current), len(seq)))
	}
	seen := make(map[string]struct{}, len(seq))
	for _, id := range seq {
		if _, ok := current[id]; !ok {
			return errors.InvalidOrder(scope, fmt.Sprintf("unknown id %q", id))
		}
		if _, dup := seen[id]; dup {
			return errors.InvalidOrder(scope, fmt.Sprintf("duplicate id %q", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}
