package merge

import "reelctl/internal/reel"

// Scripts merges remote into local. For ids present on both sides the entry
// with the strictly later UpdatedAt wins whole; ties keep the local entry.
// Local order is kept, followed by remote-only entries in remote order.
func Scripts(local, remote []reel.Script) []reel.Script {
	remoteByID := make(map[string]reel.Script, len(remote))
	for _, s := range remote {
		if _, dup := remoteByID[s.ID]; !dup {
			remoteByID[s.ID] = s
		}
	}

	out := make([]reel.Script, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local)+len(remote))
	for _, s := range local {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		if r, ok := remoteByID[s.ID]; ok && r.UpdatedAt.After(s.UpdatedAt) {
			s = r
		}
		out = append(out, s)
	}
	for _, r := range remote {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// History merges remote into local by id. Local entries always win; remote-only
// entries are appended. The result is ordered newest first.
func History(local, remote []reel.HistoryItem) []reel.HistoryItem {
	out := make([]reel.HistoryItem, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local)+len(remote))
	for _, group := range [][]reel.HistoryItem{local, remote} {
		for _, item := range group {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			out = append(out, item)
		}
	}
	reel.SortHistory(out)
	return out
}

// ScriptsDiverge reports whether merged differs from remote in size or in id
// order, meaning the remote copy needs to be re-published.
func ScriptsDiverge(merged, remote []reel.Script) bool {
	if len(merged) != len(remote) {
		return true
	}
	for i := range merged {
		if merged[i].ID != remote[i].ID {
			return true
		}
	}
	return false
}

// HistoryDiverges reports whether merged history differs in size from remote.
func HistoryDiverges(merged, remote []reel.HistoryItem) bool {
	return len(merged) != len(remote)
}
