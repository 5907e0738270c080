package boundsx

// SetGroupActiveID records which member of group takes part in the next
// transition.
func (e *Engine) SetGroupActiveID(group, id string) {
	if group == "" {
		return
	}
	e.commit(func(cur *registry) (*registry, []Change) {
		if prev, ok := cur.groups[group]; ok && prev == id {
			return nil, nil
		}
		next := cur.clone()
		next.groups[group] = id
		return next, []Change{{Kind: ChangeGroupActive, Tag: GroupTag(group, id), Detail: group}}
	})
}

// GroupActiveID returns the active member id of group.
func (e *Engine) GroupActiveID(group string) (string, bool) {
	id, ok := e.load().groups[group]
	return id, ok
}
