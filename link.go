package boundsx

// SetLinkSource starts a transition attempt for tag from screen. When the
// newest link is still pending and its source is in the same screen family,
// that source is overwritten in place so repeated measurement does not grow
// the stack.
func (e *Engine) SetLinkSource(tag TagID, screen ScreenIdentifier, bounds Bounds, styles Styles) {
	if tag == "" || screen.ScreenKey == "" {
		return
	}
	src := newEndpoint(screen, bounds, styles)
	limit := e.cfg.HistoryLimit
	e.commit(func(cur *registry) (*registry, []Change) {
		next := cur.clone()
		ts := cur.tag(tag).clone()
		if n := len(ts.links); n > 0 {
			newest := ts.links[n-1]
			if newest.Pending() && newest.Source.Screen.SameFamily(screen) {
				newest.Source = src
				ts.links[n-1] = newest
				next.withTag(tag, ts)
				return next, []Change{{Kind: ChangeLinkCoalesced, Tag: tag, Screen: screen.ScreenKey, LinkID: newest.ID}}
			}
		}
		link := TagLink{ID: e.newID(), Source: src}
		ts.links = append(ts.links, link)
		changes := []Change{{Kind: ChangeLinkPushed, Tag: tag, Screen: screen.ScreenKey, LinkID: link.ID}}
		if over := len(ts.links) - limit; over > 0 {
			for _, dropped := range ts.links[:over] {
				changes = append(changes, Change{Kind: ChangeLinkTrimmed, Tag: tag, LinkID: dropped.ID})
			}
			ts.links = append([]TagLink(nil), ts.links[over:]...)
		}
		next.withTag(tag, ts)
		return next, changes
	})
}

// SetLinkDestination completes the newest pending link for tag. When
// expectedSource is not empty only a pending link whose source matches it
// qualifies. It reports false, without error, when no pending link qualifies.
func (e *Engine) SetLinkDestination(tag TagID, screen ScreenIdentifier, bounds Bounds, styles Styles, expectedSource ScreenKey) bool {
	if tag == "" || screen.ScreenKey == "" {
		return false
	}
	dst := newEndpoint(screen, bounds, styles)
	return e.commit(func(cur *registry) (*registry, []Change) {
		i := cur.tag(tag).newestLink(func(l TagLink) bool {
			return l.Pending() && (expectedSource == "" || l.Source.Screen.Matches(expectedSource))
		})
		if i < 0 {
			return nil, []Change{{Kind: ChangeStaleDestination, Tag: tag, Screen: screen.ScreenKey, Detail: string(expectedSource)}}
		}
		next := cur.clone()
		ts := cur.tag(tag).clone()
		link := ts.links[i]
		link.Destination = &dst
		ts.links[i] = link
		next.withTag(tag, ts)
		return next, []Change{{Kind: ChangeLinkCompleted, Tag: tag, Screen: screen.ScreenKey, LinkID: link.ID}}
	})
}

// UpdateLinkSource refreshes the source bounds of the newest complete link
// whose source matches key, or else of the newest pending one. It never
// creates a link.
func (e *Engine) UpdateLinkSource(tag TagID, key ScreenKey, bounds Bounds, styles Styles) bool {
	if tag == "" || key == "" {
		return false
	}
	return e.commit(func(cur *registry) (*registry, []Change) {
		t := cur.tag(tag)
		i := t.newestLink(func(l TagLink) bool { return l.Complete() && l.Source.Screen.Matches(key) })
		if i < 0 {
			i = t.newestLink(func(l TagLink) bool { return l.Pending() && l.Source.Screen.Matches(key) })
		}
		if i < 0 {
			return nil, nil
		}
		next := cur.clone()
		ts := t.clone()
		link := ts.links[i]
		link.Source = newEndpoint(link.Source.Screen, bounds, styles)
		ts.links[i] = link
		next.withTag(tag, ts)
		return next, []Change{{Kind: ChangeLinkSourceUpdated, Tag: tag, Screen: key, LinkID: link.ID}}
	})
}

// UpdateLinkDestination refreshes the destination of the newest complete link
// whose destination matches screen. Without one it falls back to the newest
// pending link that originates outside screen's family and fills its
// destination. It never creates a link.
func (e *Engine) UpdateLinkDestination(tag TagID, screen ScreenIdentifier, bounds Bounds, styles Styles) bool {
	if tag == "" || screen.ScreenKey == "" {
		return false
	}
	return e.commit(func(cur *registry) (*registry, []Change) {
		t := cur.tag(tag)
		i := t.newestLink(func(l TagLink) bool { return l.Complete() && l.Destination.Screen.Matches(screen.ScreenKey) })
		if i < 0 {
			i = t.newestLink(func(l TagLink) bool { return l.Pending() && !l.Source.Screen.SameFamily(screen) })
		}
		if i < 0 {
			return nil, nil
		}
		next := cur.clone()
		ts := t.clone()
		link := ts.links[i]
		dstScreen := screen
		if link.Destination != nil {
			dstScreen = link.Destination.Screen
		}
		dst := newEndpoint(dstScreen, bounds, styles)
		link.Destination = &dst
		ts.links[i] = link
		next.withTag(tag, ts)
		return next, []Change{{Kind: ChangeLinkDestUpdated, Tag: tag, Screen: screen.ScreenKey, LinkID: link.ID}}
	})
}

// ActiveLink returns the newest link for tag when key is empty. Otherwise it
// returns the newest complete link whose destination matches key, or else the
// newest complete link whose source matches key. A screen that was both
// entered and left therefore reports the link that arrived at it. The result
// is a copy.
func (e *Engine) ActiveLink(tag TagID, key ScreenKey) (TagLink, bool) {
	t := e.load().tag(tag)
	if t == nil || len(t.links) == 0 {
		return TagLink{}, false
	}
	if key == "" {
		return t.links[len(t.links)-1].clone(), true
	}
	if i := t.newestLink(func(l TagLink) bool { return l.Complete() && l.Destination.Screen.Matches(key) }); i >= 0 {
		return t.links[i].clone(), true
	}
	if i := t.newestLink(func(l TagLink) bool { return l.Complete() && l.Source.Screen.Matches(key) }); i >= 0 {
		return t.links[i].clone(), true
	}
	return TagLink{}, false
}

// Links returns a copy of the link history of tag, oldest first.
func (e *Engine) Links(tag TagID) []TagLink {
	t := e.load().tag(tag)
	if t == nil {
		return nil
	}
	return cloneLinks(t.links)
}

func cloneLinks(links []TagLink) []TagLink {
	if links == nil {
		return nil
	}
	out := make([]TagLink, len(links))
	for i, l := range links {
		out[i] = l.clone()
	}
	return out
}

// HasPendingLink reports whether tag has any pending link.
func (e *Engine) HasPendingLink(tag TagID) bool {
	return e.load().tag(tag).newestLink(TagLink.Pending) >= 0
}

// HasPendingLinkFromSource reports whether tag has a pending link whose
// source matches key.
func (e *Engine) HasPendingLinkFromSource(tag TagID, key ScreenKey) bool {
	return e.load().tag(tag).newestLink(func(l TagLink) bool {
		return l.Pending() && l.Source.Screen.Matches(key)
	}) >= 0
}

// LatestPendingSourceScreenKey returns the source screen key of the newest
// pending link of tag.
func (e *Engine) LatestPendingSourceScreenKey(tag TagID) (ScreenKey, bool) {
	t := e.load().tag(tag)
	i := t.newestLink(TagLink.Pending)
	if i < 0 {
		return "", false
	}
	return t.links[i].Source.Screen.ScreenKey, true
}

// HasSourceLink reports whether any link of tag has a source matching key.
func (e *Engine) HasSourceLink(tag TagID, key ScreenKey) bool {
	return e.load().tag(tag).newestLink(func(l TagLink) bool {
		return l.Source.Screen.Matches(key)
	}) >= 0
}

// HasDestinationLink reports whether any link of tag has a destination matching key.
func (e *Engine) HasDestinationLink(tag TagID, key ScreenKey) bool {
	return e.load().tag(tag).newestLink(func(l TagLink) bool {
		return l.Complete() && l.Destination.Screen.Matches(key)
	}) >= 0
}

// newestLink scans newest to oldest and returns the index of the first link
// accepted by match, or -1.
func (t *tagState) newestLink(match func(TagLink) bool) int {
	if t == nil {
		return -1
	}
	for i := len(t.links) - 1; i >= 0; i-- {
		if match(t.links[i]) {
			return i
		}
	}
	return -1
}
