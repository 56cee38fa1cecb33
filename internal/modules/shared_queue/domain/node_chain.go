package domain

import (
	"fmt"
	"slices"
)

// QueueNode wraps a track together with the track that plays after it.
// Next is a derived cache of adjacency; the order of the chain's node slice
// is authoritative.
type QueueNode struct {
	Track Track
	Next  *Track
}

// NodeChain is the ordered sequence of queue nodes.
// The head of the chain is the current track.
type NodeChain struct {
	nodes   []QueueNode
	length  int    // cached len(nodes)
	current *Track // cached head track, nil when empty
}

// NewNodeChain builds a chain from tracks in order and derives all links.
func NewNodeChain(tracks ...Track) NodeChain {
	c := NodeChain{nodes: make([]QueueNode, 0, len(tracks))}
	for _, t := range tracks {
		c.nodes = append(c.nodes, QueueNode{Track: t.clone()})
	}
	c.relinkAll()
	c.sync()
	return c
}

// Len returns the cached number of nodes.
func (c *NodeChain) Len() int {
	return c.length
}

// IsEmpty returns true if the chain has no nodes.
func (c *NodeChain) IsEmpty() bool {
	return c.Len() == 0
}

// Current returns a copy of the head track, or nil if the chain is empty.
func (c *NodeChain) Current() *Track {
	if c.current == nil {
		return nil
	}
	t := c.current.clone()
	return &t
}

// IndexOf returns the index of the first node holding the track, or -1.
func (c *NodeChain) IndexOf(id TrackID) int {
	return slices.IndexFunc(c.nodes, func(n QueueNode) bool {
		return n.Track.ID == id
	})
}

// NextOf returns the track that plays after the given track, read from the
// adjacency cache. Returns nil when the track is last.
func (c *NodeChain) NextOf(id TrackID) (*Track, error) {
	index := c.IndexOf(id)
	if index < 0 {
		return nil, ErrTrackNotFound
	}
	next := c.nodes[index].Next
	if next == nil {
		return nil, nil
	}
	t := next.clone()
	return &t, nil
}

// Tracks returns a copy of the tracks in order.
func (c *NodeChain) Tracks() []Track {
	tracks := make([]Track, len(c.nodes))
	for i, n := range c.nodes {
		tracks[i] = n.Track.clone()
	}
	return tracks
}

// Nodes returns a copy of the nodes in order.
func (c *NodeChain) Nodes() []QueueNode {
	nodes := make([]QueueNode, len(c.nodes))
	for i, n := range c.nodes {
		nodes[i] = QueueNode{Track: n.Track.clone()}
		if n.Next != nil {
			next := n.Next.clone()
			nodes[i].Next = &next
		}
	}
	return nodes
}

// Append adds a track at the tail. The previous tail now links to it.
func (c *NodeChain) Append(track Track) {
	c.nodes = append(c.nodes, QueueNode{Track: track.clone()})
	c.link(len(c.nodes) - 2)
	c.sync()
}

// Remove removes the first node holding the track and returns its track.
// The head may only be removed when allowHead is set; otherwise
// ErrCurrentTrackPlaying is returned and the chain is left untouched.
func (c *NodeChain) Remove(id TrackID, allowHead bool) (Track, error) {
	index := c.IndexOf(id)
	if index < 0 {
		return Track{}, ErrTrackNotFound
	}

	removed := c.nodes[index].Track

	if index == 0 {
		if !allowHead {
			return Track{}, ErrCurrentTrackPlaying
		}
		c.nodes = slices.Delete(c.nodes, 0, 1)
	} else {
		// Middle or tail: the predecessor now links to the successor,
		// or to nothing when the tail was removed.
		c.nodes = slices.Delete(c.nodes, index, index+1)
		c.link(index - 1)
	}

	c.sync()
	return removed, nil
}

// Move relocates the track to newIndex, a position in the resulting sequence
// (0 <= newIndex < Len()). Every link is rebuilt afterwards.
func (c *NodeChain) Move(id TrackID, newIndex int) error {
	index := c.IndexOf(id)
	if index < 0 {
		return ErrTrackNotFound
	}
	if newIndex < 0 || newIndex >= len(c.nodes) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, newIndex, len(c.nodes)-1)
	}
	if index == newIndex {
		return nil
	}

	node := c.nodes[index]
	c.nodes = slices.Delete(c.nodes, index, index+1)
	c.nodes = slices.Insert(c.nodes, newIndex, node)

	c.relinkAll()
	c.sync()
	return nil
}

// Advance drops the head and returns it, or nil if the chain is empty.
func (c *NodeChain) Advance() *Track {
	if len(c.nodes) == 0 {
		return nil
	}
	head := c.nodes[0].Track
	c.nodes = slices.Delete(c.nodes, 0, 1)
	c.sync()
	return &head
}

// CheckLinks verifies the cached adjacency, length and head against the
// node order.
func (c *NodeChain) CheckLinks() error {
	if c.length != len(c.nodes) {
		return fmt.Errorf("cached length %d, actual %d", c.length, len(c.nodes))
	}
	for i, n := range c.nodes {
		if i == len(c.nodes)-1 {
			if n.Next != nil {
				return fmt.Errorf("tail %q links to %q", n.Track.ID, n.Next.ID)
			}
			continue
		}
		if n.Next == nil || n.Next.ID != c.nodes[i+1].Track.ID {
			return fmt.Errorf("node %d (%q) is not linked to %q", i, n.Track.ID, c.nodes[i+1].Track.ID)
		}
	}
	switch {
	case len(c.nodes) == 0 && c.current != nil:
		return fmt.Errorf("empty chain has current track %q", c.current.ID)
	case len(c.nodes) > 0 && (c.current == nil || c.current.ID != c.nodes[0].Track.ID):
		return fmt.Errorf("current track is not the head %q", c.nodes[0].Track.ID)
	}
	return nil
}

// link points node i at node i+1, or at nothing if i is the tail.
// Out-of-range indices are ignored.
func (c *NodeChain) link(i int) {
	if i < 0 || i >= len(c.nodes) {
		return
	}
	if i == len(c.nodes)-1 {
		c.nodes[i].Next = nil
		return
	}
	next := c.nodes[i+1].Track.clone()
	c.nodes[i].Next = &next
}

func (c *NodeChain) relinkAll() {
	for i := range c.nodes {
		c.link(i)
	}
}

// sync refreshes the cached length and current track.
func (c *NodeChain) sync() {
	c.length = len(c.nodes)
	if c.length == 0 {
		c.current = nil
		return
	}
	head := c.nodes[0].Track
	c.current = &head
}
