package thread

import "github.com/lens-forum/app/domain"

// MaxIndentDepth caps the indentation of rendered rows; deeper replies render at the cap
const MaxIndentDepth = 6

// NodeState is the per-reply expansion state. The zero value is fully collapsed.
type NodeState struct {
	ContextShown   bool
	ContextLoading bool
	ContextLoaded  bool
	Context        []domain.Reply

	ChildrenShown   bool
	ChildrenLoading bool
	ChildrenLoaded  bool
	Children        []domain.Reply

	// Stale is set when the reply list was invalidated while children were shown
	Stale bool

	contextSeq  uint64
	childrenSeq uint64
}

type FetchKind int

const (
	FetchContext FetchKind = iota
	FetchChildren
)

// Request describes a fetch the caller has to run and report back with Seq
type Request struct {
	Kind     FetchKind
	ReplyId  string
	ParentId string
	Seq      uint64
}

// Tree owns the expansion state of every reply on a page, keyed by reply id
type Tree struct {
	Thread string
	RootId string

	nodes map[string]*NodeState
	seq   uint64
}

func NewTree(thread, rootId string) *Tree {
	return &Tree{Thread: thread, RootId: rootId, nodes: make(map[string]*NodeState)}
}

// State returns a copy of the node's state
func (t *Tree) State(id string) NodeState {
	if n, ok := t.nodes[id]; ok {
		return *n
	}
	return NodeState{}
}

func (t *Tree) node(id string) *NodeState {
	n, ok := t.nodes[id]
	if !ok {
		n = &NodeState{}
		t.nodes[id] = n
	}
	return n
}

func (t *Tree) nextSeq() uint64 {
	t.seq++
	return t.seq
}

// ToggleContext flips the context chain of r. A fetch is requested only when
// the chain has to be resolved; presses while loading are ignored.
func (t *Tree) ToggleContext(r domain.Reply) (Request, bool) {
	if !r.HasContext(t.RootId) {
		return Request{}, false
	}
	n := t.node(r.Id)
	switch {
	case n.ContextLoading:
		return Request{}, false
	case n.ContextShown:
		n.ContextShown = false
		return Request{}, false
	case n.ContextLoaded:
		n.ContextShown = true
		return Request{}, false
	}

	n.ContextLoading = true
	n.contextSeq = t.nextSeq()
	return Request{Kind: FetchContext, ReplyId: r.Id, ParentId: r.ParentReplyId, Seq: n.contextSeq}, true
}

// ContextLoaded stores a resolved chain and shows it
func (t *Tree) ContextLoaded(id string, seq uint64, chain []domain.Reply) {
	n, ok := t.nodes[id]
	if !ok || n.contextSeq != seq {
		return
	}
	n.ContextLoading = false
	n.ContextLoaded = true
	n.ContextShown = true
	n.Context = chain
}

// ContextFailed collapses the node back to "not loaded"
func (t *Tree) ContextFailed(id string, seq uint64) {
	n, ok := t.nodes[id]
	if !ok || n.contextSeq != seq {
		return
	}
	n.ContextLoading = false
	n.ContextLoaded = false
	n.ContextShown = false
	n.Context = nil
}

// ToggleChildren flips the direct children of id. Cached children are shown
// again without a fetch.
func (t *Tree) ToggleChildren(id string) (Request, bool) {
	n := t.node(id)
	switch {
	case n.ChildrenLoading:
		return Request{}, false
	case n.ChildrenShown:
		n.ChildrenShown = false
		return Request{}, false
	case n.ChildrenLoaded:
		n.ChildrenShown = true
		return Request{}, false
	}

	return t.requestChildren(id, n), true
}

func (t *Tree) requestChildren(id string, n *NodeState) Request {
	n.ChildrenLoading = true
	n.childrenSeq = t.nextSeq()
	return Request{Kind: FetchChildren, ReplyId: id, Seq: n.childrenSeq}
}

func (t *Tree) ChildrenLoaded(id string, seq uint64, children []domain.Reply) {
	n, ok := t.nodes[id]
	if !ok || n.childrenSeq != seq {
		return
	}
	n.ChildrenLoading = false
	n.ChildrenLoaded = true
	n.ChildrenShown = true
	n.Stale = false
	n.Children = children
}

// ChildrenFailed leaves the node collapsed and not loaded
func (t *Tree) ChildrenFailed(id string, seq uint64) {
	n, ok := t.nodes[id]
	if !ok || n.childrenSeq != seq {
		return
	}
	n.ChildrenLoading = false
	n.ChildrenLoaded = false
	n.ChildrenShown = false
	n.Stale = false
	n.Children = nil
}

// MarkStale is called after the reply list was invalidated. Context chains
// are dropped and re-resolved on the next show. Nodes with shown children
// keep them on screen, are marked stale and get a refetch request; hidden
// children are forgotten so the next show fetches them again.
func (t *Tree) MarkStale() []Request {
	var reqs []Request
	for id, n := range t.nodes {
		n.ContextShown = false
		n.ContextLoading = false
		n.ContextLoaded = false
		n.Context = nil
		n.contextSeq = 0

		if n.ChildrenShown || n.ChildrenLoading {
			n.Stale = n.ChildrenShown
			reqs = append(reqs, t.requestChildren(id, n))
			continue
		}
		n.ChildrenLoaded = false
		n.Children = nil
	}
	return reqs
}

// Reset forgets every node, used when the page changes. Results of fetches
// issued before the reset are dropped.
func (t *Tree) Reset() {
	t.nodes = make(map[string]*NodeState)
}

type RowKind int

const (
	RowReply RowKind = iota
	RowContext
)

// Row is one line of the flattened tree
type Row struct {
	Kind  RowKind
	Reply domain.Reply
	// Owner is the reply a context row belongs to
	Owner  string
	Depth  int
	Indent int
	State  NodeState
}

type frame struct {
	reply domain.Reply
	depth int
}

// Rows flattens the first-level replies and everything expanded below them.
// The walk uses an explicit stack so the depth of a thread never grows the
// call stack, and a reply that shows up twice is only rendered once.
func (t *Tree) Rows(top []domain.Reply) []Row {
	var rows []Row
	seen := make(map[string]bool)

	stack := make([]frame, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		stack = append(stack, frame{reply: top[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[f.reply.Id] {
			continue
		}
		seen[f.reply.Id] = true

		state := t.State(f.reply.Id)
		indent := min(f.depth, MaxIndentDepth)

		if state.ContextShown {
			for _, anc := range state.Context {
				rows = append(rows, Row{
					Kind:   RowContext,
					Reply:  anc,
					Owner:  f.reply.Id,
					Depth:  f.depth,
					Indent: indent,
				})
			}
		}

		rows = append(rows, Row{
			Kind:   RowReply,
			Reply:  f.reply,
			Owner:  f.reply.Id,
			Depth:  f.depth,
			Indent: indent,
			State:  state,
		})

		if state.ChildrenShown {
			for i := len(state.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{reply: state.Children[i], depth: f.depth + 1})
			}
		}
	}
	return rows
}
