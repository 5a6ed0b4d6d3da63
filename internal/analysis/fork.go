package analysis

import "time"

// SessionHeader is the metadata one log declares about itself. ParentPath
// is set when the log was created by forking another log.
type SessionHeader struct {
	Path       string    `json:"path"`
	SessionID  string    `json:"sessionId"`
	ParentPath string    `json:"parentPath,omitempty"`
	ForkedAt   time.Time `json:"forkedAt,omitzero"`
}

// ForkRelationship relates two separate logs through an explicit fork
// declaration in the child's header.
type ForkRelationship struct {
	ParentPath     string    `json:"parentPath"`
	ChildPath      string    `json:"childPath"`
	ChildSessionID string    `json:"childSessionId"`
	Timestamp      time.Time `json:"timestamp,omitzero"`
}

// IsForkSession reports whether the header declares a parent log.
func IsForkSession(h SessionHeader) bool {
	return h.ParentPath != ""
}

// ForkFromHeader extracts the fork relationship a single header declares,
// if any.
func ForkFromHeader(h SessionHeader) (ForkRelationship, bool) {
	if !IsForkSession(h) {
		return ForkRelationship{}, false
	}
	return ForkRelationship{
		ParentPath:     h.ParentPath,
		ChildPath:      h.Path,
		ChildSessionID: h.SessionID,
		Timestamp:      h.ForkedAt,
	}, true
}

// FindForks collects every fork relationship declared across a set of
// session headers, in input order.
func FindForks(headers []SessionHeader) []ForkRelationship {
	var out []ForkRelationship
	for _, h := range headers {
		if f, ok := ForkFromHeader(h); ok {
			out = append(out, f)
		}
	}
	return out
}

// BuildForkTree maps each parent path to its child paths, preserving the
// order forks were supplied in.
func BuildForkTree(forks []ForkRelationship) map[string][]string {
	tree := make(map[string][]string)
	for _, f := range forks {
		tree[f.ParentPath] = append(tree[f.ParentPath], f.ChildPath)
	}
	return tree
}

// ForkChain follows child-to-parent links from path up to the fork root
// and returns the chain in root-to-target order. A path with no fork
// ancestry yields just itself. Cyclic data stops at the first repeat
// instead of looping.
func ForkChain(path string, forks []ForkRelationship) []string {
	parentOf := make(map[string]string, len(forks))
	for _, f := range forks {
		parentOf[f.ChildPath] = f.ParentPath
	}

	chain := []string{path}
	visited := map[string]bool{path: true}
	for {
		parent, ok := parentOf[chain[len(chain)-1]]
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		chain = append(chain, parent)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ForkDescendants walks the fork tree breadth-first from path and returns
// every transitive child, nearest first. The starting path itself is not
// included.
func ForkDescendants(path string, forks []ForkRelationship) []string {
	tree := BuildForkTree(forks)
	var out []string
	visited := map[string]bool{path: true}
	queue := []string{path}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range tree[cur] {
			if visited[child] {
				continue
			}
			visited[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}
