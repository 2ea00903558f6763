package forest

import (
	"fmt"

	tp "github.com/xlab/treeprint"
)

// String renders the forest as an indented tree, one line per node.
func (f *Forest[T]) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var zero T
	p := tp.New()
	p.SetValue(fmt.Sprintf("Forest(%d)", len(f.order)))
	for _, root := range f.children[zero] {
		f.ppt(p, root)
	}
	return p.String()
}

func (f *Forest[T]) ppt(p tp.Tree, node T) {
	children := f.children[node]
	if len(children) == 0 {
		p.AddNode(fmt.Sprint(node))
		return
	}
	branch := p.AddBranch(fmt.Sprint(node))
	for _, ch := range children {
		f.ppt(branch, ch)
	}
}
