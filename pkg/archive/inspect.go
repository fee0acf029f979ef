package archive

import (
	"context"
	"path"
	"strings"

	"github.com/matzehuels/fwmeta/pkg/errors"
)

// Kind classifies a node of an archive tree.
type Kind string

const (
	KindArchive Kind = "archive"
	KindBoot    Kind = "boot"
	KindFile    Kind = "file"
)

// Node is one member of an archive tree. Archive nodes have children.
type Node struct {
	Name     string
	Kind     Kind
	Size     int64
	Depth    int
	Children []*Node
}

// Inspect builds the nesting tree of r using the walker's boot file and
// nested extension rules. Directory markers are omitted.
func (w *Walker) Inspect(ctx context.Context, r *Reader, name string) (*Node, error) {
	return w.inspect(ctx, r, name, 0)
}

func (w *Walker) inspect(ctx context.Context, r *Reader, name string, depth int) (*Node, error) {
	root := &Node{Name: name, Kind: KindArchive, Depth: depth}
	for e := range r.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsFile {
			continue
		}

		nested := w.isNested(e.Name)
		boot := strings.EqualFold(e.Name, w.BootFile)
		if nested {
			child, err := w.inspectNested(ctx, r, e, depth)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, child)
		}
		// An entry can be a nested archive and the boot file at once; Walk
		// descends into it and yields it, so the tree shows both nodes.
		switch {
		case boot:
			root.Children = append(root.Children, &Node{Name: e.Name, Kind: KindBoot, Size: e.Size, Depth: depth + 1})
		case !nested:
			root.Children = append(root.Children, &Node{Name: e.Name, Kind: KindFile, Size: e.Size, Depth: depth + 1})
		}
	}
	return root, nil
}

func (w *Walker) inspectNested(ctx context.Context, r *Reader, e Entry, depth int) (*Node, error) {
	data, err := r.ReadAll(e)
	if err != nil {
		return nil, err
	}
	nested, err := OpenBytes(data, path.Base(e.Name))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedArchive, err, "nested archive %s in %s", e.Name, r.Name())
	}
	defer nested.Close()

	child, err := w.inspect(ctx, nested, nested.Name(), depth+1)
	if err != nil {
		return nil, err
	}
	child.Size = e.Size
	return child, nil
}

// Count returns how many nodes of kind k the tree contains.
func (n *Node) Count(k Kind) int {
	c := 0
	if n.Kind == k {
		c++
	}
	for _, child := range n.Children {
		c += child.Count(k)
	}
	return c
}
