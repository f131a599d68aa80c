package vdf

// Get descends from root one key at a time. It reports false the first
// time a key is absent or the current node is a leaf. An empty path
// returns root. Get never creates nodes.
func Get(root *Node, path ...string) (*Node, bool) {
	n := root
	for _, key := range path {
		if !n.IsObject() {
			return nil, false
		}
		n = n.Child(key)
		if n == nil {
			return nil, false
		}
	}
	return n, n != nil
}

// GetLeaf returns the value of the leaf at path.
func GetLeaf(root *Node, path ...string) (string, bool) {
	n, ok := Get(root, path...)
	if !ok || !n.IsLeaf() {
		return "", false
	}
	return n.Value(), true
}

// SetLeaf assigns value to the leaf at path.
//
// Every segment but the last must already exist and be an object;
// otherwise a *PathNotFoundError is returned and the tree is left
// unchanged. An existing leaf at the last segment is overwritten in
// place, a missing one is appended to the end of its parent. An object
// at the last segment is never replaced and yields a *DuplicateKeyError.
func SetLeaf(root *Node, path []string, value string) error {
	if len(path) == 0 {
		return &PathNotFoundError{}
	}

	parent := root
	for i, key := range path[:len(path)-1] {
		next := parent.Child(key)
		if !next.IsObject() {
			return &PathNotFoundError{Path: clonePath(path), Missing: i}
		}
		parent = next
	}
	if !parent.IsObject() {
		return &PathNotFoundError{Path: clonePath(path), Missing: 0}
	}

	last := path[len(path)-1]
	switch existing := parent.Child(last); {
	case existing == nil:
		return parent.Add(last, NewLeaf(value))
	case existing.IsObject():
		return &DuplicateKeyError{Key: last, Path: clonePath(path[:len(path)-1])}
	default:
		existing.SetValue(value)
		return nil
	}
}

func clonePath(path []string) []string {
	return append([]string(nil), path...)
}
