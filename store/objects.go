package store

// Object index node types.
const (
	NodeTypeUseCase  = "usecase"
	NodeTypeScenario = "scenario"
	NodeTypeStep     = "step"
)

// ObjectTreeNode is a node of an object index. The root is the indexed
// object, its children are use cases, their children scenarios and their
// children steps. Step nodes are named with a packed step id.
type ObjectTreeNode struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// Labels is nil when no labels are attached to the node.
	Labels   []string         `json:"labels,omitempty"`
	Children []ObjectTreeNode `json:"children,omitempty"`
}

// BuildPageIndexes derives the object index of every page of a build.
// The resulting trees keep use cases, scenarios and steps in storage
// order.
func BuildPageIndexes(b *Build) map[string]ObjectTreeNode {
	idx := map[string]ObjectTreeNode{}
	order := []string{}

	for _, uc := range b.UseCases {
		for _, sc := range uc.Scenarios {
			occ := map[string]int{}
			prev := ""

			for i, st := range sc.Steps {
				if i == 0 || st.Page != prev {
					occ[st.Page]++
					prev = st.Page
				}

				if _, ok := idx[st.Page]; !ok {
					idx[st.Page] = ObjectTreeNode{Name: st.Page, Type: ObjectTypePage}
					order = append(order, st.Page)
				}

				root := idx[st.Page]
				ucnode := lastChild(&root, uc.Name, NodeTypeUseCase, uc.Labels)
				scnode := lastChild(ucnode, sc.Name, NodeTypeScenario, sc.Labels)

				// occ counts this occurrence already, hence the -1.
				scnode.Children = append(scnode.Children, ObjectTreeNode{
					Name:   PackStepID(st.Page, occ[st.Page]-1, stepInPage(sc.Steps, i)),
					Type:   NodeTypeStep,
					Labels: st.Labels,
				})

				idx[st.Page] = root
			}
		}
	}

	logger.WithField("pages", len(order)).Debug("built page indexes")

	return idx
}

// lastChild returns the last child of n if it has the given name and
// type, and appends a new one otherwise.
func lastChild(n *ObjectTreeNode, name, typ string, labels []string) *ObjectTreeNode {
	if k := len(n.Children); k > 0 && n.Children[k-1].Name == name && n.Children[k-1].Type == typ {
		return &n.Children[k-1]
	}

	n.Children = append(n.Children, ObjectTreeNode{
		Name:   name,
		Type:   typ,
		Labels: labels,
	})

	return &n.Children[len(n.Children)-1]
}

// stepInPage counts the steps on the same page directly before step i.
func stepInPage(steps []Step, i int) int {
	n := 0
	for j := i - 1; j >= 0 && steps[j].Page == steps[i].Page; j-- {
		n++
	}

	return n
}
