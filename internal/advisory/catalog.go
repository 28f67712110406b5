package advisory

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v2"
)

//go:embed trees.yaml
var defaultTrees []byte

// ErrUnknownTree is returned by Catalog.Tree for a name that is not loaded.
var ErrUnknownTree = errors.New("unknown decision tree")

// Tree is a named, static decision tree.
type Tree struct {
	Name  string
	Title string
	Root  *Node
}

// Catalog holds the decision trees available to the advisory UI. It is never mutated after loading.
type Catalog struct {
	trees map[string]Tree
}

type treeDoc struct {
	Trees []struct {
		Name  string  `yaml:"name"`
		Title string  `yaml:"title"`
		Root  nodeDoc `yaml:"root"`
	} `yaml:"trees"`
}

type nodeDoc struct {
	Question string      `yaml:"question"`
	Answers  []answerDoc `yaml:"answers"`
}

type answerDoc struct {
	Option  string   `yaml:"option"`
	Next    *nodeDoc `yaml:"next"`
	Verdict *Verdict `yaml:"verdict"`
}

// LoadCatalog parses the decision trees shipped with the binary.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(defaultTrees)
}

// ParseCatalog parses and validates a YAML tree document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc treeDoc
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode decision trees: %w", err)
	}

	c := &Catalog{trees: make(map[string]Tree, len(doc.Trees))}
	for _, t := range doc.Trees {
		if t.Name == "" {
			return nil, fmt.Errorf("decision tree without name")
		}
		if _, dup := c.trees[t.Name]; dup {
			return nil, fmt.Errorf("duplicate decision tree %q", t.Name)
		}
		root, err := buildNode(t.Root)
		if err != nil {
			return nil, fmt.Errorf("tree %q: %w", t.Name, err)
		}
		c.trees[t.Name] = Tree{Name: t.Name, Title: t.Title, Root: root}
	}
	return c, nil
}

func buildNode(doc nodeDoc) (*Node, error) {
	if doc.Question == "" {
		return nil, fmt.Errorf("node without question")
	}
	if len(doc.Answers) == 0 {
		return nil, fmt.Errorf("question %q has no answers", doc.Question)
	}

	node := &Node{
		Question: doc.Question,
		Options:  make([]string, 0, len(doc.Answers)),
		Branches: make(map[string]Branch, len(doc.Answers)),
	}
	for _, a := range doc.Answers {
		if a.Option == "" || a.Option == Unanswered {
			return nil, fmt.Errorf("question %q has an invalid option %q", doc.Question, a.Option)
		}
		if _, dup := node.Branches[a.Option]; dup {
			return nil, fmt.Errorf("question %q repeats option %q", doc.Question, a.Option)
		}
		if (a.Next == nil) == (a.Verdict == nil) {
			return nil, fmt.Errorf("option %q of %q must have exactly one of next or verdict", a.Option, doc.Question)
		}

		var branch Branch
		if a.Verdict != nil {
			branch.Verdict = a.Verdict
		} else {
			next, err := buildNode(*a.Next)
			if err != nil {
				return nil, err
			}
			branch.Next = next
		}
		node.Options = append(node.Options, a.Option)
		node.Branches[a.Option] = branch
	}
	return node, nil
}

// Tree returns the tree registered under name.
func (c *Catalog) Tree(name string) (Tree, error) {
	t, ok := c.trees[name]
	if !ok {
		return Tree{}, fmt.Errorf("%w: %s", ErrUnknownTree, name)
	}
	return t, nil
}

// Names returns the registered tree names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.trees))
	for name := range c.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
