package render

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/feedback-insight-poc/server/internal/agent/model"
)

const FileKnowledgeMap = "knowledge_map.html"

// KnowledgeTreemap renders the hierarchical knowledge map. Leaf weight is the
// keyword count so bigger themes take more area.
func (r *Renderer) KnowledgeTreemap(root *model.KnowledgeNode) (string, error) {
	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Knowledge Map"}))
	tm.AddSeries("knowledge", []opts.TreeMapNode{toTreeMapNode(root)})
	return r.writeChart(FileKnowledgeMap, tm)
}

func toTreeMapNode(n *model.KnowledgeNode) opts.TreeMapNode {
	node := opts.TreeMapNode{Name: n.Name}
	weight := len(n.Keywords)
	for i := range n.Children {
		node.Children = append(node.Children, toTreeMapNode(&n.Children[i]))
	}
	if len(node.Children) == 0 {
		if weight == 0 {
			weight = 1
		}
		node.Value = weight
	}
	return node
}
