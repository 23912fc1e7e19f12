// Package export renders ontologies and round histories into
// boundary-facing interchange formats: GraphML for graph tooling and
// CSV for score-history diagnostics.
package export

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

const graphmlNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	ID     string        `xml:"id,attr"`
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ToGraphML renders the ontology as a GraphML document with one node
// per entity and one edge per relationship. The output always begins
// with an XML declaration.
func ToGraphML(o *models.Ontology) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("ontology is required")
	}

	doc := graphmlDoc{
		XMLNS: graphmlNamespace,
		Keys: []graphmlKey{
			{ID: "type", For: "node", AttrName: "type", AttrType: "string"},
			{ID: "text", For: "node", AttrName: "text", AttrType: "string"},
			{ID: "confidence", For: "node", AttrName: "confidence", AttrType: "double"},
			{ID: "reltype", For: "edge", AttrName: "type", AttrType: "string"},
			{ID: "relconfidence", For: "edge", AttrName: "confidence", AttrType: "double"},
		},
		Graph: graphmlGraph{
			ID:          graphID(o),
			EdgeDefault: "directed",
			Nodes:       make([]graphmlNode, 0, len(o.Entities)),
			Edges:       make([]graphmlEdge, 0, len(o.Relationships)),
		},
	}

	for _, entity := range o.Entities {
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: entity.ID,
			Data: []graphmlData{
				{Key: "type", Value: entity.Type},
				{Key: "text", Value: entity.Text},
				{Key: "confidence", Value: fmt.Sprintf("%g", entity.Confidence)},
			},
		})
	}
	for _, rel := range o.Relationships {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			ID:     rel.ID,
			Source: rel.SourceID,
			Target: rel.TargetID,
			Data: []graphmlData{
				{Key: "reltype", Value: rel.Type},
				{Key: "relconfidence", Value: fmt.Sprintf("%g", rel.Confidence)},
			},
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphml: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func graphID(o *models.Ontology) string {
	if o.Domain != "" {
		return o.Domain
	}
	return "ontology"
}
