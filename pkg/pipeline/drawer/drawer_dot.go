package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-pisa/internal/store"
	"github.com/askiada/go-pisa/pkg/pipeline/measure"
)

// DOTDrawer writes the stage chain in the DOT language. Stages are listed in
// the order they were added.
type DOTDrawer struct {
	store      *store.OrderedStore[string, string]
	graph      graph.Graph[string, string]
	fileName   string
	attributes map[string]string
}

// DOTOption configures a DOTDrawer.
type DOTOption func(d *DOTDrawer)

// WithGraphAttribute sets a graph level attribute such as rankdir.
func WithGraphAttribute(key, value string) DOTOption {
	return func(d *DOTDrawer) {
		d.attributes[key] = value
	}
}

// NewDOTDrawer creates a drawer writing to fileName.
func NewDOTDrawer(fileName string, opts ...DOTOption) *DOTDrawer {
	s := store.NewOrderedStore[string, string]()
	d := &DOTDrawer{
		fileName:   fileName,
		store:      s,
		graph:      graph.NewWithStore(graph.StringHash, s, graph.Directed(), graph.Acyclic(), graph.PreventCycles()),
		attributes: make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// AddStage adds a stage to the graph.
func (d *DOTDrawer) AddStage(name string) error {
	err := d.graph.AddVertex(name)
	if err != nil {
		return errors.Wrapf(err, "unable to add stage %s", name)
	}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *DOTDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.fileName)
	}
	defer file.Close()

	err = d.Write(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.fileName)
	}

	return nil
}

// Write renders the graph to wrt.
func (d *DOTDrawer) Write(wrt io.Writer) error {
	desc, err := d.generateDOT()
	if err != nil {
		return errors.Wrap(err, "unable to describe graph")
	}

	return renderDOT(wrt, desc)
}

// SetRunDuration labels stageName with the duration of a whole run.
func (d *DOTDrawer) SetRunDuration(stageName string, runDuration time.Duration) error {
	err := d.store.UpdateVertex(stageName, graph.VertexAttribute("xlabel", "total: "+runDuration.String()))
	if err != nil {
		return errors.Wrapf(err, "unable to set run duration of %s", stageName)
	}

	return nil
}

const maxRGB = 240

// AddMeasure labels stages and links with their average durations and colours
// them from blue (fastest) to red (slowest).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	stageElapsed := []time.Duration{}
	linkElapsed := []time.Duration{}

	for _, metric := range msr.AllMetrics() {
		if avg := metric.AVGComputation(); avg != 0 {
			stageElapsed = append(stageElapsed, avg)
		}
		for _, h := range metric.AVGHandoffs() {
			if h.Elapsed != 0 {
				linkElapsed = append(linkElapsed, h.Elapsed)
			}
		}
	}

	stageColor := colorScale(stageElapsed)
	linkColor := colorScale(linkElapsed)

	for name, metric := range msr.AllMetrics() {
		if _, err := d.graph.Vertex(name); err != nil {
			continue
		}

		if avg := metric.AVGComputation(); avg != 0 {
			label := avg.String()
			if metric.RunDuration() > 0 {
				label += ", total: " + metric.RunDuration().String()
			}
			hex, err := stageColor(avg)
			if err != nil {
				return err
			}
			err = d.store.UpdateVertex(name,
				graph.VertexAttribute("xlabel", label),
				graph.VertexAttribute("color", hex),
			)
			if err != nil {
				return errors.Wrap(err, "unable to update vertex")
			}
		}

		for parent, h := range metric.AVGHandoffs() {
			if h.Elapsed == 0 {
				continue
			}
			hex, err := linkColor(h.Elapsed)
			if err != nil {
				return err
			}

			err = d.graph.UpdateEdge(parent, name,
				graph.EdgeAttribute("label", h.Elapsed.String()),
				graph.EdgeAttribute("fontcolor", "blue"),
				graph.EdgeAttribute("color", hex),
			)
			if err != nil {
				return errors.Wrap(err, "unable to update edge")
			}
		}
	}

	return nil
}

// colorScale maps a duration within values to a colour between blue and red.
func colorScale(values []time.Duration) func(time.Duration) (string, error) {
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return func(curr time.Duration) (string, error) {
		fraction := 1.0
		if n := len(values); n > 1 && values[n-1] > values[0] {
			fraction = float64(curr-values[0]) / float64(values[n-1]-values[0])
		}

		red := maxRGB * fraction
		blue := maxRGB - red

		c, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
		if err != nil {
			return "", errors.Wrap(err, "unable to get colour")
		}

		return c.ToHEX().String(), nil
	}
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func (d *DOTDrawer) generateDOT() (description, error) {
	desc := description{
		GraphType:    "digraph",
		Attributes:   d.attributes,
		EdgeOperator: "->",
		Statements:   make([]statement, 0),
	}

	vertices, err := d.store.ListVertices()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list vertices")
	}

	for _, vertex := range vertices {
		_, sourceProperties, err := d.graph.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		attributes := make(map[string]string, len(sourceProperties.Attributes))
		for k, v := range sourceProperties.Attributes {
			attributes[k] = v
		}

		if xlabel, ok := attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)

			delete(attributes, "xlabel")
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})
	}

	edges, err := d.store.ListEdges()
	if err != nil {
		return desc, errors.Wrap(err, "unable to list edges")
	}

	for _, edge := range edges {
		desc.Statements = append(desc.Statements, statement{
			Source:         edge.Source,
			Target:         edge.Target,
			EdgeWeight:     edge.Properties.Weight,
			EdgeAttributes: edge.Properties.Attributes,
		})
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "unable to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)
