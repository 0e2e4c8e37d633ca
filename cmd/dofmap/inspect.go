package main

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/notargets/dofmap/element"
	"github.com/notargets/dofmap/indexset"
	"github.com/notargets/dofmap/mesh"
	"github.com/notargets/dofmap/spacedata"
)

// InputParameters describes one inspection problem.
type InputParameters struct {
	Title       string   `yaml:"Title"`
	Mesh        string   `yaml:"Mesh"` // interval | triangle_strip
	Cells       int      `yaml:"Cells"`
	Element     string   `yaml:"Element"` // P1 | P2 | DG1 | QuadP1
	Layers      int      `yaml:"Layers"`  // vertex layers; 0 for a flat mesh
	VectorWidth int      `yaml:"VectorWidth"`
	Subdomains  []string `yaml:"Subdomains"`
	Method      string   `yaml:"Method"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t= Mesh (%d cells)\n", ip.Mesh, ip.Cells)
	fmt.Printf("[%s]\t= Element\n", ip.Element)
	if ip.Layers > 0 {
		fmt.Printf("[%d]\t= Vertex layers\n", ip.Layers)
	}
	if ip.VectorWidth > 1 {
		fmt.Printf("[%d]\t= Vector width\n", ip.VectorWidth)
	}
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build and print the shared dof layout for a problem file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := cmd.Flags().GetString("file")
		if err != nil {
			return err
		}
		if len(file) == 0 {
			return fmt.Errorf("must supply a problem file (-f, --file) in yaml format")
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		ip := &InputParameters{Cells: 1, VectorWidth: 1, Method: "topological"}
		if err := ip.Parse(data); err != nil {
			return err
		}
		ip.Print()
		return inspect(ip)
	},
}

func init() {
	inspectCmd.Flags().StringP("file", "f", "", "problem description in yaml format")
}

func buildMesh(ip *InputParameters) (mesh.Topology, error) {
	var base *mesh.InMemory
	var err error
	switch ip.Mesh {
	case "interval", "":
		base, err = mesh.NewInterval(indexset.SelfComm{}, ip.Cells)
	case "triangle_strip":
		base, err = mesh.NewTriangleStrip(indexset.SelfComm{}, ip.Cells)
	default:
		return nil, fmt.Errorf("unknown mesh kind %q", ip.Mesh)
	}
	if err != nil {
		return nil, err
	}
	if ip.Layers > 0 {
		return mesh.NewExtruded(base, ip.Layers)
	}
	return base, nil
}

func buildElement(ip *InputParameters) (*element.Layout, error) {
	var el *element.Layout
	switch {
	case ip.Mesh == "triangle_strip" && ip.Element == "P1":
		el = element.TriangleP1()
	case ip.Mesh == "triangle_strip" && ip.Element == "P2":
		el = element.TriangleP2()
	case ip.Element == "P1" || ip.Element == "":
		el = element.IntervalP1()
	case ip.Element == "P2":
		el = element.IntervalP2()
	case ip.Element == "DG1":
		el = element.IntervalDG1()
	case ip.Element == "QuadP1":
		el = element.ExtrudedQuadP1()
	default:
		return nil, fmt.Errorf("unknown element %q on mesh %q", ip.Element, ip.Mesh)
	}
	if ip.VectorWidth > 1 {
		return element.Vector(el, ip.VectorWidth)
	}
	return el, nil
}

func inspect(ip *InputParameters) error {
	m, err := buildMesh(ip)
	if err != nil {
		return err
	}
	el, err := buildElement(ip)
	if err != nil {
		return err
	}
	V, err := spacedata.NewSpace(m, el, "V")
	if err != nil {
		return err
	}
	d := V.Data()

	fmt.Printf("\nLayout key: %s\n", d.Key())
	fmt.Printf("Nodes: %d total", d.NodeSet.TotalSize())
	fmt.Printf(" (%d core, %d owned)\n", d.NodeSet.CoreSize(), d.NodeSet.OwnedSize())

	cells := d.CellNodeList()
	cellMap, err := d.GetMap(V, m.CellSet(), cells.Arity, nil, "cell_node", d.Offsets, nil)
	if err != nil {
		return err
	}
	fmt.Printf("\nCell map %s (%d dofs per cell):\n", cellMap.Underlying().Name(), cellMap.Arity())
	for c := 0; c < len(cells.Values)/cells.Arity; c++ {
		fmt.Printf("  cell %d: %v\n", c, cells.Row(c))
	}
	if off := cellMap.OffsetIndex(); off != nil {
		fmt.Printf("Vertical dof offsets: %v\n", off)
	}

	for _, sub := range ip.Subdomains {
		nodes, err := V.BoundaryNodes(sub, ip.Method)
		if err != nil {
			return err
		}
		fmt.Printf("Boundary nodes [%s, %s]: %v\n", sub, ip.Method, nodes)
	}
	return nil
}
