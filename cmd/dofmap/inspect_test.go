package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputParametersParse(t *testing.T) {
	data := []byte(`
Title: "Interval P2"
Mesh: interval
Cells: 4
Element: P2
VectorWidth: 2
Subdomains: ["on_boundary", "2"]
Method: topological
`)
	ip := &InputParameters{Cells: 1, VectorWidth: 1, Method: "topological"}
	require.NoError(t, ip.Parse(data))
	assert.Equal(t, "Interval P2", ip.Title)
	assert.Equal(t, 4, ip.Cells)
	assert.Equal(t, "P2", ip.Element)
	assert.Equal(t, 2, ip.VectorWidth)
	assert.Equal(t, []string{"on_boundary", "2"}, ip.Subdomains)
}

func TestInspectEndToEnd(t *testing.T) {
	ip := &InputParameters{
		Mesh:        "interval",
		Cells:       3,
		Element:     "P1",
		VectorWidth: 1,
		Method:      "topological",
		Subdomains:  []string{"on_boundary"},
	}
	require.NoError(t, inspect(ip))

	ext := &InputParameters{
		Mesh:        "interval",
		Cells:       2,
		Element:     "QuadP1",
		Layers:      3,
		VectorWidth: 1,
		Method:      "topological",
		Subdomains:  []string{"top", "bottom", "1"},
	}
	require.NoError(t, inspect(ext))

	bad := &InputParameters{Mesh: "moebius", Cells: 1}
	assert.Error(t, inspect(bad))
}
