/*
Package trimesh converts raster images into colored triangle meshes whose
point density follows the saliency of the image.

The pipeline builds an importance field from directional gradient filters,
samples it with error diffusion, optionally thins the samples through quadric
mesh decimation and snaps them onto traced color band curves, then computes
the Delaunay triangulation of the final point set and colors every triangle
with the mean of the pixels it covers.

The package provides a command line utility supporting various customization
options. Check the supported commands by typing:

	$ trimesh --help

Using Go interfaces the result can be drawn either as raster or vector image.

Example to generate a triangulated image and output the result as SVG:

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/esimov/trimesh"
	)

	func main() {
		p := trimesh.DefaultProcessor()
		p.Mode = trimesh.Decimated

		res, err := p.Run(context.Background(), srcImg)
		if err != nil {
			log.Fatalf("Error on triangulation process: %v", err)
		}
		svg := &trimesh.SVG{Title: "Delaunay image triangulator"}
		if err := svg.Draw(os.Stdout, res); err != nil {
			log.Fatal(err)
		}
	}

The individual stages are exported as well, for callers that want to run
them one by one:

	field, _ := trimesh.BuildImportance(img, 1)
	points, _ := trimesh.Sample(field, 1)
	triangles, _ := trimesh.Triangulate(img, points)
*/
package trimesh
