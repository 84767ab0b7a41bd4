package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dennwc/gotrace"
	"github.com/esimov/trimesh"
	"github.com/esimov/trimesh/utils"
	"github.com/logrusorgru/aurora"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"gopkg.in/alecthomas/kingpin.v2"
)

const version = "1.0.0"

// Supported image files.
var extensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

type options struct {
	source, destination string
	mode                string
	vector              bool
	exportBands         string
	exportImportance    string
	exportDither        string
	bench               bool
	preview             bool
	verbose             bool
}

func main() {
	p, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	opts := &options{}
	app := newApp(p, opts)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	if opts.mode != "" {
		if p.Mode, err = trimesh.ParseMode(opts.mode); err != nil {
			app.Fatalf("%v", err)
		}
	}
	if opts.verbose {
		trimesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := p.Validate(); err != nil {
		app.Fatalf("%v", err)
	}

	toProcess, err := collectInputs(opts)
	if err != nil {
		log.Fatal(err)
	}

	var failed int
	for _, in := range sortedKeys(toProcess) {
		out := toProcess[in]
		if err := processFile(p, opts, in, out); err != nil {
			fmt.Fprintf(os.Stderr, "\n%s %s: %v\n", aurora.Red("Error converting image"), in, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// loadConfig reads the --config file, if any, before the remaining flags
// are parsed, so that explicit flags override the file.
func loadConfig(args []string) (*trimesh.Processor, error) {
	for i, arg := range args {
		var path string
		switch {
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case arg == "--config" && i+1 < len(args):
			path = args[i+1]
		default:
			continue
		}
		return trimesh.LoadConfig(path)
	}
	return trimesh.DefaultProcessor(), nil
}

// newApp binds every flag to the processor. No flag carries a default: an
// absent flag keeps the value of the config file or DefaultProcessor.
func newApp(p *trimesh.Processor, opts *options) *kingpin.Application {
	app := kingpin.New("trimesh", "Converts images into saliency sampled triangle meshes.")
	app.Version(version)
	app.HelpFlag.Short('h')

	app.Flag("in", "Source image, directory or URL").Short('i').Required().StringVar(&opts.source)
	app.Flag("out", "Destination file (.png or .svg) or directory").Short('o').Required().StringVar(&opts.destination)
	app.Flag("config", "YAML file with processing options").String()
	app.Flag("svg", "Write SVG files when the destination is a directory").BoolVar(&opts.vector)

	app.Flag("mode", "Pipeline mode: plain, decimated or unified").
		Short('m').
		EnumVar(&opts.mode, "plain", "decimated", "unified")
	app.Flag("gamma", "Importance map gamma").Short('g').Float64Var(&p.Gamma)
	app.Flag("sampling", "Error diffusion sampling factor").Short('s').Float64Var(&p.SamplingFactor)
	app.Flag("eps", "Curve unification radius in pixels").IntVar(&p.Eps)
	app.Flag("shrink", "Mesh decimation shrink factor").IntVar(&p.ShrinkFactor)
	app.Flag("bands", "Number of traced color bands").Short('k').IntVar(&p.Bands)
	app.Flag("stacked", "Stack the color bands before tracing").BoolVar(&p.StackedBands)
	app.Flag("traced", "Traced curve SVG document, one per band (repeatable)").ExistingFilesVar(&p.TracedFiles)
	app.Flag("seed", "Seed of the color quantization and augmentation").Int64Var(&p.Seed)
	app.Flag("border", "Number of points along each image edge").IntVar(&p.BorderPoints)
	app.Flag("augment", "Fraction of strong gradient pixels added as points").Float64Var(&p.AugmentFraction)
	app.Flag("augment-threshold", "Importance luminance of a strong gradient").Float64Var(&p.AugmentThreshold)
	app.Flag("blur", "Gaussian blur sigma applied before sampling").Float32Var(&p.BlurSigma)
	app.Flag("max-size", "Downscale images larger than this size").IntVar(&p.MaxSize)
	app.Flag("gray", "Color the triangles from the grayscale image").BoolVar(&p.Grayscale)
	app.Flag("wireframe", "Wireframe mode (0: without, 1: with, 2: only)").Short('w').IntVar(&p.Wireframe)
	app.Flag("width", "Wireframe line width").Float64Var(&p.LineWidth)
	app.Flag("stroke", "SVG stroke width").Float64Var(&p.StrokeWidth)
	app.Flag("solid", "Solid line color").BoolVar(&p.IsSolid)
	app.Flag("noise", "Film grain strength of raster output").IntVar(&p.Noise)

	app.Flag("export-bands", "Directory to export the color bands and their traces into").StringVar(&opts.exportBands)
	app.Flag("export-importance", "File to export the importance map into").StringVar(&opts.exportImportance)
	app.Flag("export-dither", "File to export the error diffused importance map into").StringVar(&opts.exportDither)
	app.Flag("bench", "Print the duration of every stage").BoolVar(&opts.bench)
	app.Flag("preview", "Show the generated image in the terminal").BoolVar(&opts.preview)
	app.Flag("verbose", "Log every stage").Short('v').BoolVar(&opts.verbose)
	return app
}

// collectInputs maps every source image to its destination.
func collectInputs(opts *options) (map[string]string, error) {
	toProcess := make(map[string]string)

	if utils.IsValidUrl(opts.source) {
		toProcess[opts.source] = opts.destination
		return toProcess, nil
	}

	fs, err := os.Stat(opts.source)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open source")
	}
	if !fs.IsDir() {
		toProcess[opts.source] = opts.destination
		return toProcess, nil
	}

	dst, err := os.Stat(opts.destination)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get dir stats")
	}
	if !dst.IsDir() {
		return nil, errors.New("please specify a directory as destination")
	}
	files, err := os.ReadDir(opts.source)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read dir")
	}
	ext := ".png"
	if opts.vector {
		ext = ".svg"
	}
	for _, f := range files {
		if f.IsDir() || !supported(f.Name()) {
			continue
		}
		name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		toProcess[filepath.Join(opts.source, f.Name())] = filepath.Join(opts.destination, name+ext)
	}
	return toProcess, nil
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func processFile(p *trimesh.Processor, opts *options, in, out string) error {
	var (
		file *os.File
		err  error
	)
	if utils.IsValidUrl(in) {
		file, err = utils.DownloadImage(in)
		if err != nil {
			return err
		}
		defer os.Remove(file.Name())
	} else {
		file, err = os.Open(in)
		if err != nil {
			return errors.Wrap(err, "unable to open source file")
		}
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return errors.Wrap(err, "unable to decode source image")
	}

	if opts.exportBands != "" {
		if err := exportBands(p, src, opts.exportBands); err != nil {
			return err
		}
	}

	s := utils.NewSpinner()
	s.Start(fmt.Sprintf("Triangulating %s...", filepath.Base(in)))
	start := time.Now()
	res, err := p.Run(context.Background(), src)
	s.Stop()
	if err != nil {
		return err
	}

	vector := strings.EqualFold(filepath.Ext(out), ".svg")
	fq, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "unable to create destination file")
	}
	if err := p.Drawer(vector).Draw(fq, res); err != nil {
		fq.Close()
		return err
	}
	if err := fq.Close(); err != nil {
		return errors.Wrap(err, "unable to write destination file")
	}

	if opts.exportImportance != "" {
		if err := writePNG(opts.exportImportance, res.Importance.Image()); err != nil {
			return err
		}
	}

	if opts.exportDither != "" {
		dithered, err := trimesh.Diffuse(res.Importance, p.SamplingFactor)
		if err != nil {
			return err
		}
		if err := writePNG(opts.exportDither, dithered.Image()); err != nil {
			return err
		}
	}

	fmt.Printf("\nGenerated in: %s\n", aurora.Green(utils.FormatTime(time.Since(start))))
	fmt.Printf("Total number of %s generated out of %s\n",
		aurora.Green(utils.Plural(len(res.Triangles), "triangle")),
		aurora.Green(utils.Plural(len(res.Points), "point")))
	if opts.bench {
		for _, st := range res.Stages {
			fmt.Printf("\t%-12s %8s  %s\n", st.Stage, utils.FormatTime(st.Duration), utils.Plural(st.Points, "point"))
		}
	}
	fmt.Printf("Saved as: %s %s\n\n", filepath.Base(out), aurora.Green("✓"))

	if opts.preview && !vector {
		if err := preview(out, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", aurora.Red("Unable to preview image"), err)
		}
	}
	return nil
}

// preview prints the image in terminals supporting the iTerm inline protocol.
func preview(path string, w io.Writer) error {
	return errors.Wrap(imgcat.CatFile(path, w), "preview")
}

// exportBands writes every quantized color band as BMP together with its
// traced curves as SVG. Stacked bands are also merged into multiscan.svg.
func exportBands(p *trimesh.Processor, src image.Image, dir string) error {
	img := p.Prepare(src)
	q := trimesh.Quantizer{K: p.Bands, Seed: p.Seed, Stacked: p.StackedBands}
	bands, palette, err := q.Bands(img)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "unable to create band directory")
	}
	tracer := p.Tracer
	if tracer == nil {
		tracer = trimesh.PotraceTracer{}
	}
	traced := make([][]gotrace.Path, 0, len(bands))
	for i, band := range bands {
		name := filepath.Join(dir, fmt.Sprintf("band%d", i))
		if err := writeFile(name+".bmp", func(f *os.File) error {
			return trimesh.WriteBand(f, band)
		}); err != nil {
			return err
		}
		paths, err := tracer.Trace(band)
		if err != nil {
			return err
		}
		if err := writeFile(name+".svg", func(f *os.File) error {
			return trimesh.WriteTracedSVG(f, band.Bounds(), paths, palette[i])
		}); err != nil {
			return err
		}
		traced = append(traced, paths)
	}
	if !p.StackedBands || len(bands) == 0 {
		return nil
	}
	return writeFile(filepath.Join(dir, "multiscan.svg"), func(f *os.File) error {
		return trimesh.WriteMultiscanSVG(f, bands[0].Bounds(), traced, palette)
	})
}

func writePNG(path string, img image.Image) error {
	return writeFile(path, func(f *os.File) error {
		return errors.Wrap(png.Encode(f, img), "encoding png")
	})
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "unable to write %s", path)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
