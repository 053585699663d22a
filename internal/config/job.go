// Package config reads batch job files for the object remover.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"object-remover/internal/algorithms"
	"object-remover/internal/algorithms/criminisi"
	"object-remover/internal/logger"
)

// Job describes one object-removal run.
type Job struct {
	Input         string     `yaml:"input"`
	Output        string     `yaml:"output"`
	Holes         []Hole     `yaml:"holes"`
	Polygons      []Polygon  `yaml:"polygons"`
	Mask          string     `yaml:"mask"`
	PatchSize     int        `yaml:"patch_size"`
	SearchStride  Stride     `yaml:"search_stride"`
	MaxIterations int        `yaml:"max_iterations"`
	Workers       int        `yaml:"workers"`
	Log           LogSection `yaml:"log"`
}

type Hole struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Polygon is a list of [x, y] vertices.
type Polygon [][2]int

func (p Polygon) Points() []image.Point {
	points := make([]image.Point, len(p))
	for i, v := range p {
		points[i] = image.Pt(v[0], v[1])
	}
	return points
}

type LogSection struct {
	Level string `yaml:"level"`
	Human bool   `yaml:"human"`
}

// Stride wraps criminisi.Stride so job files can say "auto" or an integer.
type Stride struct {
	criminisi.Stride
}

func (s *Stride) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: search_stride must be a scalar", node.Line)
	}
	parsed, err := criminisi.ParseStride(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	s.Stride = parsed
	return nil
}

// Default returns a job with the engine defaults and no regions.
func Default() *Job {
	return &Job{
		PatchSize: criminisi.DefaultPatchSize,
		Log:       LogSection{Human: true},
	}
}

// Override adjusts a decoded job before validation.
type Override func(*Job)

// WithInput replaces the job's input path when path is not empty.
func WithInput(path string) Override {
	return func(j *Job) {
		if path != "" {
			j.Input = path
		}
	}
}

// WithOutput replaces the job's output path when path is not empty.
func WithOutput(path string) Override {
	return func(j *Job) {
		if path != "" {
			j.Output = path
		}
	}
}

// Stdin is the job path that reads the job from standard input.
const Stdin = "-"

// Load reads and validates a job file. Relative paths inside it are resolved
// against the file's directory; overrides apply afterwards, as given.
func Load(path string, overrides ...Override) (*Job, error) {
	if path == Stdin {
		return Parse(os.Stdin, overrides...)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	job, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	job.resolvePaths(filepath.Dir(path))
	for _, o := range overrides {
		o(job)
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// Parse decodes a job from YAML, rejecting unknown keys, and validates it
// after applying overrides. Paths are kept as written.
func Parse(r io.Reader, overrides ...Override) (*Job, error) {
	job, err := decode(r)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(job)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

func decode(r io.Reader) (*Job, error) {
	job := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(job); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", algorithms.ErrInvalidInput, err)
	}
	return job, nil
}

func (j *Job) Validate() error {
	var problems []string

	if strings.TrimSpace(j.Input) == "" {
		problems = append(problems, "input is required")
	}
	if strings.TrimSpace(j.Output) == "" {
		problems = append(problems, "output is required")
	}
	for i, h := range j.Holes {
		if h.Width <= 0 || h.Height <= 0 {
			problems = append(problems, fmt.Sprintf("holes[%d] has non-positive size %dx%d", i, h.Width, h.Height))
		}
	}
	for i, p := range j.Polygons {
		if len(p) < 3 {
			problems = append(problems, fmt.Sprintf("polygons[%d] needs at least 3 vertices", i))
		}
	}
	if err := j.EngineConfig().Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: invalid job: %s", algorithms.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// EngineConfig maps the job's tuning fields onto the fill engine.
func (j *Job) EngineConfig() criminisi.Config {
	return criminisi.Config{
		PatchSize:     j.PatchSize,
		SearchStride:  j.SearchStride.Stride,
		MaxIterations: j.MaxIterations,
		Workers:       j.Workers,
	}
}

// LogLevel falls back to LOG_LEVEL / DEBUG when the job sets none.
func (j *Job) LogLevel() zerolog.Level {
	return logger.ParseLevel(j.Log.Level)
}

func (j *Job) resolvePaths(dir string) {
	for _, p := range []*string{&j.Input, &j.Output, &j.Mask} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
