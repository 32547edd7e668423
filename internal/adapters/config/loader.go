// Package config loads glaze.yaml task files into a domain.Graph.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var validTaskNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Load looks for glaze.yaml in cwd and its parents. Without one, the built-in
// task file is used with cwd as the project root.
func (l *Loader) Load(cwd string) (*domain.Graph, error) {
	configPath, found := findConfiguration(cwd)
	if !found {
		l.Logger.Info(fmt.Sprintf("no %s found, using built-in tasks", domain.ConfigFileName))
		return l.parse(DefaultTaskfile, filepath.Join(cwd, domain.ConfigFileName))
	}
	return l.LoadFile(configPath)
}

// LoadFile reads the task file at path.
func (l *Loader) LoadFile(path string) (*domain.Graph, error) {
	// #nosec G304 -- path is chosen by the user or found by walking up from cwd
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	return l.parse(data, path)
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) parse(data []byte, configPath string) (*domain.Graph, error) {
	var taskfile Taskfile
	if err := yaml.Unmarshal(data, &taskfile); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	g := domain.NewGraph()
	g.SetRoot(resolveRoot(configPath, taskfile.Root))
	if taskfile.Output != "" {
		g.SetOutput(filepath.ToSlash(filepath.Clean(taskfile.Output)))
	}
	if taskfile.LiveReload != nil {
		reload := g.Reload()
		if taskfile.LiveReload.Host != "" {
			reload.Host = taskfile.LiveReload.Host
		}
		if taskfile.LiveReload.Port != 0 {
			reload.Port = taskfile.LiveReload.Port
		}
		g.SetReload(reload)
	}

	// Sorted so that the first reported error does not depend on map order.
	names := make([]string, 0, len(taskfile.Tasks))
	for name := range taskfile.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		task, err := buildTask(name, taskfile.Tasks[name], taskfile.Paths)
		if err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		if err := g.AddTask(task); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func validateTaskName(name string) error {
	if !validTaskNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidTaskName, "task_name", name)
	}
	return nil
}

func buildTask(name string, dto *TaskDTO, paths map[string][]string) (*domain.Task, error) {
	if err := validateTaskName(name); err != nil {
		return nil, err
	}
	task := &domain.Task{Name: domain.NewInternedString(name)}
	if dto == nil {
		return task, nil
	}
	task.Dependencies = domain.NewInternedStrings(dto.DependsOn)

	for i, streamDTO := range dto.Streams {
		stream, err := buildStream(streamDTO, paths)
		if err != nil {
			return nil, zerr.With(zerr.With(err, "task", name), "stream", i)
		}
		task.Streams = append(task.Streams, stream)
	}

	for _, watchDTO := range dto.Watch {
		globs, err := expandPaths(watchDTO.Paths, paths)
		if err != nil {
			return nil, zerr.With(err, "task", name)
		}
		task.Watches = append(task.Watches, domain.Watch{
			Globs: globs,
			Tasks: domain.NewInternedStrings(watchDTO.Run),
		})
	}
	return task, nil
}

func buildStream(dto StreamDTO, paths map[string][]string) (domain.Stream, error) {
	sources, err := expandPaths(dto.Src, paths)
	if err != nil {
		return domain.Stream{}, err
	}
	if len(sources) == 0 {
		return domain.Stream{}, domain.ErrMissingSources
	}

	steps := make([]domain.Step, 0, len(dto.Steps))
	for i := range dto.Steps {
		step, err := buildStep(&dto.Steps[i])
		if err != nil {
			return domain.Stream{}, zerr.With(err, "line", dto.Steps[i].Line)
		}
		steps = append(steps, step)
	}
	return domain.Stream{Sources: sources, Steps: steps}, nil
}

// expandPaths replaces "$name" entries with the named glob list.
func expandPaths(globs []string, paths map[string][]string) ([]string, error) {
	expanded := make([]string, 0, len(globs))
	for _, glob := range globs {
		ref, isRef := strings.CutPrefix(glob, "$")
		if !isRef {
			expanded = append(expanded, glob)
			continue
		}
		named, ok := paths[ref]
		if !ok {
			return nil, zerr.With(domain.ErrUnknownPathRef, "ref", glob)
		}
		expanded = append(expanded, named...)
	}
	return expanded, nil
}

//nolint:cyclop // one case per step kind
func buildStep(dto *StepDTO) (domain.Step, error) {
	kind := domain.StepKind(dto.Kind)
	step := domain.Step{Kind: kind}

	switch kind {
	case domain.StepCompile:
		opts, err := decodeCompile(dto)
		if err != nil {
			return step, err
		}
		step.Compile = opts
	case domain.StepAutoprefix:
		opts, err := decodeAutoprefix(dto)
		if err != nil {
			return step, err
		}
		step.Autoprefix = opts
	case domain.StepRename:
		var opts renameDTO
		if err := decodeOptions(dto, &opts); err != nil {
			return step, err
		}
		step.Rename = domain.RenameOptions(opts)
	case domain.StepDest:
		var dir string
		if err := decodeOptions(dto, &dir); err != nil {
			return step, err
		}
		if strings.TrimSpace(dir) == "" {
			return step, zerr.With(domain.ErrInvalidStep, "step", dto.Kind)
		}
		step.Dest = filepath.ToSlash(filepath.Clean(dir))
	case domain.StepWait:
		d, err := decodeWait(dto)
		if err != nil {
			return step, err
		}
		step.Wait = d
	case domain.StepMinify, domain.StepClean, domain.StepReload:
		if dto.hasOptions() {
			return step, zerr.With(domain.ErrInvalidStep, "step", dto.Kind)
		}
	default:
		return step, zerr.With(domain.ErrUnknownStep, "step", dto.Kind)
	}
	return step, nil
}

func decodeOptions(dto *StepDTO, target any) error {
	if !dto.hasOptions() {
		return nil
	}
	if err := dto.Options.Decode(target); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidStep.Error()), "step", dto.Kind)
	}
	return nil
}

func decodeCompile(dto *StepDTO) (domain.CompileOptions, error) {
	var raw compileDTO
	if dto.hasOptions() && dto.Options.Kind == yaml.ScalarNode {
		raw.Compiler = dto.Options.Value
	} else if err := decodeOptions(dto, &raw); err != nil {
		return domain.CompileOptions{}, err
	}

	if raw.Compiler == "" {
		raw.Compiler = domain.CompilerPassthrough
	}
	switch raw.Compiler {
	case domain.CompilerPassthrough:
	case domain.CompilerCompass:
		if len(raw.Command) == 0 || raw.Output == "" {
			return domain.CompileOptions{}, zerr.With(
				zerr.With(domain.ErrInvalidStep, "step", dto.Kind),
				"reason", "compass needs command and output",
			)
		}
	default:
		return domain.CompileOptions{}, zerr.With(domain.ErrUnknownCompiler, "compiler", raw.Compiler)
	}

	opts := domain.CompileOptions{Compiler: raw.Compiler, Command: raw.Command}
	if raw.Output != "" {
		opts.OutputDir = filepath.ToSlash(filepath.Clean(raw.Output))
	}
	return opts, nil
}

func decodeAutoprefix(dto *StepDTO) (domain.AutoprefixOptions, error) {
	var raw autoprefixDTO
	if err := decodeOptions(dto, &raw); err != nil {
		return domain.AutoprefixOptions{}, err
	}
	for _, vendor := range raw.Vendors {
		if !slices.Contains(domain.Vendors, vendor) {
			return domain.AutoprefixOptions{}, zerr.With(domain.ErrUnsupportedVendor, "vendor", vendor)
		}
	}
	return domain.AutoprefixOptions{Vendors: raw.Vendors}, nil
}

// decodeWait accepts milliseconds as an integer or a Go duration string.
func decodeWait(dto *StepDTO) (time.Duration, error) {
	var raw string
	if err := decodeOptions(dto, &raw); err != nil {
		return 0, err
	}
	invalid := zerr.With(zerr.With(domain.ErrInvalidStep, "step", dto.Kind), "duration", raw)

	if ms, err := strconv.Atoi(raw); err == nil {
		if ms < 0 {
			return 0, invalid
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, invalid
	}
	return d, nil
}

// WriteDefault writes the built-in task file into dir. It refuses to
// overwrite an existing glaze.yaml.
func WriteDefault(dir string) (string, error) {
	path := filepath.Join(dir, domain.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return "", zerr.With(domain.ErrConfigExists, "path", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	if err := os.WriteFile(path, DefaultTaskfile, domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	return path, nil
}

func lineError(line int, msg string) string {
	return "line " + strconv.Itoa(line) + ": " + msg
}
