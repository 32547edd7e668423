package config

import (
	"gopkg.in/yaml.v3"
)

// Taskfile represents the structure of glaze.yaml.
type Taskfile struct {
	Version    string              `yaml:"version"`
	Root       string              `yaml:"root"`
	Output     string              `yaml:"output"`
	LiveReload *LiveReloadDTO      `yaml:"livereload"`
	Paths      map[string][]string `yaml:"paths"`
	Tasks      map[string]*TaskDTO `yaml:"tasks"`
}

// LiveReloadDTO configures the live-reload server address.
type LiveReloadDTO struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	DependsOn []string    `yaml:"dependsOn"`
	Streams   []StreamDTO `yaml:"streams"`
	Watch     []WatchDTO  `yaml:"watch"`
}

// StreamDTO is one src -> steps pipeline.
type StreamDTO struct {
	Src   []string  `yaml:"src"`
	Steps []StepDTO `yaml:"steps"`
}

// WatchDTO maps globs to the tasks they re-run.
type WatchDTO struct {
	Paths []string `yaml:"paths"`
	Run   []string `yaml:"run"`
}

// StepDTO is a step entry. In YAML a step is either a bare kind ("minify")
// or a map with exactly one key, the kind, holding its options
// ("dest: static/css", "rename: {extname: .min.css}").
type StepDTO struct {
	Kind    string
	Options *yaml.Node
	Line    int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StepDTO) UnmarshalYAML(value *yaml.Node) error {
	s.Line = value.Line
	switch value.Kind {
	case yaml.ScalarNode:
		s.Kind = value.Value
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return &yaml.TypeError{Errors: []string{
				lineError(value.Line, "a step map must have exactly one key"),
			}}
		}
		s.Kind = value.Content[0].Value
		s.Options = value.Content[1]
		return nil
	default:
		return &yaml.TypeError{Errors: []string{
			lineError(value.Line, "a step must be a name or a single-key map"),
		}}
	}
}

// hasOptions reports whether the step carries a non-null options node.
func (s *StepDTO) hasOptions() bool {
	return s.Options != nil && s.Options.Tag != "!!null"
}

// compileDTO are the options of a compile step. A scalar selects the compiler.
type compileDTO struct {
	Compiler string   `yaml:"compiler"`
	Command  []string `yaml:"command"`
	Output   string   `yaml:"output"`
}

type autoprefixDTO struct {
	Vendors []string `yaml:"vendors"`
}

type renameDTO struct {
	Extname  string `yaml:"extname"`
	Basename string `yaml:"basename"`
	Prefix   string `yaml:"prefix"`
	Suffix   string `yaml:"suffix"`
}
