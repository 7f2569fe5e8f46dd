package config

// GraphsConfig is the top-level YAML structure.
type GraphsConfig struct {
	Version string     `yaml:"version"`
	Server  ServerConf `yaml:"server"`
	Graphs  []GraphDef `yaml:"graphs"`
}

// ServerConf holds tunable HTTP settings.
type ServerConf struct {
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	IdleTimeoutSec  int `yaml:"idle_timeout_sec"`
	MaxTargets      int `yaml:"max_targets"`
}

// GraphDef declares one named graph. Nodes are listed in definition order;
// a calc may only reference nodes declared before it.
type GraphDef struct {
	Name    string      `yaml:"name"`
	Sources []SourceDef `yaml:"sources"`
	Calcs   []CalcDef   `yaml:"calcs"`
}

// SourceDef declares a node holding a literal value.
type SourceDef struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// CalcDef declares a node computed from upstream nodes.
type CalcDef struct {
	Name     string   `yaml:"name"`
	Op       string   `yaml:"op"`
	Upstream []string `yaml:"upstream"`
}
