package linkconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/vitalvas/deeplink/deeplink"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is matched by every error returned from Validate.
	ErrInvalidConfig = errors.New("linkconfig: invalid config")

	// ErrHostNotAllowed is returned by Resolve when the URL host is not in
	// the allow-list.
	ErrHostNotAllowed = errors.New("linkconfig: host not allowed")

	// ErrUnknownRoute is returned when a route name is not configured.
	ErrUnknownRoute = errors.New("linkconfig: unknown route")
)

// Config is a declarative route table.
//
//	hosts: [example.com]
//	routes:
//	  - name: artist
//	    template: /artist/{slug}/{id}
//	    target: myapp://artist/{id}?slug={slug}
//	    require: id
type Config struct {
	// Hosts restricts Resolve to URLs whose host is listed. Hosts are
	// compared after IDNA normalization. Empty allows any host.
	Hosts []string `yaml:"hosts,omitempty" json:"hosts,omitempty"`

	// Routes are tried in order.
	Routes []Route `yaml:"routes" json:"routes"`
}

// Route maps a template to a target.
type Route struct {
	// Name identifies the route. Names must be unique when set.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Template is matched against the relative reference of the URL.
	Template string `yaml:"template" json:"template"`

	// Target is rendered with the captured variables. Every placeholder
	// in Target must be declared by Template.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`

	// Require lists variables that must be non-empty. The route declines
	// the match otherwise, letting later routes claim the URL.
	Require StringList `yaml:"require,omitempty" json:"require,omitempty"`
}

// StringList is a list of strings that decodes from either a YAML scalar or
// a YAML sequence.
type StringList []string

// UnmarshalYAML decodes the list from either a YAML scalar or sequence.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}
		*l = arr
		return nil
	default:
		return fmt.Errorf("unsupported YAML node kind %d for string list", node.Kind)
	}
}

// MarshalYAML encodes a single-element list as a scalar.
func (l StringList) MarshalYAML() (any, error) {
	switch len(l) {
	case 0:
		return nil, nil
	case 1:
		return l[0], nil
	default:
		return []string(l), nil
	}
}

// Load decodes a YAML config from r and validates it. Unknown fields are
// rejected.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("linkconfig: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("linkconfig: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Validate checks that hosts are valid domain names, route names are
// unique, templates compile, and targets and required variables only use
// variables declared by their template. All problems are reported.
func (c *Config) Validate() error {
	var errs []error

	for _, host := range c.Hosts {
		if _, err := normalizeHost(host); err != nil {
			errs = append(errs, fmt.Errorf("%w: host %q: %w", ErrInvalidConfig, host, err))
		}
	}

	names := make(map[string]int, len(c.Routes))
	for i, route := range c.Routes {
		if route.Name != "" {
			if prev, ok := names[route.Name]; ok {
				errs = append(errs, fmt.Errorf("%w: route %d: name %q already used by route %d", ErrInvalidConfig, i, route.Name, prev))
			} else {
				names[route.Name] = i
			}
		}

		if _, _, err := route.compile(); err != nil {
			errs = append(errs, fmt.Errorf("%w: route %d: %w", ErrInvalidConfig, i, err))
		}
	}

	return errors.Join(errs...)
}

// compile parses the template and target of r.
func (r Route) compile() (tpl, target *deeplink.Template[deeplink.Vars], err error) {
	if r.Template == "" {
		return nil, nil, errors.New("template is required")
	}

	tpl, err = deeplink.Parse[deeplink.Vars](r.Template)
	if err != nil {
		return nil, nil, fmt.Errorf("template: %w", err)
	}

	fields := tpl.Fields()

	if r.Target != "" {
		target, err = deeplink.Parse[deeplink.Vars](r.Target)
		if err != nil {
			return nil, nil, fmt.Errorf("target: %w", err)
		}
		if target.IsCatchAll() {
			return nil, nil, fmt.Errorf("target: %q cannot be rendered", r.Target)
		}
		for _, field := range target.Fields() {
			if !slices.Contains(fields, field) {
				return nil, nil, fmt.Errorf("target: variable %q is not declared by %q", field, r.Template)
			}
		}
	}

	for _, field := range r.Require {
		if !slices.Contains(fields, field) {
			return nil, nil, fmt.Errorf("require: variable %q is not declared by %q", field, r.Template)
		}
	}

	return tpl, target, nil
}
