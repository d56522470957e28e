package openmetrics

import "github.com/ygrebnov/errorc"

// Option configures a Registry being built by NewRegistry.
type Option func(*registryConfig) error

// registryConfig is the internal builder state assembled from options.
type registryConfig struct {
	namespace   string
	constLabels []Label
	rule        NameRule
	log         Logger
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		rule: NameRuleLegacy,
		log:  newNoopLogger(),
	}
}

// WithNamespace sets the namespace prefix of the registry. The namespace is
// prepended, underscore-separated, to every metric name registered in this
// registry and inherited by subsystems.
func WithNamespace(namespace string) Option {
	return func(c *registryConfig) error {
		if namespace == "" {
			return errorc.With(ErrInvalid, errorc.String("reason", "namespace must not be empty"))
		}
		c.namespace = namespace
		return nil
	}
}

// WithConstLabels attaches constant labels to every metric registered in this
// registry and its subsystems. Label names are validated against the
// configured name rule when the registry is built.
func WithConstLabels(labels ...Label) Option {
	return func(c *registryConfig) error {
		c.constLabels = append(c.constLabels, labels...)
		return nil
	}
}

// WithNameRule selects the name grammar enforced at registration time
// (NameRuleLegacy by default).
func WithNameRule(rule NameRule) Option {
	return func(c *registryConfig) error {
		c.rule = rule
		return nil
	}
}

// WithLogger installs a diagnostic logger. The default is a no-op logger.
func WithLogger(log Logger) Option {
	return func(c *registryConfig) error {
		if log == nil {
			return errorc.With(ErrInvalid, errorc.String("reason", "logger must not be nil"))
		}
		c.log = log
		return nil
	}
}

func (c *registryConfig) validate() error {
	if c.namespace != "" {
		if err := validateMetricName(c.namespace, c.rule); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(c.constLabels))
	for _, l := range c.constLabels {
		if err := validateLabelName(l.Name, c.rule); err != nil {
			return err
		}
		if _, ok := seen[l.Name]; ok {
			return errorc.With(ErrDuplicated,
				errorc.String("label", l.Name),
				errorc.String("reason", "constant label declared twice"),
			)
		}
		seen[l.Name] = struct{}{}
	}
	return nil
}
