package openmetrics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ygrebnov/errorc"
)

// FamilyView is one registered metric family as seen by encoders during a
// Registry.Each traversal.
type FamilyView struct {
	// Namespace is the full, underscore-joined namespace chain of the owning
	// registry node. Empty when no namespace is configured.
	Namespace string

	// ConstLabels are the constant labels accumulated from the root registry
	// down to the owning node, child values overriding parent values.
	ConstLabels []Label

	// Metadata is the family's name, help, type and unit.
	Metadata Metadata

	// Metric is the registered metric or family.
	Metric Metric
}

type registryEntry struct {
	md     Metadata
	metric Metric
}

// Registry is an ordered collection of metric families sharing a namespace and
// constant labels. Registration is fail-fast: a definition that conflicts with
// an existing one is rejected, never overwritten. All methods are safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	prefix      string
	constLabels []Label
	ownLabels   []Label
	rule        NameRule
	log         Logger

	entries  []registryEntry
	index    map[metadataKey]struct{}
	subs     map[string]*Registry
	subOrder []string
}

// NewRegistry builds a registry from the given options.
func NewRegistry(opts ...Option) (*Registry, error) {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Registry{
		prefix:      cfg.namespace,
		constLabels: cfg.constLabels,
		rule:        cfg.rule,
		log:         cfg.log,
		index:       make(map[metadataKey]struct{}),
		subs:        make(map[string]*Registry),
	}, nil
}

// NameRule returns the name grammar enforced by this registry.
func (r *Registry) NameRule() NameRule { return r.rule }

// Namespace returns the full namespace chain of this registry node, empty when
// none is configured.
func (r *Registry) Namespace() string { return r.prefix }

// ConstLabels returns a copy of the constant labels applied to every family in
// this registry node.
func (r *Registry) ConstLabels() []Label {
	out := make([]Label, len(r.constLabels))
	copy(out, r.constLabels)
	return out
}

// Register adds a metric family under the given name and help text. The
// metric's type is taken from the Metric itself and its unit is UnitNone.
func (r *Registry) Register(name, help string, metric Metric) error {
	return r.RegisterWithUnit(name, help, UnitNone, metric)
}

// RegisterWithUnit adds a metric family with an explicit unit. Units are
// rejected on StateSet, Info and Unknown metrics, which the data model defines
// as unitless.
func (r *Registry) RegisterWithUnit(name, help string, unit Unit, metric Metric) error {
	if metric == nil {
		return errorc.With(ErrInvalid,
			errorc.String("metric", name),
			errorc.String("reason", "metric must not be nil"),
		)
	}
	ty := metric.MetricType()
	if unit != UnitNone {
		switch ty {
		case MetricTypeStateSet, MetricTypeInfo, MetricTypeUnknown:
			return errorc.With(ErrInvalid,
				errorc.String("metric", name),
				errorc.String("type", ty.String()),
				errorc.String("reason", "metric type must have an empty unit string"),
			)
		}
	}
	if err := validateMetricName(name, r.rule); err != nil {
		return err
	}
	if err := validateHelpText(help); err != nil {
		return errorc.With(err, errorc.String("metric", name))
	}
	if err := validateUnit(unit); err != nil {
		return errorc.With(err, errorc.String("metric", name))
	}
	if err := r.validateSchema(name, ty, metric); err != nil {
		return err
	}

	md := NewMetadata(name, help, ty, unit)
	key := md.key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[key]; ok {
		return errorc.With(ErrDuplicated,
			errorc.String("metric", name),
			errorc.String("type", ty.String()),
			errorc.String("unit", unit.String()),
		)
	}
	r.index[key] = struct{}{}
	r.entries = append(r.entries, registryEntry{md: md, metric: metric})
	r.log.Debugf("registered metric family %q type %s", name, ty)
	return nil
}

// MustRegister is Register that panics on error. Intended for package-level
// variable initialization where a registration failure is a programming error.
func (r *Registry) MustRegister(name, help string, metric Metric) {
	if err := r.Register(name, help, metric); err != nil {
		panic(err)
	}
}

// MustRegisterWithUnit is RegisterWithUnit that panics on error.
func (r *Registry) MustRegisterWithUnit(name, help string, unit Unit, metric Metric) {
	if err := r.RegisterWithUnit(name, help, unit, metric); err != nil {
		panic(err)
	}
}

// validateSchema cross-checks the metric's declared label names, when it
// exposes them, against the name rule, the type's reserved label and the
// registry's constant labels.
func (r *Registry) validateSchema(name string, ty MetricType, metric Metric) error {
	schema, ok := metric.(LabelSchema)
	if !ok {
		return nil
	}
	reserved, hasReserved := reservedLabel(ty)
	seen := make(map[string]struct{})
	for _, ln := range schema.LabelNames() {
		if err := validateLabelName(ln, r.rule); err != nil {
			return errorc.With(err, errorc.String("metric", name))
		}
		if hasReserved && ln == reserved {
			return errorc.With(ErrInvalid,
				errorc.String("metric", name),
				errorc.String("label", ln),
				errorc.String("reason", "label name is reserved by the metric type"),
			)
		}
		if _, dup := seen[ln]; dup {
			return errorc.With(ErrDuplicated,
				errorc.String("metric", name),
				errorc.String("label", ln),
				errorc.String("reason", "label name declared twice"),
			)
		}
		seen[ln] = struct{}{}
		for _, cl := range r.constLabels {
			if cl.Name == ln {
				return errorc.With(ErrDuplicated,
					errorc.String("metric", name),
					errorc.String("label", ln),
					errorc.String("reason", "label name collides with a constant label"),
				)
			}
		}
	}
	return nil
}

// Subsystem returns the child registry with the given name, creating it on
// first use. The child's namespace is the parent namespace extended with name,
// and its constant labels are the parent's merged with the given ones, child
// values winning on collision.
//
// Calling Subsystem again with the same name and the same constant labels
// returns the existing child; the same name with different constant labels is
// a conflict.
func (r *Registry) Subsystem(name string, constLabels ...Label) (*Registry, error) {
	if err := validateMetricName(name, r.rule); err != nil {
		return nil, err
	}
	for _, l := range constLabels {
		if err := validateLabelName(l.Name, r.rule); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subs[name]; ok {
		if !sameLabels(existing.ownLabels, constLabels) {
			return nil, errorc.With(ErrDuplicated,
				errorc.String("subsystem", name),
				errorc.String("reason", "subsystem already exists with different constant labels"),
			)
		}
		return existing, nil
	}

	prefix := name
	if r.prefix != "" {
		prefix = r.prefix + "_" + name
	}
	own := make([]Label, len(constLabels))
	copy(own, constLabels)
	child := &Registry{
		prefix:      prefix,
		constLabels: mergeLabels(r.constLabels, own),
		ownLabels:   own,
		rule:        r.rule,
		log:         r.log,
		index:       make(map[metadataKey]struct{}),
		subs:        make(map[string]*Registry),
	}
	r.subs[name] = child
	r.subOrder = append(r.subOrder, name)
	return child, nil
}

// MustSubsystem is Subsystem that panics on error.
func (r *Registry) MustSubsystem(name string, constLabels ...Label) *Registry {
	sub, err := r.Subsystem(name, constLabels...)
	if err != nil {
		panic(err)
	}
	return sub
}

// sameLabels compares two label sets ignoring order.
func sameLabels(a, b []Label) bool {
	if len(a) != len(b) {
		return false
	}
	as := make([]Label, len(a))
	bs := make([]Label, len(b))
	copy(as, a)
	copy(bs, b)
	sort.Slice(as, func(i, j int) bool { return as[i].Name < as[j].Name })
	sort.Slice(bs, func(i, j int) bool { return bs[i].Name < bs[j].Name })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Each calls fn for every registered family in registration order, then
// recurses into subsystems in creation order. Traversal stops at the first
// error, which is returned.
func (r *Registry) Each(fn func(FamilyView) error) error {
	r.mu.RLock()
	entries := make([]registryEntry, len(r.entries))
	copy(entries, r.entries)
	subs := make([]*Registry, 0, len(r.subOrder))
	for _, name := range r.subOrder {
		subs = append(subs, r.subs[name])
	}
	prefix, constLabels := r.prefix, r.constLabels
	r.mu.RUnlock()

	for _, e := range entries {
		view := FamilyView{
			Namespace:   prefix,
			ConstLabels: constLabels,
			Metadata:    e.md,
			Metric:      e.metric,
		}
		if err := fn(view); err != nil {
			return err
		}
	}
	for _, sub := range subs {
		if err := sub.Each(fn); err != nil {
			return err
		}
	}
	return nil
}

// FullName returns the exposition name of the family: the namespace chain and
// the family name joined with underscores. Unit suffixes are applied by the
// encoders, whose profiles decide whether units are embedded in names.
func (v FamilyView) FullName() string {
	name := v.Metadata.Name()
	if v.Namespace != "" {
		name = v.Namespace + "_" + name
	}
	return name
}

// String implements fmt.Stringer for diagnostics.
func (v FamilyView) String() string {
	return fmt.Sprintf("%s{type=%s, unit=%q}", v.FullName(), v.Metadata.MetricType(), v.Metadata.Unit())
}
