package serializer

import (
	"fmt"
	"sort"

	"github.com/memorm/memorm/logger"
	"github.com/memorm/memorm/relationship"
	"github.com/memorm/memorm/schema"
)

// ErrUnknownRelation is returned when a config references a relation name
// the target collection does not define.
var ErrUnknownRelation = fmt.Errorf("memorm: serializer: unknown relation")

// ResolveFn fetches the record for id in the given collection. found is
// false if no such record exists (e.g. a dangling or already-cleared FK).
type ResolveFn func(collection string, id any) (record map[string]any, found bool)

// collectionInfo is what the Registry needs to know about one collection to
// serialize its records: its singular model name (default root key for a
// single record), and its default Config.
type collectionInfo struct {
	modelName string
	config    Config
}

// Registry holds the default Config for every collection and dispatches
// serialization, resolving relations through the shared relationship
// Registry and a caller-supplied ResolveFn.
type Registry struct {
	collections map[string]collectionInfo
	relations   *relationship.Registry
	resolve     ResolveFn
	logger      logger.Logger
}

// NewRegistry creates a serializer registry backed by relations for
// relation metadata and resolve for cross-collection record lookups.
func NewRegistry(relations *relationship.Registry, resolve ResolveFn, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Registry{
		collections: make(map[string]collectionInfo),
		relations:   relations,
		resolve:     resolve,
		logger:      log,
	}
}

// Configure registers collection's singular model name and default Config.
func (r *Registry) Configure(collection, modelName string, cfg Config) {
	r.collections[collection] = collectionInfo{modelName: modelName, config: cfg}
}

func (r *Registry) config(collection string, overrides ...Option) Config {
	cfg := r.collections[collection].config.Clone()
	for _, opt := range overrides {
		opt(&cfg)
	}
	return cfg
}

// SerializeRecord renders a single record of collection to a plain map,
// applying overrides on top of the collection's configured default.
func (r *Registry) SerializeRecord(collection string, record map[string]any, overrides ...Option) (any, error) {
	cfg := r.config(collection, overrides...)
	sideloads := newSideloadSet()

	body, err := r.body(collection, record, cfg, sideloads)
	if err != nil {
		return nil, err
	}

	rootEnabled, rootKey := r.resolveRoot(cfg, sideloads, r.collections[collection].modelName)
	if !rootEnabled {
		return body, nil
	}
	out := map[string]any{rootKey: body}
	sideloads.mergeInto(out)
	return out, nil
}

// SerializeRecords renders a list of records of collection, aggregating
// any side-loaded relations across the whole list, deduplicated by id.
func (r *Registry) SerializeRecords(collection string, records []map[string]any, overrides ...Option) (any, error) {
	cfg := r.config(collection, overrides...)
	sideloads := newSideloadSet()

	bodies := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		body, err := r.body(collection, rec, cfg, sideloads)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	rootEnabled, rootKey := r.resolveRoot(cfg, sideloads, collection)
	if !rootEnabled {
		return bodies, nil
	}
	out := map[string]any{rootKey: bodies}
	sideloads.mergeInto(out)
	return out, nil
}

// body projects one record's attributes and embedded/side-loaded relations
// per cfg, without root wrapping.
func (r *Registry) body(collection string, record map[string]any, cfg Config, sideloads *sideloadSet) (map[string]any, error) {
	rels := r.relations.For(collection)

	for name := range cfg.With {
		if _, ok := rels[name]; !ok {
			return nil, fmt.Errorf("%w: %q on %q", ErrUnknownRelation, name, collection)
		}
	}

	out := project(record, cfg.Select)

	for name, rel := range rels {
		_, included := cfg.With[name]
		if !included {
			delete(out, rel.ForeignKey)
			continue
		}
		mode, _ := cfg.relationMode(name)

		if !mode.keepsForeignKey() {
			delete(out, rel.ForeignKey)
		}

		if mode.isEmbedded() {
			nested, err := r.embed(rel, record, cfg.With[name].Nested)
			if err != nil {
				return nil, err
			}
			out[name] = nested
		}

		if mode.isSideLoaded() {
			if err := r.collectSideloads(rel, record, cfg.With[name].Nested, sideloads); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// nestedConfig layers a per-call nested override onto the target
// collection's own config: set fields of override replace the target's,
// and its With entries are merged into the target's by relation name.
func (r *Registry) nestedConfig(targetCollection string, override *Config) Config {
	cfg := r.collections[targetCollection].config.Clone()
	if override == nil {
		return cfg
	}
	if override.Select.Include != nil || override.Select.Exclude != nil {
		cfg.Select = override.Select
	}
	if override.Root.Explicit {
		cfg.Root = override.Root
	}
	if override.RelationsMode != "" {
		cfg.RelationsMode = override.RelationsMode
	}
	for name, ro := range override.With {
		cfg.With[name] = ro
	}
	return cfg
}

func (r *Registry) embed(rel *relationship.Resolved, record map[string]any, override *Config) (any, error) {
	nestedCfg := r.nestedConfig(rel.Target, override)

	switch rel.Kind {
	case schema.BelongsTo:
		id := record[rel.ForeignKey]
		if id == nil {
			return nil, nil
		}
		targetRec, found := r.resolve(rel.Target, id)
		if !found {
			return nil, nil
		}
		sideloads := newSideloadSet()
		return r.body(rel.Target, targetRec, nestedCfg, sideloads)
	case schema.HasMany:
		ids := toIDList(record[rel.ForeignKey])
		out := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			targetRec, found := r.resolve(rel.Target, id)
			if !found {
				continue
			}
			sideloads := newSideloadSet()
			nested, err := r.body(rel.Target, targetRec, nestedCfg, sideloads)
			if err != nil {
				return nil, err
			}
			out = append(out, nested)
		}
		return out, nil
	default:
		return nil, nil
	}
}

func (r *Registry) collectSideloads(rel *relationship.Resolved, record map[string]any, override *Config, sideloads *sideloadSet) error {
	nestedCfg := r.nestedConfig(rel.Target, override)
	bagKey := rel.SideLoad

	var ids []any
	switch rel.Kind {
	case schema.BelongsTo:
		if id := record[rel.ForeignKey]; id != nil {
			ids = []any{id}
		}
	case schema.HasMany:
		ids = toIDList(record[rel.ForeignKey])
	}

	for _, id := range ids {
		if sideloads.has(bagKey, id) {
			continue
		}
		targetRec, found := r.resolve(rel.Target, id)
		if !found {
			continue
		}
		inner := newSideloadSet()
		serialized, err := r.body(rel.Target, targetRec, nestedCfg, inner)
		if err != nil {
			return err
		}
		sideloads.add(bagKey, id, serialized)
		sideloads.absorb(inner)
	}
	return nil
}

// resolveRoot decides whether root wrapping is active and, if so, the root
// key to use. Side-loaded mode forces root on even if the caller passed
// root:false, logging a warning instead of honoring it.
func (r *Registry) resolveRoot(cfg Config, sideloads *sideloadSet, defaultKey string) (bool, string) {
	sideloadActive := cfg.RelationsMode.isSideLoaded()
	for name := range cfg.With {
		if mode, _ := cfg.relationMode(name); mode.isSideLoaded() {
			sideloadActive = true
		}
	}

	if sideloadActive {
		if cfg.Root.Explicit && !cfg.Root.Enabled {
			r.logger.Warn("memorm: serializer: root:false ignored under side-loaded relations mode")
		}
		key := cfg.Root.Key
		if key == "" {
			key = defaultKey
		}
		return true, key
	}

	if !cfg.Root.Explicit || !cfg.Root.Enabled {
		return false, ""
	}
	key := cfg.Root.Key
	if key == "" {
		key = defaultKey
	}
	return true, key
}

func project(record map[string]any, sel Select) map[string]any {
	out := make(map[string]any, len(record))
	switch {
	case sel.Include != nil:
		for _, k := range sel.Include {
			if v, ok := record[k]; ok {
				out[k] = v
			}
		}
	case sel.Exclude != nil:
		excluded := make(map[string]bool, len(sel.Exclude))
		for _, k := range sel.Exclude {
			excluded[k] = true
		}
		for k, v := range record {
			if !excluded[k] {
				out[k] = v
			}
		}
	default:
		for k, v := range record {
			out[k] = v
		}
	}
	return out
}

func toIDList(v any) []any {
	list, _ := v.([]any)
	return list
}

// sideloadSet accumulates side-loaded records per bag key, deduplicated by
// id, preserving first-seen order.
type sideloadSet struct {
	order map[string][]any
	byID  map[string]map[any]map[string]any
}

func newSideloadSet() *sideloadSet {
	return &sideloadSet{order: map[string][]any{}, byID: map[string]map[any]map[string]any{}}
}

func (s *sideloadSet) has(bagKey string, id any) bool {
	bag, ok := s.byID[bagKey]
	if !ok {
		return false
	}
	_, ok = bag[id]
	return ok
}

func (s *sideloadSet) add(bagKey string, id any, record map[string]any) {
	if s.byID[bagKey] == nil {
		s.byID[bagKey] = map[any]map[string]any{}
	}
	s.byID[bagKey][id] = record
	s.order[bagKey] = append(s.order[bagKey], id)
}

func (s *sideloadSet) absorb(other *sideloadSet) {
	for bagKey, ids := range other.order {
		for _, id := range ids {
			if s.has(bagKey, id) {
				continue
			}
			s.add(bagKey, id, other.byID[bagKey][id])
		}
	}
}

func (s *sideloadSet) mergeInto(out map[string]any) {
	keys := make([]string, 0, len(s.order))
	for k := range s.order {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, bagKey := range keys {
		list := make([]map[string]any, 0, len(s.order[bagKey]))
		for _, id := range s.order[bagKey] {
			list = append(list, s.byID[bagKey][id])
		}
		out[bagKey] = list
	}
}
