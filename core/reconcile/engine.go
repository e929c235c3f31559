package reconcile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"postcard-sync/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Schema bundles the declarative sync description of one record type.
type Schema struct {
	// Table holds the field directives.
	Table *Table

	// Resources merges the derived-asset sub-document. Optional.
	Resources *ResourceSet

	// Children reconciles the nested child list. Optional.
	Children *ChildRelation

	// Protected lists local fields no directive may write (e.g. author fields).
	Protected []string
}

// Validate checks that no directive or resource writes a protected field and
// that resources do not shadow table fields.
func (s *Schema) Validate() error {
	if s.Table == nil {
		return errors.New("schema has no directive table")
	}
	protected := make(map[string]struct{}, len(s.Protected))
	for _, f := range s.Protected {
		protected[f] = struct{}{}
	}
	for _, d := range s.Table.Directives() {
		if _, ok := protected[d.LocalField]; ok {
			return fmt.Errorf("table %s: field %q is protected", s.Table.Name(), d.LocalField)
		}
	}
	if s.Resources != nil {
		for _, f := range s.Resources.LocalFields() {
			if _, ok := protected[f]; ok {
				return fmt.Errorf("resources: field %q is protected", f)
			}
			if _, ok := s.Table.Lookup(f); ok {
				return fmt.Errorf("resources: field %q is already mapped by the directive table", f)
			}
		}
	}
	return nil
}

// Engine runs pull and push cycles for one record type.
type Engine struct {
	schema  *Schema
	store   Store
	remote  Remote
	logger  *zap.Logger
	metrics *metrics.Recorder
	policy  ConflictPolicy
	group   singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithConflictPolicy sets how pulls treat locally edited both-direction fields.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// NewEngine creates an engine. It panics if the schema is invalid, since
// schemas are static and built at startup.
func NewEngine(schema *Schema, store Store, remote Remote, opts ...Option) *Engine {
	if err := schema.Validate(); err != nil {
		panic(err)
	}
	e := &Engine{
		schema: schema,
		store:  store,
		remote: remote,
		logger: zap.NewNop(),
		policy: PolicyKeepLocal,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns the schema the engine reconciles.
func (e *Engine) Schema() *Schema { return e.schema }

// Pull runs one fetch-merge-commit cycle for uuid.
// Concurrent pulls of the same uuid share a single cycle and its result.
// A caller whose ctx ends stops waiting without affecting the others. A caller
// that joined a cycle cancelled by its starter runs one fresh cycle of its own.
func (e *Engine) Pull(ctx context.Context, uuid string) (*Result, error) {
	return e.run(ctx, "pull", uuid, e.pull)
}

// Push runs one build-submit-commit cycle for uuid.
// Sharing and cancellation follow Pull.
func (e *Engine) Push(ctx context.Context, uuid string) (*Result, error) {
	return e.run(ctx, "push", uuid, e.push)
}

func (e *Engine) run(ctx context.Context, direction, uuid string, cycle func(context.Context, string) (*Result, error)) (*Result, error) {
	key := direction + ":" + uuid
	var r singleflight.Result
	for attempt := 0; ; attempt++ {
		ch := e.group.DoChan(key, func() (any, error) {
			start := time.Now()
			res, err := cycle(ctx, uuid)
			e.metrics.ObserveCycle(direction, Outcome(err), time.Since(start))
			return res, err
		})
		select {
		case <-ctx.Done():
			r = singleflight.Result{Err: ctx.Err()}
		case r = <-ch:
		}
		if r.Shared {
			e.logger.Debug("Joined in-flight cycle", zap.String("uuid", uuid), zap.String("direction", direction))
		}
		// the cycle may have run under another caller's ctx
		if attempt == 0 && r.Shared && ctx.Err() == nil && isCancellation(r.Err) {
			e.logger.Debug("Shared cycle was cancelled, retrying", zap.String("uuid", uuid), zap.String("direction", direction))
			continue
		}
		break
	}
	if r.Err != nil {
		e.logger.Warn("Reconcile cycle failed",
			zap.String("uuid", uuid),
			zap.String("direction", direction),
			zap.String("outcome", Outcome(r.Err)),
			zap.Error(r.Err),
		)
		return nil, r.Err
	}
	return r.Val.(*Result), nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Engine) pull(ctx context.Context, uuid string) (*Result, error) {
	snap, err := e.store.Snapshot(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", uuid, err)
	}

	doc, err := e.remote.FetchDocument(ctx, uuid)
	if err != nil {
		return nil, &FetchError{UUID: uuid, Err: err}
	}

	res := &Result{UUID: uuid, Direction: "pull"}
	buf := snap.Fields.Clone()

	// 1. field directives
	staged, errs := e.schema.Table.Pull(doc)
	res.FieldErrors = append(res.FieldErrors, errs...)
	for _, d := range e.schema.Table.FieldsForPull() {
		remote, ok := staged[d.LocalField]
		if !ok {
			continue
		}
		if d.Direction == DirectionBoth && snap.Dirty && !reflect.DeepEqual(buf[d.LocalField], remote) {
			conflict := Conflict{
				Field:     d.LocalField,
				RemoteKey: d.RemoteKey,
				Local:     buf[d.LocalField],
				Remote:    remote,
				Kept:      e.policy == PolicyKeepLocal,
			}
			res.Conflicts = append(res.Conflicts, conflict)
			if conflict.Kept {
				continue
			}
		}
		buf[d.LocalField] = remote
		res.Applied = append(res.Applied, d.LocalField)
	}

	// 2. derived resources
	if e.schema.Resources != nil {
		applied, errs := e.schema.Resources.Merge(doc, buf)
		res.Applied = append(res.Applied, applied...)
		res.FieldErrors = append(res.FieldErrors, errs...)
	}

	// 3. child collection
	var plan *ChildPlan
	if e.schema.Children != nil {
		descs, present, errs, err := e.schema.Children.Descriptors(doc)
		if err != nil {
			return nil, &ChildReconcileError{UUID: uuid, Reason: "invalid remote list", Err: err}
		}
		res.FieldErrors = append(res.FieldErrors, errs...)
		if present {
			plan, err = PlanChildren(snap.Children, descs)
			if err != nil {
				return nil, &ChildReconcileError{UUID: uuid, Reason: "cannot plan", Err: err}
			}
			summary := plan.Summary
			res.Children = &summary
		}
	}

	e.reportFieldErrors(uuid, res)

	// 4. commit
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pull of %s abandoned before commit: %w", uuid, err)
	}
	commit := Commit{ID: snap.ID, UUID: uuid, Fields: buf, Children: plan}
	if err := e.commit(ctx, commit); err != nil {
		return nil, err
	}

	e.logger.Info("Pulled record",
		zap.String("uuid", uuid),
		zap.Int("applied", len(res.Applied)),
		zap.Int("conflicts", len(res.Conflicts)),
		zap.Int("field_errors", len(res.FieldErrors)),
		zap.Bool("was_draft", snap.Draft),
	)
	return res, nil
}

func (e *Engine) push(ctx context.Context, uuid string) (*Result, error) {
	snap, err := e.store.Snapshot(ctx, uuid)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", uuid, err)
	}

	doc, errs := e.schema.Table.Push(snap.Fields)
	res := &Result{UUID: uuid, Direction: "push", FieldErrors: errs}
	for _, d := range e.schema.Table.FieldsForPush() {
		if _, ok := doc[d.RemoteKey]; ok {
			res.Applied = append(res.Applied, d.RemoteKey)
		}
	}
	e.reportFieldErrors(uuid, res)

	if err := e.remote.SubmitDocument(ctx, uuid, doc); err != nil {
		return nil, &SubmitError{UUID: uuid, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &CommitError{UUID: uuid, Err: err}
	}
	if err := e.commit(ctx, Commit{ID: snap.ID, UUID: uuid, ClearDirty: true}); err != nil {
		return nil, err
	}

	e.logger.Info("Pushed record", zap.String("uuid", uuid), zap.Int("keys", len(doc)))
	return res, nil
}

// commit writes c and classifies failures. Child failures keep their own type.
func (e *Engine) commit(ctx context.Context, c Commit) error {
	err := e.store.Commit(ctx, c)
	if err == nil {
		return nil
	}
	var childErr *ChildReconcileError
	if errors.As(err, &childErr) {
		return err
	}
	return &CommitError{UUID: c.UUID, Err: err}
}

func (e *Engine) reportFieldErrors(uuid string, res *Result) {
	for _, fe := range res.FieldErrors {
		e.metrics.FieldTypeError(fe.Key)
		e.logger.Warn("Skipped field with invalid value",
			zap.String("uuid", uuid),
			zap.String("key", fe.Key),
			zap.String("type", string(fe.Type)),
			zap.Error(fe.Err),
		)
	}
	e.metrics.Conflicts(len(res.Conflicts))
	for _, c := range res.Conflicts {
		e.logger.Warn("Local edit diverges from remote",
			zap.String("uuid", uuid),
			zap.String("field", c.Field),
			zap.Bool("kept_local", c.Kept),
		)
	}
}
