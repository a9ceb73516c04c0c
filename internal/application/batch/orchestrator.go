package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Buontempo-Raul/Resurface/internal/application"
	"github.com/Buontempo-Raul/Resurface/internal/domain/analysis"
)

// ErrBusy is returned when an operation cannot proceed while a batch run
// is active.
var ErrBusy = errors.New("batch run in progress")

// ErrNotFound is returned by id-addressed operations for unknown items.
var ErrNotFound = errors.New("item not found")

const defaultTimeout = 30 * time.Second

// Orchestrator owns the tracked collection and drives validation,
// sequential batch analysis and per-item reanalysis. Safe for concurrent
// use: the collection is guarded by one mutex, analysis steps on a single
// item are serialized by a per-item lock.
type Orchestrator struct {
	policy   analysis.Policy
	provider analysis.Provider
	previews analysis.PreviewBuilder
	store    analysis.ArtifactStore
	clock    application.Clock
	timeout  time.Duration

	mu      sync.Mutex
	entries []*entry
	index   map[analysis.ItemID]*entry
	running bool
	current int
	total   int

	prep sync.WaitGroup
}

// entry pairs a tracked item with its raw payload. step serializes
// analysis steps (batch walk vs. reanalyze) touching the same item.
type entry struct {
	step    sync.Mutex
	item    analysis.TrackedItem
	payload analysis.RawImage
}

// Options carries the optional collaborators of an Orchestrator.
type Options struct {
	Previews  analysis.PreviewBuilder // nil disables the preparation step
	Artifacts analysis.ArtifactStore  // nil disables preview upload
	Clock     application.Clock      // defaults to SystemClock
	Timeout   time.Duration          // per provider call, defaults to 30s
}

func New(policy analysis.Policy, provider analysis.Provider, opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = application.SystemClock{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Orchestrator{
		policy:   policy,
		provider: provider,
		previews: opts.Previews,
		store:    opts.Artifacts,
		clock:    opts.Clock,
		timeout:  opts.Timeout,
		index:    make(map[analysis.ItemID]*entry),
	}
}

//
// ==== USE CASES ====
//

// Rejection names one raw item that failed validation.
type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SubmitReceipt is the synchronous answer to a Submit call.
type SubmitReceipt struct {
	Accepted   int               `json:"accepted"`
	IDs        []analysis.ItemID `json:"ids,omitempty"`
	Rejections []Rejection       `json:"rejections,omitempty"`
}

// Submit validates each raw image against the policy and appends the
// accepted ones to the collection in pending state. Rejected images never
// become tracked items. Preview preparation runs in the background and
// does not touch lifecycle state.
func (o *Orchestrator) Submit(raws []analysis.RawImage) SubmitReceipt {
	var rec SubmitReceipt
	for _, raw := range raws {
		if err := o.policy.Validate(raw); err != nil {
			rec.Rejections = append(rec.Rejections, Rejection{
				Name:   raw.Name,
				Reason: analysis.ReasonFor(err),
			})
			continue
		}

		e := &entry{
			item: analysis.TrackedItem{
				ID:          analysis.ItemID(uuid.New().String()),
				Name:        raw.Name,
				Format:      strings.ToLower(strings.TrimPrefix(raw.Format, ".")),
				SizeBytes:   int64(len(raw.Data)),
				SubmittedAt: o.clock.Now(),
				State:       analysis.StatePending,
			},
			payload: raw,
		}

		o.mu.Lock()
		o.entries = append(o.entries, e)
		o.index[e.item.ID] = e
		o.mu.Unlock()

		rec.Accepted++
		rec.IDs = append(rec.IDs, e.item.ID)

		if o.previews != nil {
			o.prep.Add(1)
			go o.prepare(e)
		}
	}
	return rec
}

// prepare builds the preview and, when a store is configured, uploads it.
// Failures are logged only; the item stays analyzable either way.
func (o *Orchestrator) prepare(e *entry) {
	defer o.prep.Done()

	pv, err := o.previews.Build(e.payload)
	if err != nil {
		log.Printf("preview build failed: item=%s name=%s err=%v", e.item.ID, e.item.Name, err)
		return
	}

	url := ""
	if o.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		key := fmt.Sprintf("previews/%s.png", e.item.ID)
		url, err = o.store.UploadBytes(ctx, key, pv.PNG, "image/png")
		cancel()
		if err != nil {
			log.Printf("preview upload failed: item=%s err=%v", e.item.ID, err)
			url = ""
		}
	}

	o.mu.Lock()
	e.item.Width = pv.Width
	e.item.Height = pv.Height
	e.item.PreviewURL = url
	o.mu.Unlock()
}

// WaitForPreparations blocks until all background preview work has
// finished. Used on shutdown and in tests.
func (o *Orchestrator) WaitForPreparations() {
	o.prep.Wait()
}

// RunBatch walks every item that was pending when the call was made, in
// submission order, one provider call at a time. A failing item is
// recorded and the walk moves on. Returns ErrBusy if a run is already
// active. Canceling ctx stops the walk before the next item; items not
// yet reached stay pending.
func (o *Orchestrator) RunBatch(ctx context.Context) error {
	snap, err := o.begin()
	if err != nil {
		return err
	}
	o.walk(ctx, snap)
	return nil
}

// StartBatch is RunBatch with the walk moved to a background goroutine.
// It returns the snapshot size so callers can report the run total
// immediately.
func (o *Orchestrator) StartBatch(ctx context.Context) (int, error) {
	snap, err := o.begin()
	if err != nil {
		return 0, err
	}
	go o.walk(ctx, snap)
	return len(snap), nil
}

// begin snapshots the pending items and flips the running flag.
func (o *Orchestrator) begin() ([]*entry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return nil, ErrBusy
	}
	var snap []*entry
	for _, e := range o.entries {
		if e.item.State == analysis.StatePending {
			snap = append(snap, e)
		}
	}
	o.running = true
	o.current, o.total = 0, len(snap)
	return snap, nil
}

func (o *Orchestrator) walk(ctx context.Context, snap []*entry) {
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	for _, e := range snap {
		if ctx.Err() != nil {
			return
		}
		if o.tracked(e.item.ID) {
			o.analyzeOne(ctx, e)
		}
		o.mu.Lock()
		o.current++
		o.mu.Unlock()
	}
}

// Reanalyze clears the item's result and runs one provider call on it,
// independent of any batch walk. Steps on the same item are serialized.
func (o *Orchestrator) Reanalyze(ctx context.Context, id analysis.ItemID) error {
	o.mu.Lock()
	e, ok := o.index[id]
	o.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	o.analyzeOne(ctx, e)
	return nil
}

// analyzeOne drives one item through analyzing into a terminal state.
func (o *Orchestrator) analyzeOne(ctx context.Context, e *entry) {
	e.step.Lock()
	defer e.step.Unlock()

	o.transition(e, analysis.StateAnalyzing, nil)

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	start := o.clock.Now()
	res, err := o.provider.Analyze(cctx, e.payload)
	cancel()

	if err != nil {
		o.transition(e, analysis.StateError, o.failureResult(err, start))
		return
	}
	o.normalize(res)
	o.transition(e, analysis.StateCompleted, res)
}

// transition sets state and result together so readers never observe a
// terminal state without its result or vice versa.
func (o *Orchestrator) transition(e *entry, s analysis.State, r *analysis.AnalysisResult) {
	o.mu.Lock()
	e.item.State = s
	e.item.Result = r
	o.mu.Unlock()
}

// failureResult builds the synthetic result stored on an error item. All
// provider failures are classified uniformly; only the message differs.
func (o *Orchestrator) failureResult(err error, start time.Time) *analysis.AnalysisResult {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("timed out after %s", o.timeout)
	}
	return &analysis.AnalysisResult{
		Error:        "analysis failed: " + msg,
		ProcessingMS: o.clock.Now().Sub(start).Milliseconds(),
		ModelVersion: o.provider.Version(),
	}
}

// normalize clamps provider output into the documented ranges.
func (o *Orchestrator) normalize(r *analysis.AnalysisResult) {
	r.Confidence = clamp(r.Confidence)
	for i := range r.Anomalies {
		r.Anomalies[i].Score = clamp(r.Anomalies[i].Score)
	}
	if r.ProcessingMS < 0 {
		r.ProcessingMS = 0
	}
	if !r.IsFake {
		r.GenerationMethod = ""
	}
	if r.ModelVersion == "" {
		r.ModelVersion = o.provider.Version()
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Remove drops the item with that id if present; no-op otherwise.
func (o *Orchestrator) Remove(id analysis.ItemID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.index[id]; !ok {
		return
	}
	delete(o.index, id)
	for i, e := range o.entries {
		if e.item.ID == id {
			o.entries = append(o.entries[:i], o.entries[i+1:]...)
			break
		}
	}
}

// Clear drops all tracked items and resets progress counters. Rejected
// with ErrBusy while a batch run is active.
func (o *Orchestrator) Clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return ErrBusy
	}
	o.entries = nil
	o.index = make(map[analysis.ItemID]*entry)
	o.current, o.total = 0, 0
	return nil
}

// Get returns a copy of one tracked item.
func (o *Orchestrator) Get(id analysis.ItemID) (analysis.TrackedItem, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.index[id]
	if !ok {
		return analysis.TrackedItem{}, false
	}
	return e.item, true
}

// Items returns a snapshot of the collection in submission order.
// Results are immutable once stored, so sharing the pointers is safe.
func (o *Orchestrator) Items() []analysis.TrackedItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]analysis.TrackedItem, len(o.entries))
	for i, e := range o.entries {
		out[i] = e.item
	}
	return out
}

// Stats recomputes aggregate counts from the current collection.
func (o *Orchestrator) Stats() analysis.BatchStats {
	return analysis.ComputeStats(o.Items())
}

// Progress reports the active (or last) batch run position.
func (o *Orchestrator) Progress() (current, total int, running bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current, o.total, o.running
}

// tracked reports whether the id is still in the collection. Items
// removed mid-run are skipped by the walk.
func (o *Orchestrator) tracked(id analysis.ItemID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.index[id]
	return ok
}
