package audio

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Pipeline decodes narration off the playback path and publishes each step's asset to Slots as
// soon as it is ready.
type Pipeline interface {
	// Start queues a decode for every request and returns the slots they publish into. Steps
	// without a request are marked absent immediately. Decodes run in step order.
	//
	// Parameters:
	//   - steps: the number of steps in the plan
	//   - reqs: the narration requests, at most one per step
	//
	// Returns:
	//   - Slots: the slots for this plan
	Start(steps int, reqs []DecodeRequest) Slots

	// Preloaded returns slots already filled with assets, as produced by SplitClip. Nil entries
	// are marked absent.
	//
	// Parameters:
	//   - assets: one asset per step
	//
	// Returns:
	//   - Slots: the filled slots
	Preloaded(assets []*Asset) Slots

	// StartClip queues one decode for a clip covering the whole plan and publishes its per-step
	// parts, cut at splits, as soon as it is decoded.
	//
	// Parameters:
	//   - steps: the number of steps in the plan
	//   - clip: the concatenated narration
	//   - splits: step boundaries in seconds, see SplitClip
	//
	// Returns:
	//   - Slots: the slots for this plan
	StartClip(steps int, clip DecodeRequest, splits []float64) Slots

	// Load dispatches a Narration to Start or StartClip.
	Load(steps int, n Narration) Slots

	// Decodes returns how many decodes have run since the pipeline was created.
	Decodes() int

	// Cancel drops every decode that is still queued. Slots handed out before the call never
	// receive those assets; a decode already running finishes but its result is discarded.
	Cancel()

	// Close cancels queued decodes and stops the worker pool. Later calls to Start, StartClip
	// and Load return slots with every step marked absent.
	Close()
}

// Narration is everything a narrator produced for a plan: either one clip per step or a single
// clip with the boundaries between steps.
type Narration struct {
	Clips  []DecodeRequest `json:"clips,omitempty"`
	Clip   *DecodeRequest  `json:"clip,omitempty"`
	Splits []float64       `json:"splits,omitempty"`
}

// Empty reports whether the narration carries no audio.
func (n Narration) Empty() bool {
	return len(n.Clips) == 0 && (n.Clip == nil || n.Clip.EncodedAudio == "")
}

type pipeline struct {
	logger    *slog.Logger
	pool      worker.DynamicWorkerPool
	workers   int
	queueSize int
	idle      time.Duration
	decode    func(DecodeRequest) DecodeResult
	decodes   atomic.Int64
	taskID    atomic.Int64
	gen       atomic.Int64
	closed    atomic.Bool
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline backed by a worker pool.
//
// Parameters:
//   - options: variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		logger:    slog.Default(),
		workers:   1,
		queueSize: 64,
		idle:      2 * time.Second,
		decode:    Decode,
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = p.logger.With("component", "audio")
	p.pool = worker.NewDynamicWorkerPool(p.workers, p.queueSize, p.idle)
	return p
}

func (p *pipeline) Start(steps int, reqs []DecodeRequest) Slots {
	s := NewSlots(steps)
	if p.closed.Load() {
		return absent(s, steps)
	}
	gen := p.gen.Load()
	byStep := make(map[int]DecodeRequest, len(reqs))
	for _, r := range reqs {
		if r.StepIndex < 0 || r.StepIndex >= steps {
			p.logger.Warn("dropping narration for unknown step", "step", r.StepIndex, "steps", steps)
			continue
		}
		byStep[r.StepIndex] = r
	}

	order := make([]int, 0, len(byStep))
	for i := 0; i < steps; i++ {
		if _, ok := byStep[i]; ok {
			order = append(order, i)
		} else {
			s.Fail(i, ErrSlotAbsent)
		}
	}

	// submission may block on a full queue; keep it off the caller
	go func() {
		for _, i := range order {
			if p.stale(gen) {
				return
			}
			req := byStep[i]
			id := int(p.taskID.Add(1))
			p.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					if p.stale(gen) {
						return nil, nil
					}
					return nil, p.run(s, req, gen)
				},
			})
		}
	}()
	return s
}

func (p *pipeline) run(s Slots, req DecodeRequest, gen int64) error {
	start := time.Now()
	res := p.decode(req)
	p.decodes.Add(1)
	if p.stale(gen) {
		return nil
	}
	if res.Err != nil {
		p.logger.Warn("narration decode failed", "step", req.StepIndex, "error", res.Err)
		s.Fail(req.StepIndex, res.Err)
		return fmt.Errorf("step %d: %w", req.StepIndex, res.Err)
	}
	a := NewAsset(res)
	s.Publish(req.StepIndex, a)
	p.logger.Debug("narration decoded",
		"step", req.StepIndex,
		"duration", a.Duration(),
		"took", time.Since(start))
	return nil
}

func (p *pipeline) StartClip(steps int, clip DecodeRequest, splits []float64) Slots {
	s := NewSlots(steps)
	if p.closed.Load() {
		return absent(s, steps)
	}
	gen := p.gen.Load()
	id := int(p.taskID.Add(1))
	go p.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			if p.stale(gen) {
				return nil, nil
			}
			res := p.decode(clip)
			p.decodes.Add(1)
			if p.stale(gen) {
				return nil, nil
			}
			if res.Err != nil {
				p.logger.Warn("narration decode failed", "clip", true, "error", res.Err)
				for i := 0; i < steps; i++ {
					s.Fail(i, res.Err)
				}
				return nil, res.Err
			}
			parts := SplitClip(NewAsset(res), splits)
			for i := 0; i < steps; i++ {
				if i < len(parts) && parts[i].FrameCount > 0 {
					s.Publish(i, parts[i])
				} else {
					s.Fail(i, ErrSlotAbsent)
				}
			}
			p.logger.Debug("narration clip decoded", "parts", len(parts), "steps", steps)
			return nil, nil
		},
	})
	return s
}

func (p *pipeline) Load(steps int, n Narration) Slots {
	if n.Clip != nil {
		return p.StartClip(steps, *n.Clip, n.Splits)
	}
	return p.Start(steps, n.Clips)
}

func (p *pipeline) Preloaded(assets []*Asset) Slots {
	s := NewSlots(len(assets))
	for i, a := range assets {
		if a == nil || a.FrameCount == 0 {
			s.Fail(i, ErrSlotAbsent)
			continue
		}
		s.Publish(i, a)
	}
	return s
}

func (p *pipeline) Decodes() int { return int(p.decodes.Load()) }

func (p *pipeline) Cancel() {
	n := p.gen.Add(1)
	p.pool.ClearTaskQueue()
	p.logger.Debug("queued decodes cancelled", "generation", n)
}

func (p *pipeline) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.Cancel()
	p.pool.Stop()
	p.logger.Debug("pipeline closed")
}

// stale reports whether work queued under gen has been cancelled since.
func (p *pipeline) stale(gen int64) bool {
	return p.closed.Load() || p.gen.Load() != gen
}

func absent(s Slots, steps int) Slots {
	for i := 0; i < steps; i++ {
		s.Fail(i, ErrSlotAbsent)
	}
	return s
}
