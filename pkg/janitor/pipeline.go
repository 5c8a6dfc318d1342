package janitor

import (
	"context"
	"fmt"
)

// Transform is a mutation applied to a Frame.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *Frame) (*Frame, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	steps []Transform
	onErr func(Transform, error)
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.steps = append(p.steps, t)
	return p
}

// Len reports the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// ContinueOnError makes Run hand step failures (including panics) to fn and
// carry on with the frame as it was before the failed step.
func (p *Pipeline) ContinueOnError(fn func(Transform, error)) *Pipeline {
	p.onErr = fn
	return p
}

func (p *Pipeline) Run(ctx context.Context, f *Frame) (*Frame, error) {
	cur := f
	for _, t := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := applyStep(ctx, t, cur)
		if err != nil {
			if p.onErr == nil {
				return nil, err
			}
			p.onErr(t, err)
			continue
		}
		cur = out
	}
	return cur, nil
}

func applyStep(ctx context.Context, t Transform, f *Frame) (out *Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%s: panic: %v", t.Name(), r)
		}
	}()
	return t.Apply(ctx, f)
}
