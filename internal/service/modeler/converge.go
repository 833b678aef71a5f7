package modeler

import (
	"context"
	"errors"
	"fmt"

	"refinery-modeler/internal/domain"
)

// Progress log messages. Their text is relied on by callers reading logs.
const (
	msgApplied     = "Successfully applied annotation: "
	msgUnable      = "Unable to apply annotation: "
	msgNullIgnored = "Ignoring a null annotation"
)

// convergence is the outcome of applying an annotation sequence.
type convergence struct {
	applied   []*domain.Annotation
	unapplied []*domain.Annotation
	sweeps    int
}

// converge applies annotations to model until a full sweep over the pending
// ones makes no progress. Every sweep visits the pending annotations in
// their original order; an annotation that applies is never visited again.
// Whatever is still pending after a sweep without progress has failed for
// good and is reported once. Malformed annotations abort with an error.
func (s *Service) converge(ctx context.Context, model *domain.Domain, annotations []*domain.Annotation) (*convergence, error) {
	var pending []*domain.Annotation
	for _, a := range annotations {
		if a.IsNull() {
			s.logger.Debug(msgNullIgnored)
			continue
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		pending = append(pending, a)
	}

	out := &convergence{}
	for len(pending) > 0 {
		out.sweeps++
		var retry []*domain.Annotation
		for _, a := range pending {
			ok, err := s.applicator.Apply(ctx, a, model, s.store)
			if err != nil {
				var roleErr *domain.RoleNotConfiguredError
				if !errors.As(err, &roleErr) {
					return nil, fmt.Errorf("apply annotation %q: %w", a.Summary(), err)
				}
				s.logger.Debug("annotation not applicable", "annotation", a.Summary(), "error", err)
			}
			if ok && err == nil {
				s.logger.Info(msgApplied + a.Summary())
				out.applied = append(out.applied, a)
				continue
			}
			retry = append(retry, a)
		}
		if len(retry) == len(pending) {
			for _, a := range retry {
				s.logger.Info(msgUnable + a.Summary())
			}
			out.unapplied = retry
			break
		}
		pending = retry
	}
	return out, nil
}
