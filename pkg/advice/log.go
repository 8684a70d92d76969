package advice

import (
	"context"
	"log/slog"

	"github.com/aretw0/weaver/pkg/domain"
)

// Log returns hooks that log every call before it runs and after it returns.
// Failed calls are logged at Warn regardless of level.
func Log(logger *slog.Logger, level slog.Level) domain.HookSet {
	before := func(ctx context.Context, inv *domain.Invocation) error {
		logger.Log(ctx, level, "call",
			"target", inv.Target.String(),
			"invocation", inv.ID,
			"args", len(inv.Args),
		)
		return nil
	}
	after := func(ctx context.Context, inv *domain.Invocation, _ any, err error) error {
		if err != nil {
			logger.Log(ctx, max(level, slog.LevelWarn), "call failed",
				"target", inv.Target.String(),
				"invocation", inv.ID,
				"error", err,
			)
			return nil
		}
		logger.Log(ctx, level, "call returned",
			"target", inv.Target.String(),
			"invocation", inv.ID,
		)
		return nil
	}
	return domain.HookSet{
		Before: []domain.Before{before},
		After:  []domain.After{after},
	}
}
