package sim

import (
	"context"
	"log/slog"
)

// DispatchLogger is a hook that logs the decisions of a scheduler.
type DispatchLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewDispatchLogger returns a new DispatchLogger that writes into the logger
// at the given level.
func NewDispatchLogger(logger *slog.Logger, level slog.Level) *DispatchLogger {
	return &DispatchLogger{logger: logger, level: level}
}

// Func writes the decision into the logger.
func (h *DispatchLogger) Func(ctx HookCtx) {
	f, ok := ctx.Item.(Flight)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosDispatch:
		detail := ctx.Detail.(DispatchDetail)
		h.log("departed", f, detail.Now,
			slog.Bool("from_queue", detail.FromQueue))
	case HookPosQueue:
		detail := ctx.Detail.(QueueDetail)
		h.log("queued", f, detail.Now,
			slog.String("scheduled", detail.Original.Start.String()),
			slog.Int("position", detail.Position))
	case HookPosExpire:
		detail := ctx.Detail.(ExpireDetail)
		h.log("landed", f, detail.Now)
	}
}

func (h *DispatchLogger) log(
	msg string,
	f Flight,
	now TimeOfDay,
	attrs ...slog.Attr,
) {
	attrs = append([]slog.Attr{
		slog.String("sim_time", now.String()),
		slog.String("flight", f.ID),
		slog.String("origin", f.Origin),
		slog.String("destination", f.Destination),
		slog.String("start", f.Start.String()),
		slog.Int("duration", f.Duration),
	}, attrs...)

	h.logger.LogAttrs(context.Background(), h.level, msg, attrs...)
}
