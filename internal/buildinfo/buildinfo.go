package buildinfo

import (
	"context"
	"log/slog"
	"runtime/debug"
)

// Log writes the tool name together with the module version and VCS revision
// it was built from.
func Log(logger *slog.Logger, tool string) {
	attrs := []slog.Attr{slog.String("tool", tool)}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "Build info unavailable", attrs...)
		return
	}

	attrs = append(attrs,
		slog.String("go_version", info.GoVersion),
		slog.String("module", info.Main.Path),
		slog.String("version", info.Main.Version),
	)

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			attrs = append(attrs, slog.String("revision", s.Value))
		case "vcs.time":
			attrs = append(attrs, slog.String("revision_time", s.Value))
		case "vcs.modified":
			attrs = append(attrs, slog.Bool("modified", s.Value == "true"))
		}
	}

	logger.LogAttrs(context.Background(), slog.LevelInfo, "Build info", attrs...)
}
