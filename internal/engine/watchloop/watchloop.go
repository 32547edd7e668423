// Package watchloop serves watch tasks: it maps changed files to the tasks
// their watch rules name and re-runs those tasks.
package watchloop

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
)

var _ ports.WatchLoop = (*Loop)(nil)

// Loop implements ports.WatchLoop.
type Loop struct {
	newWatcher ports.WatcherFactory
	reloader   ports.Reloader
	resolver   ports.InputResolver
	logger     ports.Logger
}

// NewLoop creates a Loop. Every Watch call gets a fresh watcher from newWatcher.
func NewLoop(
	newWatcher ports.WatcherFactory,
	reloader ports.Reloader,
	resolver ports.InputResolver,
	logger ports.Logger,
) *Loop {
	return &Loop{
		newWatcher: newWatcher,
		reloader:   reloader,
		resolver:   resolver,
		logger:     logger,
	}
}

// Watch starts the live-reload server and the file watcher, then re-runs the
// tasks matched by every batch of changes until ctx is cancelled. A failing
// re-run is logged and the loop carries on.
func (l *Loop) Watch(ctx context.Context, graph *domain.Graph, task domain.Task, scheduler ports.Scheduler) error {
	reload := graph.Reload()
	addr := net.JoinHostPort(reload.Host, strconv.Itoa(reload.Port))
	if err := l.reloader.Listen(ctx, addr); err != nil {
		return err
	}

	w, err := l.newWatcher()
	if err != nil {
		return err
	}
	root := graph.Root()
	if err := w.Start(ctx, root); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	l.logger.Info(fmt.Sprintf("watching %s, live reload on %s", root, addr))

	for batch := range w.Events() {
		if ctx.Err() != nil {
			break
		}

		targets := l.match(root, task.Watches, batch)
		if len(targets) == 0 {
			continue
		}

		if err := scheduler.Run(ctx, graph, targets, ports.WithWatch()); err != nil {
			if ctx.Err() != nil {
				break
			}
			l.logger.Error(err)
		}
	}
	return nil
}

// match returns the tasks named by the rules any changed path matches, in
// rule order and without duplicates.
func (l *Loop) match(root string, rules []domain.Watch, batch []ports.WatchEvent) []string {
	var targets []string
	for _, event := range batch {
		rel, ok := relativePath(root, event.Path)
		if !ok {
			continue
		}

		matched := false
		for _, rule := range rules {
			if !l.resolver.Match(rule.Globs, rel) {
				continue
			}
			matched = true
			for _, name := range rule.Tasks {
				if !slices.Contains(targets, name.String()) {
					targets = append(targets, name.String())
				}
			}
		}
		if matched {
			l.logger.Info(fmt.Sprintf("%s %s", event.Operation, rel))
		}
	}
	return targets
}

func relativePath(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
