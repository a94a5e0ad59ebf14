package filetug

import (
	"context"
	"time"

	"github.com/filetug/tugfm/pkg/preview"
)

var taskPollInterval = 500 * time.Millisecond

// Pump forwards preview events and task progress to the UI loop until ctx is done
// or the preview controller stops.
func (nav *Navigator) Pump(ctx context.Context) error {
	ticker := time.NewTicker(taskPollInterval)
	defer ticker.Stop()
	events := nav.deps.Controller.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return preview.ErrWorkerStopped
			}
			nav.app.QueueUpdateDraw(func() {
				nav.applyPreviewEvent(ev)
			})
		case <-nav.deps.Manager.Ready():
			nav.app.QueueUpdateDraw(nav.pollTasks)
		case <-ticker.C:
			nav.app.QueueUpdateDraw(nav.pollTasks)
		}
	}
}

// applyPreviewEvent hands ev to the tab that requested it. Events nobody waits for go to
// the active tab, which drops them as stale.
func (nav *Navigator) applyPreviewEvent(ev preview.Event) {
	target := nav.browser.ActiveTab()
	for _, tab := range nav.browser.Tabs() {
		if tab.Session.CurrentID() == ev.ID {
			target = tab
			break
		}
	}
	if target.Session.Apply(ev) && target == nav.browser.ActiveTab() {
		nav.renderPreview()
	}
}

func (nav *Navigator) pollTasks() {
	manager := nav.deps.Manager
	manager.ProcessPendingTasks()
	if manager.UpdateTaskStatuses() {
		if paths := manager.TakeRefreshPaths(); len(paths) > 0 && nav.browser.RefreshAffected(paths) {
			nav.renderFiles()
			nav.renderPreview()
		}
		nav.renderTabs()
	}
	nav.renderTasks()
}
