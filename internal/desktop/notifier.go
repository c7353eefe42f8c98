package desktop

import (
	"context"
	"log/slog"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/T-Bhaskar/ebook-v2/pkg/viewer"
)

// dialogNotifier shows notices as native message dialogs. Dialogs always
// attach to the application window, whatever context the caller holds.
type dialogNotifier struct {
	app    *App
	logger *slog.Logger
}

func (n *dialogNotifier) Notify(_ context.Context, notice viewer.Notice) {
	ctx := n.app.ctx
	if ctx == nil {
		n.logger.Warn("notice before startup", "title", notice.Title, "message", notice.Message)
		return
	}

	kind := wailsruntime.InfoDialog
	if notice.Error {
		kind = wailsruntime.ErrorDialog
	}
	if _, err := wailsruntime.MessageDialog(ctx, wailsruntime.MessageDialogOptions{
		Type:    kind,
		Title:   notice.Title,
		Message: notice.Message,
	}); err != nil {
		n.logger.Error("failed to show message dialog", "error", err)
	}
}
