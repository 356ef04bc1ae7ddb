package jobs

import (
	"context"
	"fmt"
	"path/filepath"

	"partsdesk/internal/logger"
)

// RefreshActiveTable reloads the watched table from the server
func (jr *JobRunner) RefreshActiveTable() {
	jr.runWithRecovery("RefreshActiveTable", func() {
		ctx := context.Background()
		if t := jr.config.Timeout(); t > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t)
			defer cancel()
		}

		if err := jr.desk.Refresh(ctx); err != nil {
			logger.Warn("Failed to refresh table", "view", jr.view, "error", err)
			return
		}
		logger.Info("Table refreshed", "view", jr.view)
	})
}

// ExportActiveTable writes the watched table to a timestamped workbook in
// the export directory. It exports what the last refresh loaded.
func (jr *JobRunner) ExportActiveTable() {
	jr.runWithRecovery("ExportActiveTable", func() {
		path := jr.snapshotPath()
		if err := jr.desk.Export(path); err != nil {
			logger.Warn("Failed to export table", "view", jr.view, "path", path, "error", err)
			return
		}
		logger.Info("Table exported", "view", jr.view, "path", path)
	})
}

func (jr *JobRunner) snapshotPath() string {
	name := fmt.Sprintf("%s-%s.xlsx", jr.view, jr.now().Format("20060102-150405"))
	return filepath.Join(jr.config.Export.Dir, name)
}
