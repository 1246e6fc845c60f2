package cron

import (
	"fmt"
	"time"

	"github.com/sahilchouksey/exam-predict-api/model"
)

// stalePendingAge is how long an upload may stay pending before the dispatch
// is assumed lost
const stalePendingAge = 24 * time.Hour

// ReapStuckProcessing marks uploads stuck in processing as failed.
// A worker crash can leave an upload in processing forever; anything older
// than the configured threshold is unrecoverable because the worker holds no
// durable resume state.
func (m *CronManager) ReapStuckProcessing() {
	jobName := "reap_stuck_processing"

	cutoff := time.Now().Add(-m.reaperThreshold)

	result := m.db.Model(&model.Upload{}).
		Where("status = ? AND updated_at < ?", model.UploadProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":           model.UploadFailed,
			"processing_error": fmt.Sprintf("processing exceeded %s, assumed stuck", m.reaperThreshold),
		})

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to reap stuck uploads: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Reaped %d stuck upload(s)", result.RowsAffected))
}

// CleanupStalePending fails uploads that stayed pending far longer than any
// queue delay can explain, so users see a terminal status instead of an
// upload that never moves.
func (m *CronManager) CleanupStalePending() {
	jobName := "cleanup_stale_pending"

	cutoff := time.Now().Add(-stalePendingAge)

	result := m.db.Model(&model.Upload{}).
		Where("status = ? AND created_at < ?", model.UploadPending, cutoff).
		Updates(map[string]interface{}{
			"status":           model.UploadFailed,
			"processing_error": "upload was never picked up for processing",
		})

	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to clean up stale pending uploads: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Failed %d stale pending upload(s)", result.RowsAffected))
}
