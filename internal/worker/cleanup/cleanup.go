// Package cleanup は期限切れ管理者セッションの自動削除ジョブを提供する。
// ログアウトされないまま期限を迎えたセッションを定期バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPruner は期限切れセッションの削除を抽象化するインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionPruner
	logger   *slog.Logger
	Interval time.Duration // 実行間隔（デフォルト: 1時間）
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessions SessionPruner, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
		Interval: time.Hour,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start はIntervalごとにRunを繰り返すループを開始する。
// ctxのキャンセルで停止する。呼び出し側でゴルーチンとして起動すること。
func (j *CleanupJob) Start(ctx context.Context) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// 実行失敗はログ済みなので次の周期で再試行する
			_ = j.Run(ctx)
		case <-ctx.Done():
			return
		}
	}
}
