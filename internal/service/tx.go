package service

import (
	"database/sql"
	"log/slog"
)

// rollback откатывает транзакцию и логирует ошибку отката, если она случилась
func rollback(tx *sql.Tx, logger *slog.Logger) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
