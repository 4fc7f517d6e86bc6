// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/andriinero/inkspace-backend/internal/models"

	"gorm.io/gorm"
)

// dbError maps a store error onto the AppError taxonomy. AppErrors pass
// through unchanged; deadline and cancellation errors become timeouts.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewTimeoutError(err)
	}
	return models.NewInternalError(err)
}

// notFoundOr maps gorm.ErrRecordNotFound to NotFound and everything else
// through dbError.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return dbError(err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// page applies LIMIT/OFFSET. A zero limit means no limit.
func page(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		return db
	}
	return db.Limit(limit).Offset(offset)
}

// orderByIDs reorders rows to match ids, dropping ids with no row.
func orderByIDs[T any](ids []uint, rows []T, idOf func(T) uint) []T {
	byID := make(map[uint]T, len(rows))
	for _, r := range rows {
		byID[idOf(r)] = r
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
