package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateCourseCache invalidates all course-related caches using pipeline
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, cursoID string, instructorID string) {
	// Delete specific keys using single call
	SafeDelete(ctx, cm.Course,
		fmt.Sprintf("id:%s", cursoID),
		fmt.Sprintf("details:%s", cursoID))

	// Invalidate patterns
	SafeInvalidatePattern(ctx, cm.Course, fmt.Sprintf("instructor:%s:*", instructorID))
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("curso:%s:*", cursoID))
}

// InvalidateProfileCache invalidates all profile-related caches
func InvalidateProfileCache(ctx context.Context, cm *CacheManager, profileID string, email string) {
	SafeDelete(ctx, cm.Profile,
		fmt.Sprintf("id:%s", profileID),
		fmt.Sprintf("email:%s", email))
	SafeInvalidatePattern(ctx, cm.Profile, "list:*")
}
