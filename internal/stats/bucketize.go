package stats

import (
	"errors"
	"time"

	"fitmetrics/internal/domain"
)

// ErrInvalidWindow is returned when a bucket window spans zero or fewer days.
var ErrInvalidWindow = errors.New("bucket window must span at least one day")

// Bucketize maps event timestamps onto a window of N trailing UTC calendar
// days ending with the day that contains nowMs. The result always holds
// exactly N buckets in ascending date order; days without events carry
// count 0. Events outside the window are dropped, not clamped.
// Pure: identical input yields identical output.
func Bucketize(timestamps []int64, days int, nowMs int64) ([]domain.DayBucket, error) {
	buckets, index, err := emptyWindow(days, nowMs)
	if err != nil {
		return nil, err
	}

	for _, ts := range timestamps {
		if i, ok := index[utcMidnightMs(ts)]; ok {
			buckets[i].Count++
		}
	}

	return buckets, nil
}

// BucketizeCounts merges pre-aggregated per-day counts (keyed by UTC midnight
// in Unix ms, as produced by the analytics store) into a zero-filled window.
// Days outside the window are dropped.
func BucketizeCounts(counts map[int64]int, days int, nowMs int64) ([]domain.DayBucket, error) {
	buckets, index, err := emptyWindow(days, nowMs)
	if err != nil {
		return nil, err
	}

	for day, count := range counts {
		if i, ok := index[day]; ok {
			buckets[i].Count += count
		}
	}

	return buckets, nil
}

// emptyWindow builds N consecutive zero-filled day buckets ending with the
// day containing nowMs, plus a day -> slice index lookup.
func emptyWindow(days int, nowMs int64) ([]domain.DayBucket, map[int64]int, error) {
	if days <= 0 {
		return nil, nil, ErrInvalidWindow
	}

	buckets := make([]domain.DayBucket, days)
	index := make(map[int64]int, days)

	day := addDays(utcMidnightMs(nowMs), -(days - 1))
	for i := 0; i < days; i++ {
		buckets[i] = domain.DayBucket{Day: day}
		index[day] = i
		day = addDays(day, 1)
	}

	return buckets, index, nil
}

// utcMidnightMs truncates a Unix-ms timestamp to its UTC calendar day.
func utcMidnightMs(ms int64) int64 {
	t := time.UnixMilli(ms).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
}

// addDays shifts a UTC midnight by n calendar days.
func addDays(dayMs int64, n int) int64 {
	return time.UnixMilli(dayMs).UTC().AddDate(0, 0, n).UnixMilli()
}
