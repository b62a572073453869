package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"pqr_flow_app_go/db"
	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// MaxCaseNumberAttempts bounds the retries of a filing transaction that lost
// a case number race
const MaxCaseNumberAttempts = 5

// caseNumberMu serialises allocations made by this process. The unique index
// on case_number still guards against other writers.
var caseNumberMu sync.Mutex

// FormatCaseNumber renders a case number as {year}-{prefix}-{seq:04d}.
// Sequences above 9999 simply grow wider.
func FormatCaseNumber(year int, prefix string, seq int) string {
	if prefix == "" {
		prefix = models.DefaultCaseNumberPrefix
	}
	return fmt.Sprintf("%d-%s-%04d", year, prefix, seq)
}

// ParseCaseSequence extracts the sequence of a case number issued for year and
// prefix. Numbers in any other shape, such as manual overrides, report false.
func ParseCaseSequence(number string, year int, prefix string) (int, bool) {
	if prefix == "" {
		prefix = models.DefaultCaseNumberPrefix
	}
	head := fmt.Sprintf("%d-%s-", year, prefix)
	if !strings.HasPrefix(number, head) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(number, head))
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// NextCaseNumber computes the next case number for the calendar year of now.
// The candidate is one more than the number of cases filed that year. When the
// candidate is already taken (a deleted case or a manual override left the
// count behind), the highest issued sequence of the year plus one is used.
// Must run inside the transaction that inserts the case.
func NextCaseNumber(tx *gorm.DB, prefix string, now time.Time) (string, error) {
	year := now.Year()
	start, end := YearBounds(year, now.Location())

	var count int64
	if err := tx.Model(&models.Case{}).
		Where("filed_at >= ? AND filed_at < ?", start, end).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count cases: %w", err)
	}

	candidate := FormatCaseNumber(year, prefix, int(count)+1)
	taken, err := caseNumberExists(tx, candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}

	maxSeq, err := maxCaseSequence(tx, year, prefix)
	if err != nil {
		return "", err
	}
	next := int(count) + 1
	if maxSeq+1 > next {
		next = maxSeq + 1
	}
	return FormatCaseNumber(year, prefix, next), nil
}

func caseNumberExists(tx *gorm.DB, number string) (bool, error) {
	var n int64
	if err := tx.Model(&models.Case{}).Where("case_number = ?", number).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check case number: %w", err)
	}
	return n > 0, nil
}

func maxCaseSequence(tx *gorm.DB, year int, prefix string) (int, error) {
	var numbers []string
	pattern := FormatCaseNumber(year, prefix, 0)
	pattern = strings.TrimSuffix(pattern, "0000") + "%"
	if err := tx.Model(&models.Case{}).
		Where("case_number LIKE ?", pattern).
		Pluck("case_number", &numbers).Error; err != nil {
		return 0, fmt.Errorf("failed to read case numbers: %w", err)
	}

	maxSeq := 0
	for _, n := range numbers {
		if seq, ok := ParseCaseSequence(n, year, prefix); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

// withCaseNumberRetry runs fn in a fresh transaction until it succeeds, fails
// with a non-retryable error, or MaxCaseNumberAttempts is reached.
func withCaseNumberRetry(database *gorm.DB, fn func(tx *gorm.DB) error) error {
	caseNumberMu.Lock()
	defer caseNumberMu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= MaxCaseNumberAttempts; attempt++ {
		err := database.Transaction(fn)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKey(err) && !db.IsWriteContention(err) {
			return err
		}
		lastErr = err
		caseNumberConflictsTotal.Inc()
		log.Printf("[CASE] case number allocation attempt %d failed: %v", attempt, err)
		time.Sleep(time.Duration(attempt*10) * time.Millisecond)
	}
	log.Printf("[CASE] giving up on case number allocation after %d attempts: %v", MaxCaseNumberAttempts, lastErr)
	return fmt.Errorf("%w: could not allocate a unique case number, retry the request", ErrConflict)
}
