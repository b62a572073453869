package services

import (
	"fmt"
	"sort"
	"time"

	"pqr_flow_app_go/models"

	"gorm.io/gorm"
)

// GroupBy selects the dimension counts are grouped on
type GroupBy string

const (
	GroupByType     GroupBy = "type"
	GroupByStatus   GroupBy = "status"
	GroupByChannel  GroupBy = "channel"
	GroupByActivity GroupBy = "activity"
	GroupByEntity   GroupBy = "entity"
	GroupByMonth    GroupBy = "month"
	GroupByYear     GroupBy = "year"
)

// PendingCasesLimit is the size of the dashboard pending list
const PendingCasesLimit = 10

// ReportFilter restricts the records a report counts. Both date bounds are
// inclusive at day granularity; empty lists do not filter.
type ReportFilter struct {
	From       *time.Time
	To         *time.Time
	Types      []string
	Statuses   []string
	Channels   []string
	Activities []string
}

// LabelCount is one group of a report
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// CaseStats summarises the filtered cases
type CaseStats struct {
	Total     int64        `json:"total"`
	Overdue   int64        `json:"overdue"`
	ByType    []LabelCount `json:"by_type"`
	ByStatus  []LabelCount `json:"by_status"`
	ByChannel []LabelCount `json:"by_channel"`
}

// ActivityEntityCount counts other activities per activity and entity
type ActivityEntityCount struct {
	Activity string `json:"activity"`
	Entity   string `json:"entity"`
	Count    int64  `json:"count"`
}

// GeneralReport combines case and other-activity totals over all time
type GeneralReport struct {
	Cases           []LabelCount `json:"cases"`
	OtherActivities []LabelCount `json:"other_activities"`
}

// DashboardStats is the landing page summary
type DashboardStats struct {
	TotalCases   int64        `json:"total"`
	TotalFolders int64        `json:"folders"`
	ByStatus     []LabelCount `json:"by_status"`
}

// labelCounter accumulates counts; blank labels are counted as unknown
type labelCounter map[string]int64

func (c labelCounter) add(label string) {
	if label == "" {
		label = models.UnknownLabel
	}
	c[label]++
}

// sorted returns the groups ordered by byte-wise label comparison
func (c labelCounter) sorted() []LabelCount {
	out := make([]LabelCount, 0, len(c))
	for label, count := range c {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ParseGroupBy validates a group-by value, using def when s is empty
func ParseGroupBy(s string, def GroupBy) (GroupBy, error) {
	if s == "" {
		return def, nil
	}
	switch g := GroupBy(s); g {
	case GroupByType, GroupByStatus, GroupByChannel, GroupByActivity, GroupByEntity, GroupByMonth, GroupByYear:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown group %q", ErrValidation, s)
}

func periodLabel(t time.Time, g GroupBy) string {
	if g == GroupByYear {
		return t.Format("2006")
	}
	return t.Format("2006-01")
}

func applyDateRange(query *gorm.DB, column string, filter ReportFilter) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", StartOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where(column+" <= ?", EndOfDay(*filter.To))
	}
	return query
}

func filteredCases(database *gorm.DB, filter ReportFilter) *gorm.DB {
	query := applyDateRange(database.Model(&models.Case{}), "filed_at", filter)
	if len(filter.Types) > 0 {
		query = query.Where("case_type IN ?", filter.Types)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if len(filter.Channels) > 0 {
		query = query.Where("channel IN ?", filter.Channels)
	}
	return query
}

func filteredOtherActivities(database *gorm.DB, filter ReportFilter) *gorm.DB {
	query := applyDateRange(database.Model(&models.OtherActivity{}), "occurred_at", filter)
	if len(filter.Activities) > 0 {
		query = query.Where("activity IN ?", filter.Activities)
	}
	return query
}

// caseRow holds the columns reports read from cases
type caseRow struct {
	CaseType string
	Status   string
	Channel  *string
	FiledAt  time.Time
	DueDate  *time.Time
}

func loadCaseRows(database *gorm.DB, filter ReportFilter) ([]caseRow, error) {
	var rows []caseRow
	err := filteredCases(database, filter).
		Select("case_type", "status", "channel", "filed_at", "due_date").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cases for report: %w", err)
	}
	return rows, nil
}

// CountCases groups the filtered cases by type, status, channel, month or year
func CountCases(database *gorm.DB, filter ReportFilter, groupBy GroupBy) ([]LabelCount, error) {
	switch groupBy {
	case GroupByType, GroupByStatus, GroupByChannel, GroupByMonth, GroupByYear:
	default:
		return nil, fmt.Errorf("%w: cases cannot be grouped by %q", ErrValidation, groupBy)
	}

	rows, err := loadCaseRows(database, filter)
	if err != nil {
		return nil, err
	}

	counter := labelCounter{}
	for _, r := range rows {
		switch groupBy {
		case GroupByType:
			counter.add(r.CaseType)
		case GroupByStatus:
			counter.add(r.Status)
		case GroupByChannel:
			counter.add(derefString(r.Channel))
		default:
			counter.add(periodLabel(r.FiledAt, groupBy))
		}
	}
	return counter.sorted(), nil
}

// ComputeCaseStats counts the filtered cases by type, status and channel in a
// single pass. Overdue uses now as the reference instant.
func ComputeCaseStats(database *gorm.DB, filter ReportFilter, now time.Time) (*CaseStats, error) {
	rows, err := loadCaseRows(database, filter)
	if err != nil {
		return nil, err
	}

	byType, byStatus, byChannel := labelCounter{}, labelCounter{}, labelCounter{}
	stats := &CaseStats{}
	for _, r := range rows {
		stats.Total++
		c := models.Case{Status: r.Status, DueDate: r.DueDate}
		if c.IsOverdue(now) {
			stats.Overdue++
		}
		byType.add(r.CaseType)
		byStatus.add(r.Status)
		byChannel.add(derefString(r.Channel))
	}
	stats.ByType = byType.sorted()
	stats.ByStatus = byStatus.sorted()
	stats.ByChannel = byChannel.sorted()
	return stats, nil
}

// CountOtherActivities groups the filtered other activities by activity, entity, month or year
func CountOtherActivities(database *gorm.DB, filter ReportFilter, groupBy GroupBy) ([]LabelCount, error) {
	switch groupBy {
	case GroupByActivity, GroupByEntity, GroupByMonth, GroupByYear:
	default:
		return nil, fmt.Errorf("%w: other activities cannot be grouped by %q", ErrValidation, groupBy)
	}

	var rows []models.OtherActivity
	err := filteredOtherActivities(database, filter).
		Select("activity", "entity", "occurred_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load other activities for report: %w", err)
	}

	counter := labelCounter{}
	for _, r := range rows {
		switch groupBy {
		case GroupByActivity:
			counter.add(r.Activity)
		case GroupByEntity:
			counter.add(r.Entity)
		default:
			counter.add(periodLabel(r.OccurredAt, groupBy))
		}
	}
	return counter.sorted(), nil
}

// OtherActivityMatrix counts the filtered other activities per (activity, entity)
func OtherActivityMatrix(database *gorm.DB, filter ReportFilter) ([]ActivityEntityCount, error) {
	var rows []models.OtherActivity
	err := filteredOtherActivities(database, filter).
		Select("activity", "entity").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load other activities for report: %w", err)
	}

	type key struct{ activity, entity string }
	counts := map[key]int64{}
	for _, r := range rows {
		k := key{activity: r.Activity, entity: r.Entity}
		if k.activity == "" {
			k.activity = models.UnknownLabel
		}
		if k.entity == "" {
			k.entity = models.UnknownLabel
		}
		counts[k]++
	}

	out := make([]ActivityEntityCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ActivityEntityCount{Activity: k.activity, Entity: k.entity, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Activity != out[j].Activity {
			return out[i].Activity < out[j].Activity
		}
		return out[i].Entity < out[j].Entity
	})
	return out, nil
}

// BuildGeneralReport counts all cases by type and all other activities by activity
func BuildGeneralReport(database *gorm.DB) (*GeneralReport, error) {
	cases, err := CountCases(database, ReportFilter{}, GroupByType)
	if err != nil {
		return nil, err
	}
	others, err := CountOtherActivities(database, ReportFilter{}, GroupByActivity)
	if err != nil {
		return nil, err
	}
	return &GeneralReport{Cases: cases, OtherActivities: others}, nil
}

// GetDashboardStats counts cases, folders and cases per status
func GetDashboardStats(database *gorm.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}
	if err := database.Model(&models.Case{}).Count(&stats.TotalCases).Error; err != nil {
		return nil, fmt.Errorf("failed to count cases: %w", err)
	}
	if err := database.Model(&models.CaseFolder{}).Count(&stats.TotalFolders).Error; err != nil {
		return nil, fmt.Errorf("failed to count folders: %w", err)
	}
	byStatus, err := CountCases(database, ReportFilter{}, GroupByStatus)
	if err != nil {
		return nil, err
	}
	stats.ByStatus = byStatus
	return stats, nil
}

// PendingCases returns the in-progress cases with a due date, soonest first
func PendingCases(database *gorm.DB) ([]models.Case, error) {
	var cases []models.Case
	err := database.Omit(blobColumns...).
		Preload("Requester").
		Where("status = ? AND due_date IS NOT NULL", models.CaseStatusInProgress).
		Order("due_date ASC").
		Order("case_number ASC").
		Limit(PendingCasesLimit).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending cases: %w", err)
	}
	return cases, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
