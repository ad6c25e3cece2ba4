package common

import "strings"

// SortField 可排序的字段
type SortField string

const (
	SortNone        SortField = ""
	SortTitle       SortField = "title"
	SortDescription SortField = "description"
	SortDueDate     SortField = "due_date"
	SortTaskID      SortField = "task_id"
)

// ParseSortField 只接受枚举内的字段
func ParseSortField(name string) (SortField, error) {
	switch f := SortField(name); f {
	case SortNone, SortTitle, SortDescription, SortDueDate, SortTaskID:
		return f, nil
	}
	return SortNone, &InvalidSortError{Field: name}
}

// Key 任务在该文本字段上的值
func (f SortField) Key(t Task) string {
	switch f {
	case SortTitle:
		return t.Title
	case SortDescription:
		return t.Description
	case SortDueDate:
		return t.DueDate
	}
	return ""
}

// SearchQuery 搜索条件
type SearchQuery struct {
	Query    string
	SortBy   SortField
	SortDesc bool
}

// Matches 标题或描述包含query（区分大小写）
func Matches(t Task, query string) bool {
	return strings.Contains(t.Title, query) || strings.Contains(t.Description, query)
}

// Less 按字段排序，相同时按task_id升序
func Less(field SortField, desc bool) func(a, b Task) bool {
	return func(a, b Task) bool {
		c := compare(field, a, b)
		if c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID < b.ID
	}
}

func compare(field SortField, a, b Task) int {
	switch field {
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortDescription:
		return strings.Compare(a.Description, b.Description)
	case SortDueDate:
		return strings.Compare(a.DueDate, b.DueDate)
	case SortTaskID:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
	}
	return 0
}
