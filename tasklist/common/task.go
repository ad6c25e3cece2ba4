package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"
)

// Task 代表一个任务
type Task struct {
	ID          int64  `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

// NewTask 新建任务的参数
type NewTask struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date" binding:"required"`
}

// Task 转成未分配id的任务
func (nt NewTask) Task() Task {
	return Task{Title: nt.Title, Description: nt.Description, DueDate: nt.DueDate}
}

// TaskUpdate 部分更新，nil表示不修改
type TaskUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
}

// IsEmpty 没有任何字段需要修改
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil
}

// Apply 把修改合并到任务上，id不变
func (u TaskUpdate) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.DueDate != nil {
		t.DueDate = *u.DueDate
	}
	return t
}

// DecodeTaskUpdate 严格解析更新请求，未知字段报错，必填字段不能显式置为null
func DecodeTaskUpdate(r io.Reader) (TaskUpdate, error) {
	var u TaskUpdate
	body, err := io.ReadAll(r)
	if err != nil {
		return u, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&u); err != nil {
		if field, ok := unknownField(err); ok {
			if field == "task_id" {
				return u, &ValidationError{Field: field, Reason: "is immutable"}
			}
			return u, &ValidationError{Field: field, Reason: "unknown field"}
		}
		return u, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return u, err
	}
	for _, field := range []string{"title", "due_date"} {
		if v, ok := raw[field]; ok && string(bytes.TrimSpace(v)) == "null" {
			return TaskUpdate{}, &ValidationError{Field: field, Reason: "must not be null"}
		}
	}
	return u, nil
}

// unknownField 从encoding/json的错误中取出未知字段名
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

// Validator 校验任务字段
type Validator struct {
	DateFormat string
}

// Validate 校验完整的任务记录
func (v Validator) Validate(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	return v.ValidateDueDate(t.DueDate)
}

// ValidateDueDate 日期必须按格式解析，且格式化后与原文一致
func (v Validator) ValidateDueDate(dueDate string) error {
	layout := v.DateFormat
	if layout == "" {
		layout = DefaultDateFormat
	}
	if dueDate == "" {
		return &ValidationError{Field: "due_date", Reason: "is required"}
	}
	parsed, err := time.Parse(layout, dueDate)
	if err != nil || parsed.Format(layout) != dueDate {
		return &ValidationError{Field: "due_date", Reason: "date could not be parsed: " + dueDate}
	}
	return nil
}

// IsValidation 是否校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
