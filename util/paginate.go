package util

import (
	"io"
	"math"
	"strconv"

	"github.com/turnon/tasks/tasklist/common"
)

// PageParams 分页参数，从1开始
type PageParams struct {
	Page int
	Size int
}

// ParsePageParams 解析查询参数，空值取缺省，小于1的按1处理
func ParsePageParams(page, size string, defaultSize int) (PageParams, error) {
	p := PageParams{Page: 1, Size: defaultSize}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return p, &common.ValidationError{Field: "page", Reason: "must be an integer"}
		}
		p.Page = n
	}
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return p, &common.ValidationError{Field: "size", Reason: "must be an integer"}
		}
		p.Size = n
	}
	return p.clamp(), nil
}

func (p PageParams) clamp() PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = 1
	}
	return p
}

// bounds 返回[from, to)，溢出时两端都取math.MaxInt
func (p PageParams) bounds() (int, int) {
	p = p.clamp()
	if p.Page-1 > math.MaxInt/p.Size {
		return math.MaxInt, math.MaxInt
	}
	from := (p.Page - 1) * p.Size
	if from > math.MaxInt-p.Size {
		return from, math.MaxInt
	}
	return from, from + p.Size
}

// Paginate 取出第page页，越界返回空切片
func Paginate[T any](elements []T, page, size int) []T {
	from, to := PageParams{Page: page, Size: size}.bounds()
	if from >= len(elements) {
		return []T{}
	}
	if to > len(elements) {
		to = len(elements)
	}
	return elements[from:to]
}

// PaginateStream 从流中跳过前面的页，只收集一页，遇到io.EOF结束
func PaginateStream[T any](next func() (T, error), page, size int) ([]T, error) {
	from, to := PageParams{Page: page, Size: size}.bounds()
	if from == math.MaxInt {
		return []T{}, nil
	}
	capacity := to - from
	if capacity > 64 {
		capacity = 64
	}
	res := make([]T, 0, capacity)
	for i := 0; i < to; i++ {
		elem, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if i >= from {
			res = append(res, elem)
		}
	}
	return res, nil
}
