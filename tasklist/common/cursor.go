package common

import (
	"context"
	"io"
)

// FetchFunc 取排在after之后的一批已排序任务，after为nil时从头开始，返回少于limit条表示已取完
type FetchFunc func(ctx context.Context, after *Task, limit int) ([]Task, error)

// batchCursor 分批从存储读取，逐条过滤
type batchCursor struct {
	fetch     FetchFunc
	filter    func(Task) bool
	batchSize int

	after  *Task
	batch  []Task
	pos    int
	last   bool
	closed bool
}

// NewBatchCursor 创建分批游标，filter为nil时不过滤
func NewBatchCursor(fetch FetchFunc, batchSize int, filter func(Task) bool) Cursor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &batchCursor{fetch: fetch, filter: filter, batchSize: batchSize}
}

// Next 返回下一条匹配的任务
func (cur *batchCursor) Next(ctx context.Context) (Task, error) {
	for {
		if cur.closed {
			return Task{}, io.EOF
		}
		for cur.pos < len(cur.batch) {
			t := cur.batch[cur.pos]
			cur.pos++
			if cur.filter == nil || cur.filter(t) {
				return t, nil
			}
		}
		if cur.last {
			return Task{}, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}

		batch, err := cur.fetch(ctx, cur.after, cur.batchSize)
		if err != nil {
			return Task{}, err
		}
		if len(batch) > 0 {
			last := batch[len(batch)-1]
			cur.after = &last
		}
		cur.batch = batch
		cur.pos = 0
		cur.last = len(batch) < cur.batchSize
	}
}

// Reset 从头开始
func (cur *batchCursor) Reset() {
	cur.after = nil
	cur.batch = nil
	cur.pos = 0
	cur.last = false
	cur.closed = false
}

// Close 释放当前批次
func (cur *batchCursor) Close() error {
	cur.batch = nil
	cur.closed = true
	return nil
}
