package memtasklist

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/turnon/tasks/tasklist/common"
)

// memTaskList 内存中的任务列表
type memTaskList struct {
	lock      sync.RWMutex
	cache     map[int64]common.Task
	ids       []int64
	counter   int64
	validator common.Validator
	batchSize int
}

// New 创建内存任务列表
func New(cfg common.Config) *memTaskList {
	cfg = cfg.WithDefaults()
	return &memTaskList{
		cache:     make(map[int64]common.Task),
		validator: common.Validator{DateFormat: cfg.DateFormat},
		batchSize: cfg.BatchSize,
	}
}

func (list *memTaskList) debugf(str string, v ...any) {
	log.Debug().Str("mod", "memtasklist").Msgf(str, v...)
}

// Create 新建任务
func (list *memTaskList) Create(ctx context.Context, nt common.NewTask) (int64, error) {
	t := nt.Task()
	if err := list.validator.Validate(t); err != nil {
		return 0, err
	}

	list.lock.Lock()
	defer list.lock.Unlock()

	list.counter++
	t.ID = list.counter
	list.cache[t.ID] = t
	list.ids = append(list.ids, t.ID)

	list.debugf("created %d", t.ID)
	return t.ID, nil
}

// Get 按id取任务
func (list *memTaskList) Get(ctx context.Context, id int64) (common.Task, error) {
	list.lock.RLock()
	defer list.lock.RUnlock()

	t, ok := list.cache[id]
	if !ok {
		return common.Task{}, common.NotFound(id)
	}
	return t, nil
}

// All 按id顺序返回全部任务
func (list *memTaskList) All(ctx context.Context) ([]common.Task, error) {
	list.lock.RLock()
	defer list.lock.RUnlock()

	res := make([]common.Task, 0, len(list.ids))
	for _, id := range list.ids {
		res = append(res, list.cache[id])
	}
	return res, nil
}

// Update 部分更新
func (list *memTaskList) Update(ctx context.Context, id int64, u common.TaskUpdate) (common.Task, error) {
	list.lock.Lock()
	defer list.lock.Unlock()

	t, ok := list.cache[id]
	if !ok {
		return common.Task{}, common.NotFound(id)
	}
	updated := u.Apply(t)
	if err := list.validator.Validate(updated); err != nil {
		return common.Task{}, err
	}
	list.cache[id] = updated

	list.debugf("updated %d", id)
	return updated, nil
}

// Delete 删除任务，返回是否存在
func (list *memTaskList) Delete(ctx context.Context, id int64) (bool, error) {
	list.lock.Lock()
	defer list.lock.Unlock()

	if _, ok := list.cache[id]; !ok {
		return false, nil
	}
	delete(list.cache, id)
	for i, existing := range list.ids {
		if existing == id {
			list.ids = append(list.ids[:i], list.ids[i+1:]...)
			break
		}
	}

	list.debugf("deleted %d", id)
	return true, nil
}

// Search 搜索，每批按排序取紧跟在上一批最后一条之后的任务
func (list *memTaskList) Search(ctx context.Context, q common.SearchQuery) (common.Cursor, error) {
	if _, err := common.ParseSortField(string(q.SortBy)); err != nil {
		return nil, err
	}

	less := common.Less(q.SortBy, q.SortDesc)
	fetch := func(ctx context.Context, after *common.Task, limit int) ([]common.Task, error) {
		all, err := list.All(ctx)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(all, func(i, j int) bool {
			return less(all[i], all[j])
		})

		start := 0
		if after != nil {
			start = sort.Search(len(all), func(i int) bool { return less(*after, all[i]) })
		}
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		return all[start:end], nil
	}

	return common.NewBatchCursor(fetch, list.batchSize, func(t common.Task) bool {
		return common.Matches(t, q.Query)
	}), nil
}

// Close 内存列表无需关闭
func (list *memTaskList) Close(ctx context.Context) error {
	return nil
}
