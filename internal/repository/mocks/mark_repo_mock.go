package mocks

import (
	"LeaveAMark/internal/model"
	"LeaveAMark/internal/pkg/geo"
	"context"
	"slices"
	"sync"
	"time"
)

// MockMarkRepo is an in-memory implementation of repository.MarkRepo for testing
type MockMarkRepo struct {
	mu    sync.RWMutex
	marks map[string]*model.Mark

	// 注入错误
	CreateErr     error
	DeactivateErr error
	IncrementErr  error

	DeactivateCalls int
}

func NewMockMarkRepo() *MockMarkRepo {
	return &MockMarkRepo{
		marks: make(map[string]*model.Mark),
	}
}

// SetData 直接写入测试数据
func (m *MockMarkRepo) SetData(marks ...*model.Mark) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mark := range marks {
		cp := *mark
		m.marks[mark.ID] = &cp
	}
}

// Get 读取当前存储状态（副本）
func (m *MockMarkRepo) Get(id string) *model.Mark {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mark, ok := m.marks[id]
	if !ok {
		return nil
	}
	cp := *mark
	return &cp
}

func (m *MockMarkRepo) CreateMark(_ context.Context, mark *model.Mark) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.SetData(mark)
	return nil
}

func (m *MockMarkRepo) GetMarkByID(_ context.Context, id string) (*model.Mark, error) {
	return m.Get(id), nil
}

func (m *MockMarkRepo) GetMarksByIDs(_ context.Context, ids []string) ([]*model.Mark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Mark, 0, len(ids))
	for _, id := range ids {
		if mark, ok := m.marks[id]; ok {
			cp := *mark
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockMarkRepo) GetActiveMarksInBounds(_ context.Context, box geo.Box) ([]*model.Mark, error) {
	return m.filter(func(mark *model.Mark) bool {
		return mark.IsActive &&
			mark.Latitude >= box.South && mark.Latitude <= box.North &&
			mark.Longitude >= box.West && mark.Longitude <= box.East
	}, true), nil
}

func (m *MockMarkRepo) GetActiveMarksSince(_ context.Context, since time.Time) ([]*model.Mark, error) {
	return m.filter(func(mark *model.Mark) bool {
		return mark.IsActive && !mark.CreatedAt.Before(since)
	}, true), nil
}

func (m *MockMarkRepo) GetThread(_ context.Context, id string) ([]*model.Mark, error) {
	return m.filter(func(mark *model.Mark) bool {
		return mark.IsActive && (mark.ID == id || (mark.ParentID != nil && *mark.ParentID == id))
	}, false), nil
}

// bumpViewCount 供 MockMarkViewRepo 模拟事务内的浏览量自增
func (m *MockMarkRepo) bumpViewCount(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mark, ok := m.marks[id]; ok {
		mark.ViewCount++
	}
}

func (m *MockMarkRepo) IncrementAddCount(_ context.Context, id string) error {
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mark, ok := m.marks[id]; ok {
		mark.AddCount++
	}
	return nil
}

func (m *MockMarkRepo) UpdateCanvasContent(_ context.Context, id string, content string, imageURL *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mark, ok := m.marks[id]
	if !ok || mark.Type != model.MarkTypeCanvas {
		return nil
	}
	mark.Content = content
	if imageURL != nil {
		url := *imageURL
		mark.ImageURL = &url
	}
	return nil
}

func (m *MockMarkRepo) DeactivateCreatedBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeactivateCalls++
	if m.DeactivateErr != nil {
		return 0, m.DeactivateErr
	}
	var affected int64
	for _, mark := range m.marks {
		if mark.IsActive && mark.CreatedAt.Before(before) {
			mark.IsActive = false
			affected++
		}
	}
	return affected, nil
}

// filter 返回满足条件的副本，newestFirst 控制按 created_at 排序方向
func (m *MockMarkRepo) filter(keep func(*model.Mark) bool, newestFirst bool) []*model.Mark {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Mark, 0)
	for _, mark := range m.marks {
		if keep(mark) {
			cp := *mark
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *model.Mark) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = compareString(a.ID, b.ID)
		}
		if newestFirst {
			return -c
		}
		return c
	})
	return out
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
