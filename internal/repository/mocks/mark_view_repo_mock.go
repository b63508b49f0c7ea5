package mocks

import (
	"LeaveAMark/internal/model"
	"context"
	"sync"
	"time"
)

// MockMarkViewRepo is an in-memory implementation of repository.MarkViewRepo for testing
type MockMarkViewRepo struct {
	mu     sync.RWMutex
	views  []*model.MarkView
	nextID uint64

	// Marks 不为空时，RecordView 同时自增对应 Mark 的浏览量
	Marks     *MockMarkRepo
	RecordErr error
	DeleteErr error
}

func NewMockMarkViewRepo() *MockMarkViewRepo {
	return &MockMarkViewRepo{
		views: make([]*model.MarkView, 0),
	}
}

// RecordView 失败时既不写浏览记录也不自增，与事务语义一致
func (m *MockMarkViewRepo) RecordView(_ context.Context, view *model.MarkView) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.insert(view)
	if m.Marks != nil {
		m.Marks.bumpViewCount(view.MarkID)
	}
	return nil
}

func (m *MockMarkViewRepo) insert(view *model.MarkView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *view
	cp.ID = m.nextID
	m.views = append(m.views, &cp)
}

func (m *MockMarkViewRepo) ExistsSince(_ context.Context, markID, sessionID string, since time.Time) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.views {
		if v.MarkID == markID && v.SessionID == sessionID && !v.ViewedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockMarkViewRepo) DeleteViewedBefore(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	kept := m.views[:0]
	var deleted int64
	for _, v := range m.views {
		if v.ViewedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	m.views = kept
	return deleted, nil
}

// Count 当前浏览记录数
func (m *MockMarkViewRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.views)
}

// SetData 直接写入测试数据
func (m *MockMarkViewRepo) SetData(views ...*model.MarkView) {
	for _, v := range views {
		m.insert(v)
	}
}
