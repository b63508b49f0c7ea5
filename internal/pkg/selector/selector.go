package selector

import (
	"LeaveAMark/internal/model"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"time"
)

const (
	DefaultViewWeight   = 1.0
	DefaultAddWeight    = 0.5
	DefaultRecencyBonus = 2.0

	// fullBonusHours 之内享受完整的新鲜度加成
	fullBonusHours = 6.0
	// decayHours 加成在 6 小时后经过 18 小时线性衰减到 1
	decayHours = 18.0
	// noiseRatio 排序时的扰动幅度（±10%）
	noiseRatio = 0.1
)

var (
	ErrEmptyCandidateSet   = errors.New("没有可供选择的 Mark")
	ErrInvalidRecencyBonus = errors.New("新鲜度加成必须是不小于 1 的有限数")
)

// Rand 返回 [0,1) 区间的均匀随机数
type Rand interface {
	Float64() float64
}

type globalRand struct{}

// math/rand/v2 的全局源并发安全
func (globalRand) Float64() float64 {
	return rand.Float64()
}

// Selector 反病毒式传播的 Mark 选择器：互动越少越容易被看到
type Selector struct {
	rnd Rand
	now func() time.Time
}

type Option func(*Selector)

func WithRand(r Rand) Option {
	return func(s *Selector) {
		s.rnd = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		s.now = now
	}
}

func New(opts ...Option) *Selector {
	s := &Selector{
		rnd: globalRand{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engagement 选择引擎使用的互动分：浏览 * viewWeight + 回复 * addWeight
func Engagement(m *model.Mark, viewWeight, addWeight float64) float64 {
	return float64(m.ViewCount)*viewWeight + float64(m.AddCount)*addWeight
}

// Weights 计算反向权重：maxEngagement - engagement + 1，每个权重至少为 1
func Weights(marks []*model.Mark, viewWeight, addWeight float64) []float64 {
	scores := make([]float64, len(marks))
	maxEngagement := 1.0
	for i, m := range marks {
		scores[i] = Engagement(m, viewWeight, addWeight)
		maxEngagement = math.Max(maxEngagement, scores[i])
	}

	weights := make([]float64, len(marks))
	for i, e := range scores {
		weights[i] = maxEngagement - e + 1
	}
	return weights
}

// Select 使用默认权重（浏览 1.0，回复 0.5）选择一个 Mark
func (s *Selector) Select(marks []*model.Mark) (*model.Mark, error) {
	return s.SelectWithEngagement(marks, DefaultViewWeight, DefaultAddWeight)
}

// SelectWithEngagement 按综合互动分反向加权随机选择
func (s *Selector) SelectWithEngagement(marks []*model.Mark, viewWeight, addWeight float64) (*model.Mark, error) {
	if len(marks) == 0 {
		return nil, ErrEmptyCandidateSet
	}
	if len(marks) == 1 {
		return marks[0], nil
	}
	return marks[s.pick(Weights(marks, viewWeight, addWeight))], nil
}

// SelectByViews 只按浏览量反向加权
func (s *Selector) SelectByViews(marks []*model.Mark) (*model.Mark, error) {
	return s.SelectWithEngagement(marks, 1, 0)
}

// SelectRecent 使用默认新鲜度加成选择
func (s *Selector) SelectRecent(marks []*model.Mark) (*model.Mark, error) {
	return s.SelectWithRecency(marks, DefaultRecencyBonus)
}

// SelectWithRecency 在浏览量反向权重基础上乘以新鲜度系数
func (s *Selector) SelectWithRecency(marks []*model.Mark, recencyBonus float64) (*model.Mark, error) {
	if math.IsNaN(recencyBonus) || math.IsInf(recencyBonus, 0) || recencyBonus < 1 {
		return nil, ErrInvalidRecencyBonus
	}
	if len(marks) == 0 {
		return nil, ErrEmptyCandidateSet
	}
	if len(marks) == 1 {
		return marks[0], nil
	}

	now := s.now()
	weights := Weights(marks, 1, 0)
	for i, m := range marks {
		ageHours := now.Sub(m.CreatedAt).Hours()
		weights[i] *= RecencyMultiplier(ageHours, recencyBonus)
	}
	return marks[s.pick(weights)], nil
}

// RecencyMultiplier 6 小时内为 recencyBonus，之后线性衰减，最低为 1
func RecencyMultiplier(ageHours, recencyBonus float64) float64 {
	if ageHours < fullBonusHours {
		return math.Max(1, recencyBonus)
	}
	return math.Max(1, recencyBonus-(ageHours-fullBonusHours)/decayHours)
}

// SortByAntiViral 按互动分升序排列，每个 Mark 附加 ±10% 的随机扰动
// 结果不稳定，只用于列表展示
func (s *Selector) SortByAntiViral(marks []*model.Mark) []*model.Mark {
	type keyed struct {
		mark *model.Mark
		key  float64
	}

	items := make([]keyed, len(marks))
	for i, m := range marks {
		e := Engagement(m, DefaultViewWeight, DefaultAddWeight)
		noise := e * (s.rnd.Float64()*2*noiseRatio - noiseRatio)
		items[i] = keyed{mark: m, key: e + noise}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})

	sorted := make([]*model.Mark, len(items))
	for i, it := range items {
		sorted[i] = it.mark
	}
	return sorted
}

// SelectionProbability 返回 mark 在基础权重（仅浏览量，不含新鲜度）下被选中的概率，用于审计公平性
func SelectionProbability(mark *model.Mark, marks []*model.Mark) float64 {
	if mark == nil || len(marks) == 0 {
		return 0
	}

	idx := slices.IndexFunc(marks, func(m *model.Mark) bool {
		return m.ID == mark.ID
	})
	if idx == -1 {
		return 0
	}
	if len(marks) == 1 {
		return 1
	}

	weights := Weights(marks, 1, 0)
	total := 0.0
	for _, w := range weights {
		total += w
	}
	return weights[idx] / total
}

// pick 在累计权重上做一次随机游走；所有权重 >= 1，因此 total > 0 时必然命中
func (s *Selector) pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}

	r := s.rnd.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	panic("selector: weighted walk exhausted without a pick")
}
