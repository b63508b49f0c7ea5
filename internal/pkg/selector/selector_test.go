package selector

import (
	"LeaveAMark/internal/model"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand 依次返回预设的随机数，用完后重复最后一个
type fixedRand struct {
	values []float64
	calls  int
}

func (f *fixedRand) Float64() float64 {
	v := f.values[min(f.calls, len(f.values)-1)]
	f.calls++
	return v
}

func newMark(id string, views, adds int64) *model.Mark {
	return &model.Mark{
		ID:        id,
		Type:      model.MarkTypeText,
		ViewCount: views,
		AddCount:  adds,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func exampleMarks() (a, b, c *model.Mark) {
	return newMark("A", 100, 10), newMark("B", 0, 0), newMark("C", 50, 5)
}

func TestSelect_EmptyCandidateSet(t *testing.T) {
	s := New()

	m, err := s.Select(nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrEmptyCandidateSet)

	m, err = s.SelectWithRecency([]*model.Mark{}, DefaultRecencyBonus)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrEmptyCandidateSet)
}

func TestSelect_SingleCandidateShortcut(t *testing.T) {
	r := &fixedRand{values: []float64{0.99}}
	s := New(WithRand(r))

	popular := newMark("only", 1_000_000, 5000)
	m, err := s.Select([]*model.Mark{popular})
	require.NoError(t, err)
	assert.Same(t, popular, m)

	m, err = s.SelectRecent([]*model.Mark{popular})
	require.NoError(t, err)
	assert.Same(t, popular, m)

	assert.Equal(t, 0, r.calls, "单个候选不应消耗随机数")
}

func TestWeights_ExampleScenario(t *testing.T) {
	a, b, c := exampleMarks()
	weights := Weights([]*model.Mark{a, b, c}, DefaultViewWeight, DefaultAddWeight)

	// A=105, B=0, C=52.5, max=105
	assert.Equal(t, []float64{1, 106, 53.5}, weights)

	// 概率只看浏览量: A=1, B=101, C=51
	pa := SelectionProbability(a, []*model.Mark{a, b, c})
	pb := SelectionProbability(b, []*model.Mark{a, b, c})
	pc := SelectionProbability(c, []*model.Mark{a, b, c})
	assert.Greater(t, pb, pc)
	assert.Greater(t, pc, pa)
	assert.InDelta(t, 101.0/153, pb, 1e-12)
}

func TestSelectionProbability_IgnoresAdds(t *testing.T) {
	replied := newMark("replied", 0, 10)
	quiet := newMark("quiet", 0, 0)
	marks := []*model.Mark{replied, quiet}

	assert.InDelta(t, 0.5, SelectionProbability(replied, marks), 1e-12)
	assert.InDelta(t, 0.5, SelectionProbability(quiet, marks), 1e-12)
}

func TestWeights_AllZeroEngagement(t *testing.T) {
	marks := []*model.Mark{newMark("1", 0, 0), newMark("2", 0, 0)}
	weights := Weights(marks, DefaultViewWeight, DefaultAddWeight)
	// max 下限为 1
	assert.Equal(t, []float64{2, 2}, weights)
}

func TestWeights_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 200; round++ {
		n := 2 + rng.IntN(10)
		marks := make([]*model.Mark, n)
		for i := range marks {
			marks[i] = newMark(fmt.Sprint(i), rng.Int64N(500), rng.Int64N(100))
		}
		weights := Weights(marks, DefaultViewWeight, DefaultAddWeight)
		for i := range marks {
			assert.GreaterOrEqual(t, weights[i], 1.0)
			for j := range marks {
				ei := Engagement(marks[i], DefaultViewWeight, DefaultAddWeight)
				ej := Engagement(marks[j], DefaultViewWeight, DefaultAddWeight)
				if ei < ej {
					assert.GreaterOrEqual(t, weights[i], weights[j])
				}
			}
		}
	}
}

func TestSelect_DeterministicGivenDraw(t *testing.T) {
	a, b, c := exampleMarks()
	marks := []*model.Mark{a, b, c}
	// 累计权重: A [0,1), B [1,107), C [107,160.5)
	cases := []struct {
		draw float64
		want string
	}{
		{0.0, "A"},
		{0.5 / 160.5, "A"},
		{1.5 / 160.5, "B"},
		{100.0 / 160.5, "B"},
		{107.5 / 160.5, "C"},
		{0.999999, "C"},
	}
	for _, tc := range cases {
		for i := 0; i < 3; i++ {
			s := New(WithRand(&fixedRand{values: []float64{tc.draw}}))
			m, err := s.Select(marks)
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.ID, "draw=%v", tc.draw)
		}
	}
}

func TestSelectByViews_IgnoresAdds(t *testing.T) {
	x := newMark("X", 10, 1000)
	y := newMark("Y", 0, 0)
	// 权重: X=1, Y=11
	s := New(WithRand(&fixedRand{values: []float64{0.5 / 12}}))
	m, err := s.SelectByViews([]*model.Mark{x, y})
	require.NoError(t, err)
	assert.Equal(t, "X", m.ID)
}

func TestSelect_FavoursLowEngagementStatistically(t *testing.T) {
	a, b, c := exampleMarks()
	marks := []*model.Mark{a, b, c}
	s := New(WithRand(rand.New(rand.NewPCG(42, 7))))

	counts := map[string]int{}
	for i := 0; i < 20000; i++ {
		m, err := s.Select(marks)
		require.NoError(t, err)
		counts[m.ID]++
	}
	assert.Greater(t, counts["B"], counts["C"])
	assert.Greater(t, counts["C"], counts["A"])
}

func TestRecencyMultiplier(t *testing.T) {
	assert.Equal(t, 2.0, RecencyMultiplier(0, 2))
	assert.Equal(t, 2.0, RecencyMultiplier(5.99, 2))
	assert.Equal(t, 2.0, RecencyMultiplier(6, 2))
	assert.InDelta(t, 1.5, RecencyMultiplier(15, 2), 1e-12)
	assert.Equal(t, 1.0, RecencyMultiplier(24, 2))
	assert.Equal(t, 1.0, RecencyMultiplier(48, 2))
	// 加成小于 1 时也不会让权重低于基础权重
	assert.Equal(t, 1.0, RecencyMultiplier(10, 0.5))
	assert.Equal(t, 1.0, RecencyMultiplier(1, 0))
}

func TestSelectWithRecency_InvalidBonus(t *testing.T) {
	now := time.Now()
	a := newMark("A", 0, 0)
	b := newMark("B", 3, 0)
	a.CreatedAt = now.Add(-time.Hour)
	b.CreatedAt = now.Add(-time.Hour)
	s := New(WithRand(&fixedRand{values: []float64{0.5}}), WithClock(func() time.Time { return now }))

	for _, bonus := range []float64{0, 0.5, -1, math.NaN(), math.Inf(1)} {
		m, err := s.SelectWithRecency([]*model.Mark{a, b}, bonus)
		assert.Nil(t, m)
		assert.ErrorIs(t, err, ErrInvalidRecencyBonus, "bonus=%v", bonus)
	}

	m, err := s.SelectWithRecency([]*model.Mark{a, b}, 1)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSelectWithRecency_PrefersFreshMarks(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	fresh := newMark("fresh", 0, 0)
	fresh.CreatedAt = now.Add(-1 * time.Hour)
	stale := newMark("stale", 0, 0)
	stale.CreatedAt = now.Add(-30 * time.Hour)

	// 基础权重均为 2；fresh=4，stale=2，总计 6
	draw := 3.9 / 6
	s := New(WithRand(&fixedRand{values: []float64{draw}}), WithClock(func() time.Time { return now }))
	m, err := s.SelectWithRecency([]*model.Mark{fresh, stale}, DefaultRecencyBonus)
	require.NoError(t, err)
	assert.Equal(t, "fresh", m.ID)

	s = New(WithRand(&fixedRand{values: []float64{4.1 / 6}}), WithClock(func() time.Time { return now }))
	m, err = s.SelectWithRecency([]*model.Mark{fresh, stale}, DefaultRecencyBonus)
	require.NoError(t, err)
	assert.Equal(t, "stale", m.ID)
}

func TestSortByAntiViral_NoNoise(t *testing.T) {
	a, b, c := exampleMarks()
	input := []*model.Mark{a, b, c}

	// 0.5 对应零扰动
	s := New(WithRand(&fixedRand{values: []float64{0.5}}))
	sorted := s.SortByAntiViral(input)

	ids := make([]string, len(sorted))
	for i, m := range sorted {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"B", "C", "A"}, ids)
	assert.Equal(t, "A", input[0].ID, "输入切片不应被修改")
}

func TestSortByAntiViral_NoiseBounded(t *testing.T) {
	low := newMark("low", 100, 0)
	high := newMark("high", 200, 0)

	// low 取最大正扰动 (+10%=110)，high 取最大负扰动 (-10%=180)，顺序不变
	s := New(WithRand(&fixedRand{values: []float64{0.999999, 0}}))
	sorted := s.SortByAntiViral([]*model.Mark{low, high})
	assert.Equal(t, "low", sorted[0].ID)

	// 接近平局时扰动可以改变顺序
	near := newMark("near", 101, 0)
	s = New(WithRand(&fixedRand{values: []float64{0.999999, 0}}))
	sorted = s.SortByAntiViral([]*model.Mark{low, near})
	assert.Equal(t, "near", sorted[0].ID)
}

func TestSortByAntiViral_Empty(t *testing.T) {
	assert.Empty(t, New().SortByAntiViral(nil))
}

func TestSelectionProbability_Normalized(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for round := 0; round < 100; round++ {
		n := 1 + rng.IntN(12)
		marks := make([]*model.Mark, n)
		for i := range marks {
			marks[i] = newMark(fmt.Sprint(i), rng.Int64N(1000), rng.Int64N(50))
		}
		sum := 0.0
		for _, m := range marks {
			p := SelectionProbability(m, marks)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestSelectionProbability_EdgeCases(t *testing.T) {
	a, b, _ := exampleMarks()
	assert.Equal(t, 0.0, SelectionProbability(a, nil))
	assert.Equal(t, 1.0, SelectionProbability(a, []*model.Mark{a}))
	assert.Equal(t, 0.0, SelectionProbability(b, []*model.Mark{a}))
	assert.Equal(t, 0.0, SelectionProbability(nil, []*model.Mark{a}))
}
