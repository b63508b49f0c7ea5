package service

import (
	"LeaveAMark/internal/api/dto"
	"LeaveAMark/internal/model"
	"LeaveAMark/internal/pkg/consts"
	"LeaveAMark/internal/pkg/geo"
	"LeaveAMark/internal/pkg/redis"
	"LeaveAMark/internal/pkg/selector"
	"LeaveAMark/internal/pkg/util"
	"LeaveAMark/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
)

type MarkService interface {
	// CreateMark 在当前位置留下 Mark，带 parent_id 时作为回复
	CreateMark(ctx context.Context, req *dto.CreateMarkDTO) (*dto.MarkDTO, error)
	// ListInBounds 地图视口内的有效 Mark，新的在前
	ListInBounds(ctx context.Context, req *dto.BoundsDTO) ([]*dto.MarkDTO, error)
	// ListNearby 可见半径内的 Mark，按反病毒式传播顺序排列
	ListNearby(ctx context.Context, lat, lng float64) ([]*dto.NearbyMarkDTO, error)
	// Discover 从附近的 Mark 中随机发现一个，互动越少越容易被选中
	Discover(ctx context.Context, req *dto.DiscoverDTO, sessionID string) (*dto.DiscoveryDTO, error)
	// RecordView 记录一次浏览，同一会话 24 小时内只计一次
	RecordView(ctx context.Context, markID, sessionID string) (bool, error)
	GetThread(ctx context.Context, markID string) (*dto.ThreadDTO, error)
	UpdateCanvas(ctx context.Context, markID string, req *dto.UpdateCanvasDTO) (*dto.MarkDTO, error)
}

// 发现模式，默认按浏览量与新鲜度选择
const (
	DiscoverModeRecency    = "recency"
	DiscoverModeEngagement = "engagement"
	DiscoverModeViews      = "views"
)

// viewClaimer 浏览去重的快速路径，Claim 成功后写库失败需要 Release
type viewClaimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisClaimer struct{}

func (redisClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return redis.SetNX(ctx, key, 1, ttl)
}

func (redisClaimer) Release(ctx context.Context, key string) error {
	return redis.DeleteKey(ctx, key)
}

type markServiceImpl struct {
	markRepo repository.MarkRepo
	viewRepo repository.MarkViewRepo
	selector *selector.Selector
	claims   viewClaimer
	now      func() time.Time
}

func NewMarkService(markRepo repository.MarkRepo, viewRepo repository.MarkViewRepo, sel *selector.Selector) MarkService {
	if sel == nil {
		sel = selector.New()
	}
	return &markServiceImpl{
		markRepo: markRepo,
		viewRepo: viewRepo,
		selector: sel,
		claims:   redisClaimer{},
		now:      time.Now,
	}
}

// nearbyMark 附近的 Mark 及其与用户的距离
type nearbyMark struct {
	mark     *model.Mark
	distance float64
}

func (s *markServiceImpl) CreateMark(ctx context.Context, req *dto.CreateMarkDTO) (*dto.MarkDTO, error) {
	if req == nil {
		return nil, ErrParamInvalid
	}
	if !req.Type.Valid() {
		return nil, ErrInvalidMarkType
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, ErrParamInvalid
	}
	if err := geo.Validate(*req.Latitude, *req.Longitude); err != nil {
		return nil, ErrInvalidCoordinate
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrParamInvalid
	}
	if err := util.ValidateDTO(req); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.markRepo.GetMarkByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !parent.IsActive {
			return nil, ErrParentNotFound
		}
	}

	mark := &model.Mark{
		ID:        uuid.NewString(),
		Type:      req.Type,
		Content:   req.Content,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		ParentID:  req.ParentID,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if req.ImageURL != nil && mark.Type == model.MarkTypeCanvas {
		mark.ImageURL = req.ImageURL
	}
	if err := s.markRepo.CreateMark(ctx, mark); err != nil {
		return nil, err
	}

	if mark.ParentID != nil {
		if err := s.markRepo.IncrementAddCount(ctx, *mark.ParentID); err != nil {
			log.ErrorContext(ctx, "increment add count error", "parent_id", *mark.ParentID, "err", err)
		}
	}
	return toMarkDTO(mark), nil
}

func (s *markServiceImpl) ListInBounds(ctx context.Context, req *dto.BoundsDTO) ([]*dto.MarkDTO, error) {
	if req == nil || req.North == nil || req.South == nil || req.East == nil || req.West == nil {
		return nil, ErrParamInvalid
	}
	box := geo.Box{North: *req.North, South: *req.South, East: *req.East, West: *req.West}
	if geo.Validate(box.North, box.East) != nil || geo.Validate(box.South, box.West) != nil {
		return nil, ErrInvalidCoordinate
	}
	if box.South > box.North {
		return nil, ErrParamInvalid
	}
	// 视口跨越 180 经线时地图给出 west > east
	if box.West > box.East {
		box.East += 360
	}

	marks, err := s.markRepo.GetActiveMarksInBounds(ctx, box)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MarkDTO, 0, len(marks))
	for _, m := range marks {
		out = append(out, toMarkDTO(m))
	}
	return out, nil
}

func (s *markServiceImpl) ListNearby(ctx context.Context, lat, lng float64) ([]*dto.NearbyMarkDTO, error) {
	nearby, err := s.findNearby(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	distances := make(map[string]float64, len(nearby))
	marks := make([]*model.Mark, 0, len(nearby))
	for _, n := range nearby {
		distances[n.mark.ID] = n.distance
		marks = append(marks, n.mark)
	}

	out := make([]*dto.NearbyMarkDTO, 0, len(marks))
	for _, m := range s.selector.SortByAntiViral(marks) {
		d := distances[m.ID]
		out = append(out, &dto.NearbyMarkDTO{
			MarkDTO:      toMarkDTO(m),
			Distance:     d,
			DistanceText: geo.FormatDistance(d),
		})
	}
	return out, nil
}

func (s *markServiceImpl) Discover(ctx context.Context, req *dto.DiscoverDTO, sessionID string) (*dto.DiscoveryDTO, error) {
	if req == nil || req.Latitude == nil || req.Longitude == nil {
		return nil, ErrParamInvalid
	}
	pick, err := s.discoverPicker(req.Mode)
	if err != nil {
		return nil, err
	}

	lat, lng := *req.Latitude, *req.Longitude
	nearby, err := s.findNearby(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	candidates := make([]*model.Mark, 0, len(nearby))
	for _, n := range nearby {
		if req.ExcludeID != nil && n.mark.ID == *req.ExcludeID {
			continue
		}
		candidates = append(candidates, n.mark)
	}
	picked, err := pick(candidates)
	if err != nil {
		if errors.Is(err, selector.ErrEmptyCandidateSet) {
			return nil, ErrNoMarkNearby
		}
		return nil, err
	}

	distance := geo.Distance(lat, lng, picked.Latitude, picked.Longitude)
	out := &dto.DiscoveryDTO{
		Distance:     distance,
		DistanceText: geo.FormatDistance(distance),
		NearbyCount:  len(candidates),
		Probability:  selector.SelectionProbability(picked, candidates),
	}

	if sessionID != "" {
		counted, err := s.recordView(ctx, picked.ID, sessionID)
		if err != nil {
			log.ErrorContext(ctx, "record view error", "mark_id", picked.ID, "err", err)
		}
		if counted {
			picked.ViewCount++
		}
		out.Counted = counted
	}
	out.Mark = toMarkDTO(picked)
	return out, nil
}

func (s *markServiceImpl) discoverPicker(mode string) (func([]*model.Mark) (*model.Mark, error), error) {
	switch mode {
	case "", DiscoverModeRecency:
		return s.selector.SelectRecent, nil
	case DiscoverModeEngagement:
		return s.selector.Select, nil
	case DiscoverModeViews:
		return s.selector.SelectByViews, nil
	}
	return nil, ErrParamInvalid
}

func (s *markServiceImpl) RecordView(ctx context.Context, markID, sessionID string) (bool, error) {
	if markID == "" || sessionID == "" {
		return false, ErrParamInvalid
	}
	mark, err := s.markRepo.GetMarkByID(ctx, markID)
	if err != nil {
		return false, err
	}
	if mark == nil || !mark.IsActive {
		return false, ErrMarkNotFound
	}
	return s.recordView(ctx, markID, sessionID)
}

// recordView Redis SETNX 作为快速路径，数据库浏览记录作为最终依据
func (s *markServiceImpl) recordView(ctx context.Context, markID, sessionID string) (bool, error) {
	key := consts.MarkViewSessionKey + markID + ":" + sessionID
	claimed, err := s.claims.Claim(ctx, key, consts.ViewDedupeWindow)
	if err == nil && !claimed {
		return false, nil
	}
	if err != nil && !errors.Is(err, redis.ErrDisabled) {
		log.WarnContext(ctx, "view dedupe via redis error", "err", err)
	}

	now := s.now()
	exists, err := s.viewRepo.ExistsSince(ctx, markID, sessionID, now.Add(-consts.ViewDedupeWindow))
	if err != nil {
		s.releaseClaim(ctx, claimed, key)
		return false, err
	}
	if exists {
		return false, nil
	}

	if err = s.viewRepo.RecordView(ctx, &model.MarkView{
		MarkID:    markID,
		SessionID: sessionID,
		ViewedAt:  now,
	}); err != nil {
		s.releaseClaim(ctx, claimed, key)
		return false, err
	}
	return true, nil
}

// releaseClaim 写库失败时归还去重键，否则该会话 24 小时内无法再计数
func (s *markServiceImpl) releaseClaim(ctx context.Context, claimed bool, key string) {
	if !claimed {
		return
	}
	if err := s.claims.Release(ctx, key); err != nil {
		log.WarnContext(ctx, "release view dedupe key error", "key", key, "err", err)
	}
}

func (s *markServiceImpl) GetThread(ctx context.Context, markID string) (*dto.ThreadDTO, error) {
	if markID == "" {
		return nil, ErrParamInvalid
	}

	var root *model.Mark
	var thread []*model.Mark
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		root, err = s.markRepo.GetMarkByID(gCtx, markID)
		return err
	})
	g.Go(func() (err error) {
		thread, err = s.markRepo.GetThread(gCtx, markID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if root == nil || !root.IsActive {
		return nil, ErrMarkNotFound
	}

	out := &dto.ThreadDTO{
		Root:    toMarkDTO(root),
		Replies: make([]*dto.MarkDTO, 0, len(thread)),
	}
	for _, m := range thread {
		if m.ID == markID {
			continue
		}
		out.Replies = append(out.Replies, toMarkDTO(m))
	}
	return out, nil
}

func (s *markServiceImpl) UpdateCanvas(ctx context.Context, markID string, req *dto.UpdateCanvasDTO) (*dto.MarkDTO, error) {
	if markID == "" || req == nil {
		return nil, ErrParamInvalid
	}
	if err := util.ValidateDTO(req); err != nil {
		return nil, err
	}

	mark, err := s.markRepo.GetMarkByID(ctx, markID)
	if err != nil {
		return nil, err
	}
	if mark == nil || !mark.IsActive {
		return nil, ErrMarkNotFound
	}
	if mark.Type != model.MarkTypeCanvas {
		return nil, ErrNotCanvasMark
	}

	if err = s.markRepo.UpdateCanvasContent(ctx, markID, req.Content, req.ImageURL); err != nil {
		return nil, err
	}
	mark.Content = req.Content
	if req.ImageURL != nil {
		mark.ImageURL = req.ImageURL
	}
	return toMarkDTO(mark), nil
}

// findNearby 先用外接矩形缩小范围，再按真实距离过滤，结果按距离升序
func (s *markServiceImpl) findNearby(ctx context.Context, lat, lng float64) ([]nearbyMark, error) {
	box, err := geo.BoundingBox(lat, lng, geo.ProximityRadius)
	if err != nil {
		return nil, ErrInvalidCoordinate
	}
	marks, err := s.markRepo.GetActiveMarksInBounds(ctx, box)
	if err != nil {
		return nil, err
	}
	return filterNearby(lat, lng, marks), nil
}

func filterNearby(lat, lng float64, marks []*model.Mark) []nearbyMark {
	out := make([]nearbyMark, 0, len(marks))
	for _, m := range marks {
		if !geo.IsWithinProximity(lat, lng, m.Latitude, m.Longitude) {
			continue
		}
		out = append(out, nearbyMark{mark: m, distance: geo.Distance(lat, lng, m.Latitude, m.Longitude)})
	}
	slices.SortStableFunc(out, func(a, b nearbyMark) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		}
		return 0
	})
	return out
}

// toMarkDTO 将 Model 转换为返回给前端的 DTO
func toMarkDTO(m *model.Mark) *dto.MarkDTO {
	out := &dto.MarkDTO{}
	_ = copier.Copy(out, m)
	out.ExpiresAt = m.CreatedAt.Add(consts.MarkTTL)
	return out
}
