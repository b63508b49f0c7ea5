package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	// EarthRadius 地球平均半径（米）
	EarthRadius = 6371000.0
	// ProximityRadius 可查看 Mark 内容的最大距离（米）
	ProximityRadius = 75.0
	// MetersPerDegree 纬度 1 度约等于 111km
	MetersPerDegree = 111000.0
	// ClusterPrecision 位置聚类保留的小数位
	ClusterPrecision = 3
)

var (
	ErrInvalidCoordinate  = errors.New("坐标不合法")
	ErrDegenerateLatitude = errors.New("纬度过于接近极点，无法计算范围")
	ErrInvalidRadius      = errors.New("半径不合法")
)

var clusterScale = math.Pow10(ClusterPrecision)

// Point 经纬度坐标
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Box 地图视口范围
type Box struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// CrossesAntimeridian 范围跨越 ±180 经线时，经度条件需要拆成两段
func (b Box) CrossesAntimeridian() bool {
	return b.East > 180 || b.West < -180
}

// Validate 校验经纬度范围，不做任何截断
func Validate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return ErrInvalidCoordinate
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance Haversine 大圆距离（米）
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := toRadians(lat1), toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	// 浮点误差可能让 a 略微越界
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// IsWithinProximity 用户是否在 Mark 的可见半径内（含边界）
func IsWithinProximity(userLat, userLng, markLat, markLng float64) bool {
	return withinRadius(Distance(userLat, userLng, markLat, markLng), ProximityRadius)
}

func withinRadius(distance, radius float64) bool {
	return distance <= radius
}

// BoundingBox 以中心点和半径计算近似矩形范围，用于数据库范围查询
func BoundingBox(centerLat, centerLng, radiusMeters float64) (Box, error) {
	if err := Validate(centerLat, centerLng); err != nil {
		return Box{}, err
	}
	if radiusMeters < 0 || math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) {
		return Box{}, ErrInvalidRadius
	}

	latDelta := radiusMeters / MetersPerDegree
	lngDelta := radiusMeters / (MetersPerDegree * math.Cos(toRadians(centerLat)))
	if math.IsNaN(lngDelta) || math.IsInf(lngDelta, 0) || lngDelta < 0 || lngDelta > 180 {
		return Box{}, fmt.Errorf("%w: lat=%v", ErrDegenerateLatitude, centerLat)
	}

	return Box{
		North: centerLat + latDelta,
		South: centerLat - latDelta,
		East:  centerLng + lngDelta,
		West:  centerLng - lngDelta,
	}, nil
}

// LocationClusterID 将坐标四舍五入（远离零）到 3 位小数，拼接为 "{lat}_{lng}"
func LocationClusterID(lat, lng float64) (string, error) {
	if err := Validate(lat, lng); err != nil {
		return "", err
	}
	return formatClusterAxis(lat) + "_" + formatClusterAxis(lng), nil
}

func formatClusterAxis(v float64) string {
	r := math.Round(v*clusterScale) / clusterScale
	if r == 0 {
		// 避免出现 "-0"
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// FormatDistance 展示用距离文本
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int64(math.Round(meters)))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
