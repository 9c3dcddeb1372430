package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

var mobileAgentHints = []string{"Mobile", "Android", "iPhone"}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// WithTotal fills the derived fields once the row count is known.
func (p Pagination) WithTotal(total int64) Pagination {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasNext = p.Page < p.TotalPages
	p.HasPrev = p.Page > 1
	return p
}

// DetectDeviceType reads X-Device-Type, falling back to a User-Agent sniff.
func DetectDeviceType(c *gin.Context) string {
	if device := strings.TrimSpace(c.GetHeader("X-Device-Type")); device != "" {
		return strings.ToLower(device)
	}

	ua := c.GetHeader("User-Agent")
	if strings.Contains(ua, "iPad") {
		return DeviceTablet
	}
	for _, hint := range mobileAgentHints {
		if strings.Contains(ua, hint) {
			return DeviceMobile
		}
	}
	return DeviceDesktop
}

// LimitForDevice caps the requested page size. Unknown device types get
// the mobile cap.
func LimitForDevice(limit int, device string) int {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	switch device {
	case DeviceDesktop:
		return limit
	case DeviceTablet:
		return min(limit, 20)
	default:
		return min(limit, 10)
	}
}

// ParsePagination reads page/limit from the query string.
func ParsePagination(c *gin.Context) Pagination {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	return Pagination{
		Page:  page,
		Limit: LimitForDevice(limit, DetectDeviceType(c)),
	}
}

// ParseID reads a positive numeric path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}
