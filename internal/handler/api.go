package handler

import (
	"time"

	"github.com/moodlog/internal/cache"
	"github.com/moodlog/internal/logging"
	"github.com/moodlog/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	users        *service.UserService
	profiles     *service.ProfileService
	checkIns     *service.CheckInService
	writer       *service.SectionWriter
	submissions  *service.SubmissionService
	ledger       *service.LedgerService
	streaks      *service.StreakService
	games        *service.GameService
	achievements *service.AchievementService
	statistics   *service.StatisticsService
	dashboard    *service.DashboardService
	logger       *zap.Logger
	location     *time.Location
	now          func() time.Time
}

// Options 构造 API 时的可选配置
type Options struct {
	RequiredSections []service.Section
	StreakWindowDays int
	Cache            *cache.Cache
	Logger           *zap.Logger
	Location         *time.Location
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	location := opts.Location
	if location == nil {
		location = time.Local
	}

	checkIns := service.NewCheckInService(gdb, opts.RequiredSections)
	writer := service.NewSectionWriter(gdb)
	streaks := service.NewStreakService(gdb, opts.StreakWindowDays)
	achievements := service.NewAchievementService(gdb, opts.StreakWindowDays)
	statistics := service.NewStatisticsService(gdb, opts.Cache)

	return &API{
		db:           gdb,
		users:        service.NewUserService(gdb),
		profiles:     service.NewProfileService(gdb),
		checkIns:     checkIns,
		writer:       writer,
		submissions:  service.NewSubmissionService(gdb, checkIns, writer, achievements, statistics, logger),
		ledger:       service.NewLedgerService(gdb),
		streaks:      streaks,
		games:        service.NewGameService(gdb, achievements, statistics, logger),
		achievements: achievements,
		statistics:   statistics,
		dashboard:    service.NewDashboardService(gdb, checkIns, streaks),
		logger:       logger,
		location:     location,
		now:          time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// clock 返回配置时区下的当前时间，日历日以此为准
func (a *API) clock() time.Time {
	return a.now().In(a.location)
}
