package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/moodlog/internal/config"
	"github.com/moodlog/internal/db"
	"github.com/moodlog/internal/logging"
	"github.com/moodlog/internal/service"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@moodlog.local"
	demoPassword = "demo1234"
	demoDays     = 21
)

// 演示数据生成器：为演示账号写入最近三周的打卡与小游戏记录
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := db.Init(db.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DatabasePath,
		DSN:      cfg.DatabaseDSN,
		LogLevel: logging.GormLevel(cfg.LogLevel),
	}); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	location, err := cfg.Location()
	if err != nil {
		log.Fatal("时区无效:", err)
	}

	fmt.Println("开始生成演示数据...")
	summary, err := seedDemoData(context.Background(), db.DB, demoDays, time.Now().In(location))
	if err != nil {
		log.Fatal("生成演示数据失败:", err)
	}

	fmt.Println("演示数据生成完成！")
	fmt.Printf("用户: %s (密码: %s)\n", demoEmail, demoPassword)
	fmt.Printf("打卡: %d 天, 分区提交: %d 次, 小游戏: %d 次\n", summary.days, summary.sections, summary.games)
}

type seedSummary struct {
	userID   uint
	days     int
	sections int
	games    int
}

// seedDemoData 通过业务服务写入数据，奖励与成就按正常流程发放；已有打卡记录时跳过
func seedDemoData(ctx context.Context, gdb *gorm.DB, days int, today time.Time) (*seedSummary, error) {
	users := service.NewUserService(gdb)
	user, err := users.Register(ctx, service.RegisterInput{Email: demoEmail, Password: demoPassword, DisplayName: "Demo"})
	if errors.Is(err, service.ErrEmailTaken) {
		user, err = users.Authenticate(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		return nil, err
	}

	summary := &seedSummary{userID: user.ID}

	var existing int64
	if err := gdb.WithContext(ctx).Model(&db.DailyCheckIn{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		fmt.Println("打卡记录已存在，跳过创建")
		return summary, nil
	}

	checkIns := service.NewCheckInService(gdb, nil)
	writer := service.NewSectionWriter(gdb)
	achievements := service.NewAchievementService(gdb, 0)
	submissions := service.NewSubmissionService(gdb, checkIns, writer, achievements, nil, nil)
	games := service.NewGameService(gdb, achievements, nil, nil)

	profiles := service.NewProfileService(gdb)
	age := 29
	start := today.AddDate(0, 0, -(days - 1))
	if _, err := profiles.CompleteOnboarding(ctx, user.ID, service.OnboardingInput{MonitoringDays: 30, Age: &age}, start); err != nil {
		return nil, err
	}

	for back := days - 1; back >= 0; back-- {
		at := today.AddDate(0, 0, -back)
		// 每周留一天空白，演示连胜中断
		if back%7 == 4 {
			continue
		}
		for _, sub := range demoSubmissions(back) {
			if _, err := submissions.Submit(ctx, user.ID, sub, at); err != nil {
				return nil, fmt.Errorf("submit %s for day -%d: %w", sub.Section, back, err)
			}
			summary.sections++
		}
		summary.days++

		if back%3 == 0 {
			game := service.GameBreathing
			score := 0
			if back%2 == 0 {
				game, score = service.GameMemory, 12+back
			}
			if _, err := games.Complete(ctx, user.ID, game, score, "", at); err != nil {
				return nil, fmt.Errorf("complete game for day -%d: %w", back, err)
			}
			summary.games++
		}
	}

	fmt.Println("✅ 演示打卡创建完成")
	return summary, nil
}

func demoSubmissions(back int) []service.SectionSubmission {
	wave := back % 5
	hours := 5.5 + float64(wave)
	mood := 4 + wave
	focus := 30 + wave*15

	return []service.SectionSubmission{
		{Section: service.SectionSleep, Sleep: &service.SleepInput{HoursSlept: &hours, SleepQuality: 3 + wave, Dreams: wave%2 == 0}},
		{Section: service.SectionMood, Mood: &service.MoodInput{MoodScore: mood, Emotions: []string{"calm", "tired"}[:1+wave%2], EnergyLevel: 3 + wave}},
		{Section: service.SectionAppetite, Appetite: &service.AppetiteInput{AppetiteLevel: 5 + wave%3, MealsCount: 3}},
		{Section: service.SectionMedications, Medications: []service.MedicationInput{
			{MedicationName: "Lithium", Dosage: "300mg", Taken: wave != 3},
			{MedicationName: "Quetiapine", Dosage: "50mg", Taken: true},
		}},
		{Section: service.SectionSubstances, Substances: []service.SubstanceInput{{SubstanceType: "coffee", Amount: "1 cup", TimeConsumed: "08:30"}}},
		{Section: service.SectionThoughts, Thoughts: &service.ThoughtInput{NegativeThoughtsIntensity: 7 - wave, RacingThoughts: wave == 0}},
		{Section: service.SectionImpulses, Impulses: &service.ImpulseInput{ImpulseControlLevel: 5 + wave, ImpulseTypes: []string{"spending"}}},
		{Section: service.SectionLibido, Libido: &service.LibidoInput{LibidoLevel: 4 + wave%3}},
		{Section: service.SectionConcentration, Concentration: &service.ConcentrationInput{ConcentrationLevel: 3 + wave, FocusDurationMinutes: &focus}},
	}
}
