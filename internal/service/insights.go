package service

import (
	"math"
	"time"
)

// 洞察所需的最少样本数
const (
	minSleepMoodSamples     = 3
	minMedicationSamples    = 5
	minConcentrationSamples = 5
	minSleepQualitySamples  = 5
	minMoodTrendSamples     = 7
	trendWindow             = 7
	trendThreshold          = 0.5
	goodSleepHours          = 7.0
	poorSleepHours          = 6.0
	optimalSleepMin         = 7.0
	optimalSleepMax         = 9.0
	qualityTarget           = 6.0
)

type moodPoint struct {
	CheckInDate time.Time
	MoodScore   int
}

type sleepPoint struct {
	CheckInDate  time.Time
	HoursSlept   float64
	SleepQuality int
}

type medicationPoint struct {
	CheckInDate    time.Time
	MedicationName string
	Taken          bool
}

type concentrationPoint struct {
	CheckInDate        time.Time
	ConcentrationLevel int
}

// SleepMoodInsight 睡眠时长与当日情绪的对比：好睡眠 >= 7h，差睡眠 < 6h
type SleepMoodInsight struct {
	AvgSleep               float64 `json:"avg_sleep"`
	AvgMood                float64 `json:"avg_mood"`
	Impact                 float64 `json:"impact"`
	HasPositiveCorrelation bool    `json:"has_positive_correlation"`
	GoodSleepCount         int     `json:"good_sleep_count"`
	PoorSleepCount         int     `json:"poor_sleep_count"`
}

// MedicationMoodInsight 服药日与未服药日的情绪对比
type MedicationMoodInsight struct {
	AvgMoodWithMeds    float64 `json:"avg_mood_with_meds"`
	AvgMoodWithoutMeds float64 `json:"avg_mood_without_meds"`
	Difference         float64 `json:"difference"`
	AdherenceRate      int     `json:"adherence_rate"`
	HasPositiveImpact  bool    `json:"has_positive_impact"`
}

// ConcentrationInsight 最近 7 条与整体均值的差
type ConcentrationInsight struct {
	AvgConcentration       float64 `json:"avg_concentration"`
	AvgRecentConcentration float64 `json:"avg_recent_concentration"`
	Trend                  float64 `json:"trend"`
	IsImproving            bool    `json:"is_improving"`
	IsDeclining            bool    `json:"is_declining"`
}

// SleepQualityInsight 睡眠时长与质量
type SleepQualityInsight struct {
	AvgHours          float64 `json:"avg_hours"`
	AvgQuality        float64 `json:"avg_quality"`
	OptimalPercentage int     `json:"optimal_percentage"`
	NeedsImprovement  bool    `json:"needs_improvement"`
}

// MoodTrendInsight 最近 7 条与之前 7 条的情绪对比
type MoodTrendInsight struct {
	AvgRecentMood    float64 `json:"avg_recent_mood"`
	AvgPreviousMood  float64 `json:"avg_previous_mood"`
	Change           float64 `json:"change"`
	ChangePercentage int     `json:"change_percentage"`
	IsImproving      bool    `json:"is_improving"`
	IsDeclining      bool    `json:"is_declining"`
}

// Insights 各项洞察；样本不足时对应字段为 nil
type Insights struct {
	SleepMood      *SleepMoodInsight      `json:"sleep_mood"`
	MedicationMood *MedicationMoodInsight `json:"medication_mood"`
	Concentration  *ConcentrationInsight  `json:"concentration"`
	SleepQuality   *SleepQualityInsight   `json:"sleep_quality"`
	MoodTrend      *MoodTrendInsight      `json:"mood_trend"`
}

func buildInsights(mood []moodPoint, sleep []sleepPoint, meds []medicationPoint, concentration []concentrationPoint) Insights {
	return Insights{
		SleepMood:      sleepMoodInsight(sleep, mood),
		MedicationMood: medicationMoodInsight(meds, mood),
		Concentration:  concentrationInsight(concentration),
		SleepQuality:   sleepQualityInsight(sleep),
		MoodTrend:      moodTrendInsight(mood),
	}
}

func sleepMoodInsight(sleep []sleepPoint, mood []moodPoint) *SleepMoodInsight {
	if len(sleep) < minSleepMoodSamples || len(mood) < minSleepMoodSamples {
		return nil
	}

	type pair struct {
		sleep float64
		mood  float64
	}

	pairs := make([]pair, 0, len(sleep))
	for _, s := range sleep {
		for _, m := range mood {
			if dateKey(m.CheckInDate) == dateKey(s.CheckInDate) {
				pairs = append(pairs, pair{sleep: s.HoursSlept, mood: float64(m.MoodScore)})
				break
			}
		}
	}
	if len(pairs) < minSleepMoodSamples {
		return nil
	}

	var sumSleep, sumMood, sumGood, sumPoor float64
	var good, poor int
	for _, p := range pairs {
		sumSleep += p.sleep
		sumMood += p.mood
		if p.sleep >= goodSleepHours {
			sumGood += p.mood
			good++
		}
		if p.sleep < poorSleepHours {
			sumPoor += p.mood
			poor++
		}
	}

	impact := safeDiv(sumGood, good) - safeDiv(sumPoor, poor)
	return &SleepMoodInsight{
		AvgSleep:               round1(sumSleep / float64(len(pairs))),
		AvgMood:                round1(sumMood / float64(len(pairs))),
		Impact:                 round1(impact),
		HasPositiveCorrelation: impact > 1,
		GoodSleepCount:         good,
		PoorSleepCount:         poor,
	}
}

func medicationMoodInsight(meds []medicationPoint, mood []moodPoint) *MedicationMoodInsight {
	if len(meds) < minMedicationSamples || len(mood) < minMedicationSamples {
		return nil
	}

	withMeds := make(map[string]struct{})
	withoutMeds := make(map[string]struct{})
	for _, m := range meds {
		if m.Taken {
			withMeds[dateKey(m.CheckInDate)] = struct{}{}
		} else {
			withoutMeds[dateKey(m.CheckInDate)] = struct{}{}
		}
	}

	var sumWith, sumWithout float64
	var countWith, countWithout int
	for _, m := range mood {
		key := dateKey(m.CheckInDate)
		if _, ok := withMeds[key]; ok {
			sumWith += float64(m.MoodScore)
			countWith++
		}
		if _, ok := withoutMeds[key]; ok {
			sumWithout += float64(m.MoodScore)
			countWithout++
		}
	}
	if countWith == 0 || countWithout == 0 {
		return nil
	}

	avgWith := sumWith / float64(countWith)
	avgWithout := sumWithout / float64(countWithout)
	return &MedicationMoodInsight{
		AvgMoodWithMeds:    round1(avgWith),
		AvgMoodWithoutMeds: round1(avgWithout),
		Difference:         round1(avgWith - avgWithout),
		AdherenceRate:      int(math.Round(float64(len(withMeds)) / float64(len(meds)) * 100)),
		HasPositiveImpact:  avgWith > avgWithout,
	}
}

func concentrationInsight(points []concentrationPoint) *ConcentrationInsight {
	if len(points) < minConcentrationSamples {
		return nil
	}

	levels := make([]float64, 0, len(points))
	for _, p := range points {
		levels = append(levels, float64(p.ConcentrationLevel))
	}

	overall := average(levels)
	recent := average(lastN(levels, trendWindow))
	trend := recent - overall
	return &ConcentrationInsight{
		AvgConcentration:       round1(overall),
		AvgRecentConcentration: round1(recent),
		Trend:                  round1(trend),
		IsImproving:            trend > trendThreshold,
		IsDeclining:            trend < -trendThreshold,
	}
}

func sleepQualityInsight(sleep []sleepPoint) *SleepQualityInsight {
	if len(sleep) < minSleepQualitySamples {
		return nil
	}

	var sumHours, sumQuality float64
	optimal := 0
	for _, s := range sleep {
		sumHours += s.HoursSlept
		sumQuality += float64(s.SleepQuality)
		if s.HoursSlept >= optimalSleepMin && s.HoursSlept <= optimalSleepMax {
			optimal++
		}
	}

	avgHours := sumHours / float64(len(sleep))
	avgQuality := sumQuality / float64(len(sleep))
	return &SleepQualityInsight{
		AvgHours:          round1(avgHours),
		AvgQuality:        round1(avgQuality),
		OptimalPercentage: int(math.Round(float64(optimal) / float64(len(sleep)) * 100)),
		NeedsImprovement:  avgHours < optimalSleepMin || avgQuality < qualityTarget,
	}
}

func moodTrendInsight(mood []moodPoint) *MoodTrendInsight {
	if len(mood) < minMoodTrendSamples {
		return nil
	}

	scores := make([]float64, 0, len(mood))
	for _, m := range mood {
		scores = append(scores, float64(m.MoodScore))
	}

	recent := lastN(scores, trendWindow)
	end := len(scores) - trendWindow
	start := max(end-trendWindow, 0)
	previous := scores[start:end]
	if len(previous) == 0 {
		return nil
	}

	avgRecent := average(recent)
	avgPrevious := average(previous)
	change := avgRecent - avgPrevious
	return &MoodTrendInsight{
		AvgRecentMood:    round1(avgRecent),
		AvgPreviousMood:  round1(avgPrevious),
		Change:           round1(change),
		ChangePercentage: int(math.Round(change / avgPrevious * 100)),
		IsImproving:      change > trendThreshold,
		IsDeclining:      change < -trendThreshold,
	}
}

func dateKey(t time.Time) string {
	return normalizeToDate(t).Format(DateFormat)
}

func lastN(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func safeDiv(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
