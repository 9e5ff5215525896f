package service

import "testing"

func moodSeries(scores ...int) []moodPoint {
	points := make([]moodPoint, 0, len(scores))
	for i, score := range scores {
		points = append(points, moodPoint{CheckInDate: daysAgo(testToday, len(scores)-1-i), MoodScore: score})
	}
	return points
}

func TestMoodTrendInsight(t *testing.T) {
	if got := moodTrendInsight(moodSeries(5, 5, 5, 5, 5, 5, 5)); got != nil {
		t.Fatalf("expected nil without a previous window, got %+v", got)
	}

	got := moodTrendInsight(moodSeries(4, 4, 4, 4, 4, 4, 4, 7, 7, 7, 7, 7, 7, 7))
	if got == nil {
		t.Fatal("expected mood trend insight")
	}
	if got.AvgRecentMood != 7 || got.AvgPreviousMood != 4 || got.Change != 3 {
		t.Fatalf("unexpected averages: %+v", got)
	}
	if got.ChangePercentage != 75 || !got.IsImproving || got.IsDeclining {
		t.Fatalf("unexpected trend flags: %+v", got)
	}

	// 只有 3 条可作对比时以这 3 条为基准
	short := moodTrendInsight(moodSeries(9, 9, 9, 5, 5, 5, 5, 5, 5, 5))
	if short == nil || short.AvgPreviousMood != 9 || !short.IsDeclining {
		t.Fatalf("unexpected short-window trend: %+v", short)
	}
}

func TestSleepMoodInsight(t *testing.T) {
	sleep := []sleepPoint{
		{CheckInDate: daysAgo(testToday, 2), HoursSlept: 5, SleepQuality: 3},
		{CheckInDate: daysAgo(testToday, 1), HoursSlept: 7, SleepQuality: 6},
		{CheckInDate: daysAgo(testToday, 0), HoursSlept: 8, SleepQuality: 8},
	}
	mood := moodSeries(4, 6, 8)

	got := sleepMoodInsight(sleep, mood)
	if got == nil {
		t.Fatal("expected sleep mood insight")
	}
	if got.GoodSleepCount != 2 || got.PoorSleepCount != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if got.Impact != 3 || !got.HasPositiveCorrelation {
		t.Fatalf("unexpected impact: %+v", got)
	}
	if got.AvgSleep != 6.7 || got.AvgMood != 6 {
		t.Fatalf("unexpected averages: %+v", got)
	}

	if sleepMoodInsight(sleep[:2], mood) != nil {
		t.Fatal("expected nil with fewer than 3 sleep samples")
	}
}

func TestMedicationMoodInsight(t *testing.T) {
	var meds []medicationPoint
	for i := 0; i < 6; i++ {
		meds = append(meds, medicationPoint{CheckInDate: daysAgo(testToday, i), MedicationName: "Lithium", Taken: i < 3})
	}
	mood := []moodPoint{}
	for i := 0; i < 6; i++ {
		score := 4
		if i < 3 {
			score = 8
		}
		mood = append(mood, moodPoint{CheckInDate: daysAgo(testToday, i), MoodScore: score})
	}

	got := medicationMoodInsight(meds, mood)
	if got == nil {
		t.Fatal("expected medication insight")
	}
	if got.AvgMoodWithMeds != 8 || got.AvgMoodWithoutMeds != 4 || got.Difference != 4 {
		t.Fatalf("unexpected averages: %+v", got)
	}
	if got.AdherenceRate != 50 || !got.HasPositiveImpact {
		t.Fatalf("unexpected adherence: %+v", got)
	}

	// 没有漏服日时无法比较
	for i := range meds {
		meds[i].Taken = true
	}
	if medicationMoodInsight(meds, mood) != nil {
		t.Fatal("expected nil without days missing medication")
	}
}

func TestConcentrationInsight(t *testing.T) {
	levels := []int{2, 2, 2, 8, 8, 8, 8, 8, 8, 8}
	points := make([]concentrationPoint, 0, len(levels))
	for i, level := range levels {
		points = append(points, concentrationPoint{CheckInDate: daysAgo(testToday, len(levels)-i), ConcentrationLevel: level})
	}

	got := concentrationInsight(points)
	if got == nil {
		t.Fatal("expected concentration insight")
	}
	if got.AvgConcentration != 6.2 || got.AvgRecentConcentration != 8 || got.Trend != 1.8 || !got.IsImproving {
		t.Fatalf("unexpected concentration insight: %+v", got)
	}

	if concentrationInsight(points[:4]) != nil {
		t.Fatal("expected nil with fewer than 5 samples")
	}
}

func TestSleepQualityInsight(t *testing.T) {
	var good, poor []sleepPoint
	for i := 0; i < 5; i++ {
		good = append(good, sleepPoint{CheckInDate: daysAgo(testToday, i), HoursSlept: 8, SleepQuality: 7})
		poor = append(poor, sleepPoint{CheckInDate: daysAgo(testToday, i), HoursSlept: 5, SleepQuality: 4})
	}

	got := sleepQualityInsight(good)
	if got == nil || got.OptimalPercentage != 100 || got.NeedsImprovement {
		t.Fatalf("unexpected good sleep insight: %+v", got)
	}

	got = sleepQualityInsight(poor)
	if got == nil || got.OptimalPercentage != 0 || !got.NeedsImprovement {
		t.Fatalf("unexpected poor sleep insight: %+v", got)
	}

	if sleepQualityInsight(good[:4]) != nil {
		t.Fatal("expected nil with fewer than 5 nights")
	}
}
