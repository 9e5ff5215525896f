package service

import "strings"

// Section 表示一个打卡分区
type Section string

const (
	SectionSleep         Section = "sleep"
	SectionMood          Section = "mood"
	SectionAppetite      Section = "appetite"
	SectionMedications   Section = "medications"
	SectionSubstances    Section = "substances"
	SectionThoughts      Section = "thoughts"
	SectionImpulses      Section = "impulses"
	SectionLibido        Section = "libido"
	SectionConcentration Section = "concentration"
)

// GameType 表示一个小游戏
type GameType string

const (
	GameBreathing   GameType = "breathing"
	GameMemory      GameType = "memory"
	GameMindfulness GameType = "mindfulness"
	GameRelaxation  GameType = "relaxation"
	GameWorkplace   GameType = "workplace"
)

// 奖励来源前缀，写入 coin_transactions.source
const (
	SourceSectionPrefix = "section:"
	SourceGamePrefix    = "game:"
	SourceAchievement   = "achievement"
)

var sectionRewards = map[Section]int{
	SectionSleep:         20,
	SectionAppetite:      20,
	SectionMood:          20,
	SectionConcentration: 10,
	SectionImpulses:      10,
	SectionLibido:        10,
	SectionMedications:   10,
	SectionSubstances:    10,
	SectionThoughts:      10,
}

var gameRewards = map[GameType]int{
	GameBreathing:   20,
	GameMindfulness: 25,
	GameRelaxation:  30,
	GameWorkplace:   15,
}

const (
	memoryRewardBase    = 50
	memoryRewardPerMove = 2
	memoryRewardFloor   = 10
	breathingScore      = 5
)

// Sections 按固定顺序返回所有分区
func Sections() []Section {
	return []Section{
		SectionSleep,
		SectionMood,
		SectionAppetite,
		SectionMedications,
		SectionSubstances,
		SectionThoughts,
		SectionImpulses,
		SectionLibido,
		SectionConcentration,
	}
}

// ParseSection 解析分区名，大小写与首尾空白不敏感
func ParseSection(raw string) (Section, bool) {
	section := Section(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := sectionRewards[section]
	return section, ok
}

// ParseGame 解析小游戏名
func ParseGame(raw string) (GameType, bool) {
	game := GameType(strings.ToLower(strings.TrimSpace(raw)))
	if game == GameMemory {
		return game, true
	}
	_, ok := gameRewards[game]
	return game, ok
}

// SectionReward 返回分区提交一次的金币数，每次提交只发放一次，与条目数无关
func SectionReward(section Section) (int, bool) {
	amount, ok := sectionRewards[section]
	return amount, ok
}

// GameReward 返回小游戏奖励；记忆游戏按步数递减，最低 10
func GameReward(game GameType, moves int) (int, bool) {
	if game == GameMemory {
		if moves < 0 {
			moves = 0
		}
		// 超过该步数后奖励恒为下限，先截断再相乘避免溢出
		if moves >= (memoryRewardBase-memoryRewardFloor)/memoryRewardPerMove {
			return memoryRewardFloor, true
		}
		return memoryRewardBase - memoryRewardPerMove*moves, true
	}
	amount, ok := gameRewards[game]
	return amount, ok
}

// GameScore 返回写入 games_played 的分数：呼吸练习固定 5，记忆游戏为步数
func GameScore(game GameType, reported int) int {
	if game == GameBreathing {
		return breathingScore
	}
	if reported < 0 {
		return 0
	}
	return reported
}
