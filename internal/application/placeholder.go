package application

import (
	"fmt"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
)

var (
	overallFortunes = []string{
		"今日运势不错，适合积极行动，把握机会",
		"运势平稳，保持平常心，稳步前进",
		"今日能量充沛，适合挑战新事物",
		"运势略有波动，建议谨慎行事",
		"今日运势上升，适合做重要决定",
	}
	loveFortunes = []string{
		"感情运势良好，单身者有机会遇到心仪对象",
		"恋爱运势平稳，适合与伴侣深入交流",
		"桃花运旺盛，注意把握缘分",
		"感情需要耐心经营，避免冲动",
		"爱情运势上升，适合表达心意",
	}
	careerFortunes = []string{
		"工作运势良好，适合推进重要项目",
		"事业发展平稳，保持专注和努力",
		"职场表现出色，容易获得认可",
		"工作中可能遇到挑战，需要冷静应对",
		"事业运势上升，适合展示才能",
	}
	wealthFortunes = []string{
		"财运一般，建议理性消费",
		"偏财运不错，可适当投资",
		"财运平稳，适合储蓄理财",
		"投资需谨慎，避免冲动决定",
		"财运上升，有意外收获的可能",
	}
	healthFortunes = []string{
		"身体状况良好，注意适当休息",
		"健康运势平稳，保持规律作息",
		"精力充沛，适合运动锻炼",
		"注意身体信号，避免过度劳累",
		"健康运势上升，心情愉悦",
	}
	luckyColors = []string{"红色", "蓝色", "绿色", "黄色", "紫色", "橙色", "粉色", "白色"}

	fitnessOptions = []string{
		"祈福、出行、会友", "学习、读书、思考", "整理、清洁、收纳",
		"运动、健身、散步", "烹饪、品茶、休息", "创作、写作、绘画",
		"沟通、交流、分享", "规划、总结、反思", "购物、理财、投资",
		"娱乐、游戏、放松", "种植、园艺、养护", "修缮、维护、保养",
	}
	tabooOptions = []string{
		"争吵、冲突、抱怨", "熬夜、过劳、透支", "冲动、急躁、鲁莽",
		"浪费、挥霍、奢侈", "拖延、懒散、消极", "八卦、传谣、议论",
		"贪心、嫉妒、比较", "焦虑、担忧、恐惧", "固执、偏见、排斥",
		"暴饮、暴食、贪杯", "孤立、封闭、逃避", "批评、指责、埋怨",
	}
	zodiacAnimals   = []string{"鼠", "牛", "虎", "兔", "龙", "蛇", "马", "羊", "猴", "鸡", "狗", "猪"}
	heavenlyStems   = []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
	earthlyBranches = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
	directions      = []string{"东", "南", "西", "北", "东南", "西南", "东北", "西北"}
	fetalSpirits    = []string{"厨灶", "仓库", "房床", "门户", "厕所"}
	pengzuTaboos    = []string{"甲不开仓", "乙不栽植", "丙不修灶", "丁不剃头", "戊不受田"}
	dayOfficers     = []string{"建", "除", "满", "平", "定", "执", "破", "危", "成", "收", "开", "闭"}
	nayinElements   = []string{"海中金", "炉中火", "大林木", "路旁土", "剑锋金", "山头火", "涧下水", "城头土", "白蜡金", "杨柳木"}

	fallbackQuotes = []string{
		"今日宜：保持乐观，忌：过度焦虑",
		"愿你的每一天都充满阳光",
		"生活不止眼前的苟且，还有诗和远方",
		"每一个不曾起舞的日子，都是对生命的辜负",
		"山重水复疑无路，柳暗花明又一村",
	}
)

// PlaceholderGenerator synthesizes stand-in records when the upstream fails
// and the fallback policy is enabled. The content is invented; only the date
// and sign are real.
type PlaceholderGenerator struct {
	rng domain.RandomSource
}

func NewPlaceholderGenerator(rng domain.RandomSource) PlaceholderGenerator {
	return PlaceholderGenerator{rng: rng}
}

func (g PlaceholderGenerator) Constellation(sign domain.Sign, date time.Time) domain.ConstellationRecord {
	record := domain.ConstellationRecord{
		Sign:           sign,
		Name:           sign.ChineseName(),
		DateRange:      sign.DateRange(),
		Date:           date.UTC().Format(dateLayout),
		OverallFortune: g.pick(overallFortunes),
		LoveFortune:    g.pick(loveFortunes),
		CareerFortune:  g.pick(careerFortunes),
		WealthFortune:  g.pick(wealthFortunes),
		HealthFortune:  g.pick(healthFortunes),
		LuckyNumber:    domain.RandomLuckyNumber(g.rng),
		LuckyColor:     g.pick(luckyColors),
	}
	record.Indices = domain.ConstellationIndices{
		Comprehensive: domain.ExtractScore(record.OverallFortune, g.rng),
		Love:          domain.ExtractScore(record.LoveFortune, g.rng),
		Work:          domain.ExtractScore(record.CareerFortune, g.rng),
		Money:         domain.ExtractScore(record.WealthFortune, g.rng),
		Health:        domain.ExtractScore(record.HealthFortune, g.rng),
	}
	return record
}

func (g PlaceholderGenerator) Almanac(date time.Time) domain.AlmanacRecord {
	lunar := fmt.Sprintf("农历%d月%d日", 1+g.rng.IntN(12), 1+g.rng.IntN(30))
	fitness := g.pick(fitnessOptions)
	taboo := g.pick(tabooOptions)

	return domain.AlmanacRecord{
		DateInfo: domain.AlmanacDateInfo{
			GregorianDate:  date.UTC().Format(dateLayout),
			LunarDate:      lunar,
			LunarFormatted: lunar,
			MonthGanzhi:    g.pick(heavenlyStems) + g.pick(earthlyBranches) + "月",
			DayGanzhi:      g.pick(heavenlyStems) + g.pick(earthlyBranches) + "日",
			Zodiac:         g.pick(zodiacAnimals),
		},
		FortuneInfo: domain.AlmanacFortuneInfo{
			Fitness:      fitness,
			Taboo:        taboo,
			FitnessItems: domain.SplitActivities(fitness),
			TabooItems:   domain.SplitActivities(taboo),
			Shenwei:      g.pick(directions) + "方",
			Taishen:      g.pick(fetalSpirits),
			Chongsha:     fmt.Sprintf("冲%s(%s)", g.pick(zodiacAnimals), g.pick(directions[:4])),
			Suisha:       g.pick(directions[:4]) + "方",
			Pengzu:       "彭祖百忌：" + g.pick(pengzuTaboos),
			Jianshen:     g.pick(dayOfficers) + "日",
		},
		WuxingInfo: domain.AlmanacWuxingInfo{
			NayinYear: g.pick(nayinElements),
		},
	}
}

func (g PlaceholderGenerator) Quote() domain.Quote {
	return domain.Quote{Text: g.pick(fallbackQuotes)}
}

func (g PlaceholderGenerator) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}
