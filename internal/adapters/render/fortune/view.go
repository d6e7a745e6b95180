package fortune

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/daily-fortune/internal/application"
	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

func renderAlmanac(result application.AlmanacResult, s styles) string {
	record := result.Record
	info := record.DateInfo

	lines := []string{
		s.title.Render("今日黄历 " + info.GregorianDate),
		headerLine(result.Source, s),
	}

	lunar := info.LunarFormatted
	if lunar == "" {
		lunar = domain.LunarPending
	}
	lines = appendField(lines, "农历", strings.TrimSpace(lunar+" "+info.LunarMonthName), s)
	lines = appendField(lines, "干支", ganzhi(info), s)
	lines = appendField(lines, "生肖", info.Zodiac, s)
	lines = appendField(lines, "节日", info.FestivalLabel(), s)

	lines = append(lines,
		s.section.Render(activityLine("宜", record.FortuneInfo.FitnessItems, s.good, s)),
		activityLine("忌", record.FortuneInfo.TabooItems, s.bad, s),
	)

	var details []string
	details = appendField(details, "神位", record.FortuneInfo.Shenwei, s)
	details = appendField(details, "胎神", record.FortuneInfo.Taishen, s)
	details = appendField(details, "冲煞", record.FortuneInfo.Chongsha, s)
	details = appendField(details, "岁煞", record.FortuneInfo.Suisha, s)
	details = appendField(details, "彭祖", record.FortuneInfo.Pengzu, s)
	details = appendField(details, "建神", record.FortuneInfo.Jianshen, s)
	details = appendField(details, "五行", strings.Join(nonEmpty(record.WuxingInfo.Jiazi, record.WuxingInfo.NayinYear, record.WuxingInfo.NayinMonth), " "), s)
	details = appendField(details, "星宿", record.XingsuInfo.Xingsu, s)
	if len(details) > 0 {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, details...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderConstellation(result application.ConstellationResult, s styles) string {
	record := result.Record

	lines := []string{
		s.title.Render(fmt.Sprintf("%s (%s) %s", record.Name, record.Sign, record.DateRange)),
		headerLine(result.Source, s),
		s.header.Render("date: " + record.Date),
	}

	indices := []string{
		indexLine("综合", record.Indices.Comprehensive, s),
		indexLine("爱情", record.Indices.Love, s),
		indexLine("工作", record.Indices.Work, s),
		indexLine("财运", record.Indices.Money, s),
		indexLine("健康", record.Indices.Health, s),
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, indices...)))

	var narratives []string
	narratives = appendField(narratives, "综合运势", record.OverallFortune, s)
	narratives = appendField(narratives, "爱情运势", record.LoveFortune, s)
	narratives = appendField(narratives, "事业运势", record.CareerFortune, s)
	narratives = appendField(narratives, "财运运势", record.WealthFortune, s)
	narratives = appendField(narratives, "健康运势", record.HealthFortune, s)
	if len(narratives) > 0 {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, narratives...)))
	}

	lucky := []string{s.label.Render("幸运数字:") + " " + s.detail.Render(fmt.Sprintf("%d", record.LuckyNumber))}
	lucky = appendField(lucky, "幸运颜色", record.LuckyColor, s)
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, lucky...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(source application.Source, s styles) string {
	if source == "" {
		source = application.SourceUpstream
	}
	line := s.header.Render("source: " + string(source))
	if source == application.SourcePlaceholder {
		line += " " + s.warning.Render("[placeholder]")
	}
	return line
}

func appendField(lines []string, label, value string, s styles) []string {
	if strings.TrimSpace(value) == "" {
		return lines
	}
	return append(lines, s.label.Render(label+":")+" "+s.detail.Render(value))
}

func activityLine(label string, items []string, style lipgloss.Style, s styles) string {
	value := "无"
	if len(items) > 0 {
		value = strings.Join(items, " · ")
	}
	return style.Render(label) + " " + s.detail.Render(value)
}

func indexLine(label string, value int, s styles) string {
	color := interpolateColor(float64(value), 0, 100)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render(label+":"),
		" ",
		renderProgressBar(value, barWidth, s),
		" ",
		lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%3d", value)),
	)
}

func ganzhi(info domain.AlmanacDateInfo) string {
	var parts []string
	if info.YearGanzhi != "" {
		parts = append(parts, info.YearGanzhi+"年")
	}
	if info.MonthGanzhi != "" {
		parts = append(parts, strings.TrimSuffix(info.MonthGanzhi, "月")+"月")
	}
	if info.DayGanzhi != "" {
		parts = append(parts, strings.TrimSuffix(info.DayGanzhi, "日")+"日")
	}
	return strings.Join(parts, " ")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func renderProgressBar(value int, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(float64(value)) / 100.0))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor walks the 240..255 greyscale ramp, brighter for higher
// values.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
